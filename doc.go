// Package pixelperfect renders a 2D scene at a fixed virtual resolution and
// upscales it to the window in whole virtual pixels.
//
// Add Plugin to an app.App and spawn a camera carrying a CameraState:
//
//	a := app.New(app.DefaultConfig())
//	a.AddPlugins(pixelperfect.Plugin{})
//	cam := pixelperfect.DefaultCameraState()
//	cam.Resolution = dmath.Vec2{X: 320, Y: 180}
//	pixelperfect.SpawnCamera(a.ECS, cam)
//
// Move the camera through CameraState.SubpixelTranslation. Each frame the
// translation is floored into the camera Transform, so the scene moves in
// whole virtual pixels, and the post-process shader shifts its sampling by
// the remaining fraction so motion still looks smooth.
//
// # Bars
//
// Everything outside the visible rectangle is filled with BarColor. The
// rectangle covers the virtual resolution inset by BarOffset on each side,
// so animating BarOffset gives iris and letterbox effects. BarAnimation
// plays a chain of gween tweens on it.
//
// # Pixelation
//
// A PixelationState next to the camera halves the virtual resolution Joins
// times while scaling the projection up to match, so the same part of the
// world is shown with bigger pixels:
//
//	resolution = starting resolution / 2^Joins
//
// The starting resolution is captured the first frame the pixelation is
// seen. Negative joins and non-positive resolutions panic.
//
// # Configuration
//
// CameraConfig loads a camera from YAML; see ParseCameraConfig.
//
// # Debug mode
//
// With app.Config.Debug set, frame stats and pixelation captures are
// written to stderr with a [pixelperfect] prefix.
package pixelperfect
