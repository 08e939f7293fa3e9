package app

import (
	"math"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/filter"
)

// Camera2DBundle lists the components SpawnCamera2D attaches.
var Camera2DBundle = []donburi.IComponentType{Transform, GlobalTransform, Projection, Camera, CameraView}

// SpawnCamera2D creates a camera at the origin with unit projection, plus
// any extra components. The returned entry's extra components hold their
// zero values.
func SpawnCamera2D(e *ecs.ECS, extra ...donburi.IComponentType) *donburi.Entry {
	comps := append(append([]donburi.IComponentType(nil), Camera2DBundle...), extra...)
	entry := e.World.Entry(e.World.Create(comps...))
	Transform.SetValue(entry, NewTransform(0, 0))
	GlobalTransform.SetValue(entry, GlobalTransformData{Matrix: identityTransform})
	Projection.SetValue(entry, ProjectionData{Scale: 1})
	Camera.SetValue(entry, CameraData{ClearColor: ColorBlack})
	return entry
}

// SpawnSprite creates a sprite entity at (x, y).
func SpawnSprite(e *ecs.ECS, sprite SpriteData, x, y float64) *donburi.Entry {
	entry := e.World.Entry(e.World.Create(Transform, GlobalTransform, Sprite))
	Transform.SetValue(entry, NewTransform(x, y))
	GlobalTransform.SetValue(entry, GlobalTransformData{Matrix: identityTransform})
	Sprite.SetValue(entry, sprite)
	return entry
}

var cameraQuery = donburi.NewQuery(filter.Contains(Camera, GlobalTransform, Projection, CameraView))

// viewMatrix = Translate(cx, cy) * Scale(zoom) * Rotate(-rotation) * Translate(-x, -y)
// where cx, cy = target center.
func viewMatrix(x, y, rotation, zoom, width, height float64) [6]float64 {
	cx, cy := width/2, height/2
	sin, cos := math.Sincos(-rotation)
	z := zoom
	return [6]float64{
		z * cos,
		z * sin,
		-z * sin,
		z * cos,
		cx + z*(-cos*x+sin*y),
		cy + z*(-sin*x-cos*y),
	}
}

// UpdateCameras recomputes every CameraView from the camera's global
// transform, its projection and the window size. It must run after
// transform propagation.
func UpdateCameras(e *ecs.ECS) {
	w, h := WindowSize(e.World)
	cameraQuery.Each(e.World, func(entry *donburi.Entry) {
		g := GlobalTransform.Get(entry)
		x, y := g.Translation()
		rot := math.Atan2(g.Matrix[1], g.Matrix[0])
		v := CameraViewData{
			View:   viewMatrix(x, y, rot, Projection.Get(entry).Zoom(), float64(w), float64(h)),
			Width:  float64(w),
			Height: float64(h),
		}
		if *CameraView.Get(entry) != v {
			CameraView.SetValue(entry, v)
		}
	})
}

// WindowSize returns the current target size, or 0×0 before the first Layout.
func WindowSize(w donburi.World) (int, int) {
	entry, ok := Window.First(w)
	if !ok {
		return 0, 0
	}
	ws := Window.Get(entry)
	return ws.Width, ws.Height
}

func setWindowSize(w donburi.World, width, height int) {
	entry, ok := Window.First(w)
	if !ok {
		entry = w.Entry(w.Create(Window))
	}
	if ws := Window.Get(entry); ws.Width != width || ws.Height != height {
		Window.SetValue(entry, WindowData{Width: width, Height: height})
	}
}
