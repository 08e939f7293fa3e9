package pixelperfect

import (
	"math"
	"strings"
	"testing"

	"github.com/yohamta/donburi"
	dmath "github.com/yohamta/donburi/features/math"

	"github.com/phanxgames/pixelperfect/app"
	"github.com/phanxgames/pixelperfect/render/rendertest"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func newTestApp(t *testing.T) (*app.App, *rendertest.Backend) {
	t.Helper()
	b := &rendertest.Backend{}
	a := app.NewWithBackend(app.Config{Width: 512, Height: 256}, b)
	a.AddPlugins(Plugin{})
	return a, b
}

func spawnPixelated(a *app.App, res float64, joins float64) *donburi.Entry {
	s := DefaultCameraState()
	s.Resolution = dmath.Vec2{X: res, Y: res}
	cam := SpawnCamera(a.ECS, s)
	AddPixelation(cam, NewPixelation(joins))
	return cam
}

func expectPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q, got none", contains)
		}
		if msg, _ := r.(string); !strings.Contains(msg, contains) {
			t.Errorf("panic = %v, want message containing %q", r, contains)
		}
	}()
	fn()
}

func TestDefaultCameraState(t *testing.T) {
	s := DefaultCameraState()
	if s.Resolution.X != 256 || s.Resolution.Y != 256 {
		t.Errorf("Resolution = %v, want 256x256", s.Resolution)
	}
	if s.BarColor != app.ColorBlack {
		t.Errorf("BarColor = %v, want opaque black", s.BarColor)
	}
	if s.SubpixelTranslation != (dmath.Vec2{}) || s.BarOffset != (dmath.Vec2{}) {
		t.Error("translation and bar offset should start at zero")
	}
}

func TestSpawnCameraAddsHostCamera(t *testing.T) {
	a, _ := newTestApp(t)
	cam := SpawnCamera(a.ECS, DefaultCameraState())
	for _, c := range []donburi.IComponentType{Camera, app.Camera, app.Transform, app.Projection, app.CameraView} {
		if !cam.HasComponent(c) {
			t.Errorf("camera missing component %T", c)
		}
	}
}

func TestPixelationScale(t *testing.T) {
	a, _ := newTestApp(t)
	cam := spawnPixelated(a, 256, 2)

	a.Update()

	r := Camera.Get(cam).Resolution
	if r.X != 64 || r.Y != 64 {
		t.Errorf("Resolution = %v, want 64x64", r)
	}
	if s := app.Projection.Get(cam).Scale; s != 4 {
		t.Errorf("projection scale = %v, want 4", s)
	}
}

func TestPixelationFractionalJoins(t *testing.T) {
	a, _ := newTestApp(t)
	cam := spawnPixelated(a, 256, 0.5)

	a.Update()

	want := 256 / math.Sqrt2
	if r := Camera.Get(cam).Resolution; !approxEqual(r.X, want, 1e-6) {
		t.Errorf("Resolution.X = %v, want %v", r.X, want)
	}
	if s := app.Projection.Get(cam).Scale; !approxEqual(s, math.Sqrt2, 1e-9) {
		t.Errorf("projection scale = %v, want sqrt(2)", s)
	}
}

func TestStartingResolutionCapturedOnce(t *testing.T) {
	a, _ := newTestApp(t)
	cam := spawnPixelated(a, 128, 0)
	a.Update()

	Pixelation.Get(cam).Joins = 1
	a.Update()
	if r := Camera.Get(cam).Resolution; r.X != 64 {
		t.Fatalf("Resolution = %v after joins=1, want 64", r)
	}

	Pixelation.Get(cam).Joins = 0
	a.Update()
	if r := Camera.Get(cam).Resolution; r.X != 128 || r.Y != 128 {
		t.Errorf("Resolution = %v after joins=0, want 128x128", r)
	}
	if start, ok := Pixelation.Get(cam).StartingResolution(); !ok || start.X != 128 {
		t.Errorf("StartingResolution = %v, %v; want 128, true", start, ok)
	}
}

func TestPixelationReaddRecaptures(t *testing.T) {
	a, _ := newTestApp(t)
	cam := spawnPixelated(a, 128, 1)
	a.Update()

	AddPixelation(cam, NewPixelation(0))
	a.Update()

	if start, _ := Pixelation.Get(cam).StartingResolution(); start.X != 64 {
		t.Errorf("recaptured start = %v, want 64", start.X)
	}
	if r := Camera.Get(cam).Resolution; r.X != 64 {
		t.Errorf("Resolution = %v, want 64", r.X)
	}
}

func TestPixelationCapturedEvent(t *testing.T) {
	a, _ := newTestApp(t)
	var got []PixelationCaptured
	PixelationCapturedEvent.Subscribe(a.World(), func(_ donburi.World, ev PixelationCaptured) {
		got = append(got, ev)
	})
	cam := spawnPixelated(a, 200, 1)

	a.Update()
	a.Update()

	if len(got) != 1 {
		t.Fatalf("events = %d, want 1", len(got))
	}
	if got[0].Entity != cam.Entity() || got[0].Resolution.X != 200 {
		t.Errorf("event = %+v", got[0])
	}
}

func TestSnapFloorsTowardNegativeInfinity(t *testing.T) {
	a, _ := newTestApp(t)
	s := DefaultCameraState()
	s.SubpixelTranslation = dmath.Vec2{X: -0.3, Y: 2.7}
	cam := SpawnCamera(a.ECS, s)
	app.Transform.Get(cam).Z = 5

	a.Update()

	tr := app.Transform.Get(cam)
	if tr.X != -1 || tr.Y != 2 || tr.Z != 5 {
		t.Errorf("Transform = (%v, %v, %v), want (-1, 2, 5)", tr.X, tr.Y, tr.Z)
	}
}

func TestSnapWithinOnePixel(t *testing.T) {
	a, _ := newTestApp(t)
	cam := SpawnCamera(a.ECS, DefaultCameraState())
	for _, v := range []float64{-2.5, -1, -0.0001, 0, 0.9999, 3.5, 1e6 + 0.25} {
		Camera.Get(cam).SubpixelTranslation = dmath.Vec2{X: v, Y: -v}
		snapTransforms(a.ECS)
		tr := app.Transform.Get(cam)
		if d := v - tr.X; d < 0 || d >= 1 {
			t.Errorf("x: sub %v snapped to %v", v, tr.X)
		}
		if d := -v - tr.Y; d < 0 || d >= 1 {
			t.Errorf("y: sub %v snapped to %v", -v, tr.Y)
		}
	}
}

func TestSystemsIdempotent(t *testing.T) {
	a, _ := newTestApp(t)
	cam := spawnPixelated(a, 256, 1)
	Camera.Get(cam).SubpixelTranslation = dmath.Vec2{X: 3.2, Y: 4.8}

	if n := updatePixelation(a.ECS); n != 1 {
		t.Errorf("first updatePixelation wrote %d, want 1", n)
	}
	if n := updatePixelation(a.ECS); n != 0 {
		t.Errorf("second updatePixelation wrote %d, want 0", n)
	}
	if n := snapTransforms(a.ECS); n != 1 {
		t.Errorf("first snapTransforms wrote %d, want 1", n)
	}
	if n := snapTransforms(a.ECS); n != 0 {
		t.Errorf("second snapTransforms wrote %d, want 0", n)
	}
}

func TestSameFrameOrdering(t *testing.T) {
	a, _ := newTestApp(t)
	cam := spawnPixelated(a, 256, 0)
	a.Update()

	Pixelation.Get(cam).Joins = 2
	Camera.Get(cam).SubpixelTranslation = dmath.Vec2{X: 10.5, Y: -3.5}
	a.Update()

	v := app.CameraView.Get(cam)
	// The snapped position (10, -4) sits at the target center...
	sx, sy := v.WorldToScreen(10, -4)
	if !approxEqual(sx, 256, epsilon) || !approxEqual(sy, 128, epsilon) {
		t.Errorf("WorldToScreen(10,-4) = (%v,%v), want (256,128)", sx, sy)
	}
	// ...and this frame's projection scale of 4 is already applied.
	sx, _ = v.WorldToScreen(14, -4)
	if !approxEqual(sx, 257, epsilon) {
		t.Errorf("WorldToScreen(14,-4).x = %v, want 257", sx)
	}
}

func TestNegativeJoinsPanics(t *testing.T) {
	a, _ := newTestApp(t)
	spawnPixelated(a, 256, -1)
	expectPanic(t, "joins", func() { a.Update() })
}

func TestNaNJoinsPanics(t *testing.T) {
	a, _ := newTestApp(t)
	cam := spawnPixelated(a, 256, 0)
	a.Update()
	Pixelation.Get(cam).Joins = math.NaN()
	expectPanic(t, "joins", func() { a.Update() })
}

func TestJoinsUnderflowPanics(t *testing.T) {
	a, _ := newTestApp(t)
	cam := spawnPixelated(a, 256, 0)
	a.Update()
	Pixelation.Get(cam).Joins = 1100
	expectPanic(t, "joins 1100", func() { a.Update() })
}

func TestNonPositiveResolutionPanics(t *testing.T) {
	t.Run("pixelation", func(t *testing.T) {
		a, _ := newTestApp(t)
		spawnPixelated(a, 0, 1)
		expectPanic(t, "resolution", func() { a.Update() })
	})
	t.Run("extract", func(t *testing.T) {
		a, _ := newTestApp(t)
		s := DefaultCameraState()
		s.Resolution.Y = -4
		SpawnCamera(a.ECS, s)
		a.Update()
		expectPanic(t, "resolution", func() { a.RenderFrame() })
	})
}
