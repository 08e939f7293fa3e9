package pixelperfect

import (
	"fmt"
	"math"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	dmath "github.com/yohamta/donburi/features/math"

	"github.com/phanxgames/pixelperfect/app"
)

// CameraState marks a camera as pixel perfect.
type CameraState struct {
	// Resolution is the virtual width and height. Both must stay positive.
	Resolution dmath.Vec2
	// SubpixelTranslation is the camera position in virtual pixels. Move
	// the camera through this field, not through its Transform.
	SubpixelTranslation dmath.Vec2
	// BarColor fills everything outside the visible rectangle. Alpha blends
	// the bars over the image.
	BarColor app.Color
	// BarOffset insets the visible rectangle by this many virtual pixels
	// on each side. Negative values expand it.
	BarOffset dmath.Vec2
}

// DefaultCameraState returns a 256×256 camera with opaque black bars.
func DefaultCameraState() CameraState {
	return CameraState{
		Resolution: dmath.Vec2{X: 256, Y: 256},
		BarColor:   app.ColorBlack,
	}
}

// PixelationState joins virtual pixels together. Add it next to a
// CameraState.
//
// resolution = starting resolution / 2^Joins
type PixelationState struct {
	// Joins is how many times the resolution is halved. Fractional values
	// are allowed. Negative values panic, as do values so large that the
	// resolution underflows to zero.
	Joins float64

	starting dmath.Vec2
	captured bool
	applied  float64
}

// NewPixelation returns a pixelation with the given joins.
func NewPixelation(joins float64) PixelationState {
	return PixelationState{Joins: joins}
}

// StartingResolution returns the camera resolution captured the first time
// the pixelation was seen, and whether that has happened yet.
func (p *PixelationState) StartingResolution() (dmath.Vec2, bool) {
	return p.starting, p.captured
}

var (
	// Camera is the CameraState component.
	Camera = donburi.NewComponentType[CameraState]()
	// Pixelation is the PixelationState component.
	Pixelation = donburi.NewComponentType[PixelationState]()
)

// SpawnCamera creates a 2D camera carrying state, plus any extra components.
// Extra components start at their zero value; set them on the returned entry.
func SpawnCamera(e *ecs.ECS, state CameraState, extra ...donburi.IComponentType) *donburi.Entry {
	entry := app.SpawnCamera2D(e, append([]donburi.IComponentType{Camera}, extra...)...)
	Camera.SetValue(entry, state)
	return entry
}

// AddPixelation attaches p to a pixel-perfect camera, replacing any
// previous pixelation so the starting resolution is captured again.
func AddPixelation(entry *donburi.Entry, p PixelationState) {
	if entry.HasComponent(Pixelation) {
		entry.RemoveComponent(Pixelation)
	}
	entry.AddComponent(Pixelation)
	Pixelation.SetValue(entry, PixelationState{Joins: p.Joins})
}

func mustValidJoins(joins float64) {
	if !(joins >= 0) {
		panic(fmt.Sprintf("pixelperfect: joins must be non-negative, got %v", joins))
	}
}

func mustValidResolution(r dmath.Vec2) {
	if !(r.X > 0 && r.Y > 0) {
		panic(fmt.Sprintf("pixelperfect: resolution must be positive, got (%v, %v)", r.X, r.Y))
	}
}

// scaleFactor returns 2^(-joins).
func scaleFactor(joins float64) float64 {
	return math.Exp2(-joins)
}
