package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi"
)

// TransformData is an entity's local placement. World units are y-down.
type TransformData struct {
	X, Y     float64
	Z        float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
}

// NewTransform returns a transform at (x, y) with unit scale.
func NewTransform(x, y float64) TransformData {
	return TransformData{X: x, Y: y, ScaleX: 1, ScaleY: 1}
}

// GlobalTransformData is the propagated world matrix, [a, b, c, d, tx, ty].
// It is written by the transform propagation set and read everywhere else.
type GlobalTransformData struct {
	Matrix [6]float64
	Z      float64
}

// Translation returns the world position.
func (g GlobalTransformData) Translation() (float64, float64) {
	return g.Matrix[4], g.Matrix[5]
}

// ParentData attaches an entity to a parent's transform.
type ParentData struct {
	Entity donburi.Entity
}

// ProjectionData is an orthographic projection. Scale is world units per
// screen pixel; 2 shows twice as much of the world, each unit half the size.
// A zero Scale is treated as 1.
type ProjectionData struct {
	Scale float64
}

// Zoom returns screen pixels per world unit.
func (p ProjectionData) Zoom() float64 {
	if p.Scale <= 0 {
		return 1
	}
	return 1 / p.Scale
}

// CameraData marks an entity as a rendering camera. Cameras render in
// ascending Order; inactive cameras are skipped.
type CameraData struct {
	Order      int
	Inactive   bool
	ClearColor Color
}

// CameraViewData is the camera's computed view, written by the camera update set.
type CameraViewData struct {
	View   [6]float64
	Width  float64
	Height float64
}

// WorldToScreen converts a world position to target pixels.
func (v CameraViewData) WorldToScreen(x, y float64) (float64, float64) {
	return transformPoint(v.View, x, y)
}

// ScreenToWorld converts target pixels to a world position.
func (v CameraViewData) ScreenToWorld(x, y float64) (float64, float64) {
	return transformPoint(invertAffine(v.View), x, y)
}

// SpriteData draws Image centered on the entity's global transform, tinted
// by Color. Use NewSprite for a white tint.
type SpriteData struct {
	Image  *ebiten.Image
	Color  Color
	Hidden bool
}

// NewSprite returns an untinted sprite.
func NewSprite(img *ebiten.Image) SpriteData {
	return SpriteData{Image: img, Color: ColorWhite}
}

// WindowData is the singleton holding the current render target size.
type WindowData struct {
	Width, Height int
}

var (
	Transform       = donburi.NewComponentType[TransformData]()
	GlobalTransform = donburi.NewComponentType[GlobalTransformData]()
	Parent          = donburi.NewComponentType[ParentData]()
	Projection      = donburi.NewComponentType[ProjectionData]()
	Camera          = donburi.NewComponentType[CameraData]()
	CameraView      = donburi.NewComponentType[CameraViewData]()
	Sprite          = donburi.NewComponentType[SpriteData]()
	Window          = donburi.NewComponentType[WindowData]()
)
