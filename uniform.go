package pixelperfect

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/pixelperfect/app"
	"github.com/phanxgames/pixelperfect/render"
)

// CameraUniformSize is the std140 size of an encoded CameraState.
const CameraUniformSize = 48

// cameraUniformFields locates the shader uniforms inside an encoded CameraState.
var cameraUniformFields = []render.UniformField{
	{Name: "Resolution", Offset: 0, Len: 2},
	{Name: "SubpixelTranslation", Offset: 8, Len: 2},
	{Name: "BarColor", Offset: 16, Len: 4},
	{Name: "BarOffset", Offset: 32, Len: 2},
}

// viewUniformFields locates the shader uniforms inside a render.ViewUniform.
var viewUniformFields = []render.UniformField{
	{Name: "Viewport", Offset: 0, Len: 4},
}

// Encode writes s in std140 layout.
func (s CameraState) Encode(enc *render.Std140) []byte {
	enc.Reset()
	enc.Vec2(float32(s.Resolution.X), float32(s.Resolution.Y))
	enc.Vec2(float32(s.SubpixelTranslation.X), float32(s.SubpixelTranslation.Y))
	enc.Vec4(float32(s.BarColor.R), float32(s.BarColor.G), float32(s.BarColor.B), float32(s.BarColor.A))
	enc.Vec2(float32(s.BarOffset.X), float32(s.BarOffset.Y))
	return enc.Bytes()
}

// CameraUniforms is the render-world resource holding one encoded
// CameraState per extracted camera.
type CameraUniforms struct {
	Uniforms render.EntityUniforms
	enc      render.Std140
}

// NewCameraUniforms returns an empty resource.
func NewCameraUniforms() *CameraUniforms {
	return &CameraUniforms{Uniforms: render.NewEntityUniforms("pixel_perfect_camera_uniforms", CameraUniformSize)}
}

// extractCameras replaces the render-side snapshot with a copy of every
// pixel-perfect camera that is rendering this frame.
func extractCameras(sim donburi.World, rw *render.World) {
	store := render.ExtractedStore[CameraState](rw)
	store.Reset()
	extractQuery.Each(sim, func(entry *donburi.Entry) {
		if app.Camera.Get(entry).Inactive {
			return
		}
		s := *Camera.Get(entry)
		mustValidResolution(s.Resolution)
		store.Insert(entry.Entity(), s)
	})
}

// prepareCameraUniforms uploads every snapshot, replacing last frame's buffer.
func prepareCameraUniforms(d *render.Device, rw *render.World) {
	cu := render.MustResource[CameraUniforms](rw)
	cu.Uniforms.Clear()
	render.ExtractedStore[CameraState](rw).Each(func(e donburi.Entity, s CameraState) {
		cu.Uniforms.Push(e, s.Encode(&cu.enc))
	})
	cu.Uniforms.Write(d)
}

var extractQuery = donburi.NewQuery(filter.Contains(Camera, app.Camera))
