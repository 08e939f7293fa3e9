package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi"
)

// View is one camera being rendered this frame.
type View struct {
	Entity donburi.Entity
	Target *ViewTarget
	Width  int
	Height int
}

// ViewTarget is a pair of same-sized textures. The main pass draws into
// MainTexture; each post-process step reads the current main texture and
// writes the other one, which then becomes main.
type ViewTarget struct {
	textures [2]*ebiten.Image
	main     int
}

// NewViewTarget returns a target over a and b. Both must be the same size.
func NewViewTarget(a, b *ebiten.Image) *ViewTarget {
	if a.Bounds().Size() != b.Bounds().Size() {
		panic("render: view target textures differ in size")
	}
	return &ViewTarget{textures: [2]*ebiten.Image{a, b}}
}

// MainTexture returns the texture holding the latest output.
func (t *ViewTarget) MainTexture() *ebiten.Image {
	return t.textures[t.main]
}

// Textures returns both textures, main first.
func (t *ViewTarget) Textures() (main, other *ebiten.Image) {
	return t.textures[t.main], t.textures[1-t.main]
}

// PostProcessWrite is a source/destination pair for one post-process step.
type PostProcessWrite struct {
	Source      *ebiten.Image
	Destination *ebiten.Image
}

// PostProcessWrite hands out the current pair and flips, so the destination
// is the main texture afterwards.
func (t *ViewTarget) PostProcessWrite() PostProcessWrite {
	w := PostProcessWrite{Source: t.textures[t.main], Destination: t.textures[1-t.main]}
	t.main = 1 - t.main
	return w
}

// ViewUniformSize is the std140 size of ViewUniform.
const ViewUniformSize = 32

// ViewUniform is the per-view data shaders receive: the viewport rectangle
// (x, y, width, height) in physical pixels, followed by the target size.
type ViewUniform struct {
	Viewport   [4]float32
	TargetSize [2]float32
}

// Encode appends u in std140 layout.
func (u ViewUniform) Encode(enc *Std140) []byte {
	enc.Reset()
	enc.Vec4(u.Viewport[0], u.Viewport[1], u.Viewport[2], u.Viewport[3])
	enc.Vec2(u.TargetSize[0], u.TargetSize[1])
	return enc.Bytes()
}

// ViewUniforms is the render-world resource holding one ViewUniform slot per view.
type ViewUniforms struct {
	Uniforms EntityUniforms
	enc      Std140
}

// NewViewUniforms returns an empty resource.
func NewViewUniforms() *ViewUniforms {
	return &ViewUniforms{Uniforms: NewEntityUniforms("view_uniforms", ViewUniformSize)}
}

// Push stages u for the view entity.
func (v *ViewUniforms) Push(entity donburi.Entity, u ViewUniform) {
	v.Uniforms.Push(entity, u.Encode(&v.enc))
}
