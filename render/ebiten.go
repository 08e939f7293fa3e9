package render

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenBackend runs pipelines as Kage shaders. Texture bindings become
// Images[0..3] in binding order and buffer bindings are decoded into the
// uniforms the pipeline's FragmentState declares.
type EbitenBackend struct {
	op ebiten.DrawRectShaderOptions
}

// NewEbitenBackend returns a backend drawing through Ebitengine.
func NewEbitenBackend() *EbitenBackend {
	return &EbitenBackend{}
}

// CompileShader compiles Kage source.
func (b *EbitenBackend) CompileShader(label string, src []byte) (any, error) {
	s, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf("kage %s: %w", label, err)
	}
	return s, nil
}

// Draw covers the target with the pipeline's shader. Only the fullscreen
// triangle draw is meaningful on this backend.
func (b *EbitenBackend) Draw(cmd *DrawCommand) error {
	shader, ok := cmd.Pipeline.Program.(*ebiten.Shader)
	if !ok {
		return fmt.Errorf("render: pipeline %q was not compiled by this backend", cmd.Pipeline.Descriptor.Label)
	}
	if cmd.Vertices.Len() != 3 {
		return fmt.Errorf("render: fullscreen draw needs 3 vertices, got %d", cmd.Vertices.Len())
	}
	uniforms, err := DecodeUniforms(cmd)
	if err != nil {
		return err
	}

	op := &b.op
	op.Images = [4]*ebiten.Image{}
	n := 0
	for _, g := range cmd.BindGroups {
		for _, e := range g.Entries {
			if e.Texture == nil {
				continue
			}
			if n == len(op.Images) {
				return fmt.Errorf("render: more than %d textures bound", len(op.Images))
			}
			op.Images[n] = e.Texture
			n++
		}
	}
	op.Uniforms = uniforms
	op.Blend = ebiten.BlendCopy
	if cmd.Pipeline.Blend() != nil {
		op.Blend = ebiten.BlendSourceOver
	}
	op.GeoM.Reset()

	bounds := cmd.Target.Bounds()
	for range cmd.Instances.Len() {
		cmd.Target.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, op)
	}
	return nil
}

// DecodeUniforms reads every uniform field the pipeline declares out of the
// bound buffers. Single-component fields decode to float32, wider ones to
// []float32.
func DecodeUniforms(cmd *DrawCommand) (map[string]any, error) {
	fields := cmd.Pipeline.Descriptor.Fragment.Uniforms
	out := make(map[string]any)
	for binding, list := range fields {
		bound, ok := boundBuffer(cmd.BindGroups, binding)
		if !ok {
			return nil, fmt.Errorf("render: no buffer bound at %d", binding)
		}
		data := bound.Bytes()
		for _, f := range list {
			end := f.Offset + uint32(f.Len)*4
			if int(end) > len(data) {
				return nil, fmt.Errorf("render: uniform %s overruns %q at binding %d", f.Name, bound.Buffer.Label(), binding)
			}
			if f.Len == 1 {
				out[f.Name] = readFloat32(data, f.Offset)
				continue
			}
			v := make([]float32, f.Len)
			for i := range v {
				v[i] = readFloat32(data, f.Offset+uint32(i)*4)
			}
			out[f.Name] = v
		}
	}
	return out, nil
}

func boundBuffer(groups []*BindGroup, binding uint32) (BufferBinding, bool) {
	for _, g := range groups {
		if b, ok := g.BufferAt(binding); ok {
			return b, true
		}
	}
	return BufferBinding{}, false
}
