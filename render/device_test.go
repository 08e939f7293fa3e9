package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"
)

func testLayout(d *Device) *BindGroupLayout {
	return d.CreateBindGroupLayout("test_layout",
		gputypes.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		gputypes.BindGroupLayoutEntry{
			Binding:    1,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
		gputypes.BindGroupLayoutEntry{
			Binding:    2,
			Visibility: gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, MinBindingSize: 32},
		},
	)
}

func TestCreateBindGroup(t *testing.T) {
	d := NewDevice(nil)
	layout := testLayout(d)
	img := ebiten.NewImage(4, 4)
	sampler := d.CreateSampler(gputypes.DefaultSamplerDescriptor())
	buf := d.CreateBuffer("u", make([]byte, 64))

	g, err := d.CreateBindGroup("ok", layout, BindGroupEntries(img, sampler, BufferBinding{Buffer: buf, Size: 32}))
	if err != nil {
		t.Fatalf("CreateBindGroup: %v", err)
	}
	if g.Texture(0) != img {
		t.Error("Texture(0) is not the bound image")
	}
	if b, ok := g.BufferAt(2); !ok || b.Size != 32 {
		t.Errorf("BufferAt(2) = %+v, %v", b, ok)
	}
}

func TestCreateBindGroupValidation(t *testing.T) {
	d := NewDevice(nil)
	layout := testLayout(d)
	img := ebiten.NewImage(4, 4)
	sampler := d.CreateSampler(gputypes.DefaultSamplerDescriptor())
	buf := d.CreateBuffer("u", make([]byte, 64))

	cases := []struct {
		name    string
		entries []BindGroupEntry
	}{
		{"missing entry", BindGroupEntries(img, sampler)},
		{"wrong kind", BindGroupEntries(sampler, img, BufferBinding{Buffer: buf, Size: 32})},
		{"too small", BindGroupEntries(img, sampler, BufferBinding{Buffer: buf, Size: 16})},
		{"unknown binding", []BindGroupEntry{
			{Binding: 0, Texture: img},
			{Binding: 1, Sampler: sampler},
			{Binding: 7, Buffer: &BufferBinding{Buffer: buf, Size: 32}},
		}},
	}
	for _, c := range cases {
		_, err := d.CreateBindGroup(c.name, layout, c.entries)
		if !errors.Is(err, ErrBindGroupMismatch) {
			t.Errorf("%s: err = %v, want ErrBindGroupMismatch", c.name, err)
		}
	}
}

func TestCreateBindGroupLayoutDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for duplicate binding")
		}
	}()
	d := NewDevice(nil)
	e := gputypes.BindGroupLayoutEntry{Binding: 0, Sampler: &gputypes.SamplerBindingLayout{}}
	d.CreateBindGroupLayout("dup", e, e)
}

func TestBindGroupEntriesUnsupportedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unsupported resource")
		}
	}()
	BindGroupEntries(42)
}

func TestValidatePipeline(t *testing.T) {
	d := NewDevice(nil)
	layout := testLayout(d)
	base := func() RenderPipelineDescriptor {
		return RenderPipelineDescriptor{
			Label:  "p",
			Layout: []*BindGroupLayout{layout},
			Vertex: FullscreenVertexState(),
			Fragment: FragmentState{
				Shader:     &Shader{Label: "s"},
				EntryPoint: "Fragment",
				Targets:    []gputypes.ColorTargetState{{Format: DefaultTextureFormat, WriteMask: gputypes.ColorWriteMaskAll}},
				Uniforms:   map[uint32][]UniformField{2: {{Name: "A", Offset: 0, Len: 2}}},
			},
			Multisample: gputypes.DefaultMultisampleState(),
		}
	}
	if err := validatePipeline(base()); err != nil {
		t.Fatalf("valid descriptor rejected: %v", err)
	}

	bad := []func(*RenderPipelineDescriptor){
		func(p *RenderPipelineDescriptor) { p.Vertex.Buffers = make([]gputypes.VertexBufferLayout, 1) },
		func(p *RenderPipelineDescriptor) {
			ds := gputypes.DefaultDepthStencilState(gputypes.TextureFormatDepth24PlusStencil8)
			p.DepthStencil = &ds
		},
		func(p *RenderPipelineDescriptor) { p.Multisample.Count = 4 },
		func(p *RenderPipelineDescriptor) { p.Fragment.Targets = nil },
		func(p *RenderPipelineDescriptor) { p.Fragment.Shader = nil },
		func(p *RenderPipelineDescriptor) { p.Fragment.Uniforms = map[uint32][]UniformField{1: nil} },
	}
	for i, mutate := range bad {
		p := base()
		mutate(&p)
		if err := validatePipeline(p); err == nil {
			t.Errorf("case %d: invalid descriptor accepted", i)
		}
	}
}

func TestRangeLen(t *testing.T) {
	if got := (Range{0, 3}).Len(); got != 3 {
		t.Errorf("Len = %d, want 3", got)
	}
	if got := (Range{5, 2}).Len(); got != 0 {
		t.Errorf("inverted Len = %d, want 0", got)
	}
}
