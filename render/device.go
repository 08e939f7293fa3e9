package render

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"
)

// DefaultTextureFormat is the format of every view target.
const DefaultTextureFormat = gputypes.TextureFormatRGBA8Unorm

// Backend executes compiled programs. EbitenBackend is the production
// implementation; tests substitute a recorder.
type Backend interface {
	// CompileShader compiles src and returns a backend-specific program.
	// It may be called from pipeline compilation goroutines.
	CompileShader(label string, src []byte) (any, error)
	// Draw executes one draw call.
	Draw(cmd *DrawCommand) error
}

// Device creates GPU-side objects and validates them against their layouts.
type Device struct {
	backend Backend
	buffers atomic.Int64
}

// NewDevice wraps a backend.
func NewDevice(b Backend) *Device {
	return &Device{backend: b}
}

// BuffersCreated returns how many buffers were uploaded since creation.
func (d *Device) BuffersCreated() int64 { return d.buffers.Load() }

// CreateBuffer uploads a copy of data.
func (d *Device) CreateBuffer(label string, data []byte) *Buffer {
	d.buffers.Add(1)
	return &Buffer{label: label, data: append([]byte(nil), data...)}
}

// BindGroupLayout describes the resources a pipeline expects per binding.
type BindGroupLayout struct {
	Label   string
	Entries []gputypes.BindGroupLayoutEntry
}

func (l *BindGroupLayout) entry(binding uint32) (gputypes.BindGroupLayoutEntry, bool) {
	for _, e := range l.Entries {
		if e.Binding == binding {
			return e, true
		}
	}
	return gputypes.BindGroupLayoutEntry{}, false
}

// CreateBindGroupLayout returns an immutable layout. Duplicate binding
// numbers or entries declaring no resource kind panic.
func (d *Device) CreateBindGroupLayout(label string, entries ...gputypes.BindGroupLayoutEntry) *BindGroupLayout {
	seen := make(map[uint32]bool, len(entries))
	for _, e := range entries {
		if seen[e.Binding] {
			panic(fmt.Sprintf("render: layout %q has duplicate binding %d", label, e.Binding))
		}
		seen[e.Binding] = true
		if layoutKind(e) == "" {
			panic(fmt.Sprintf("render: layout %q binding %d declares no resource", label, e.Binding))
		}
	}
	return &BindGroupLayout{Label: label, Entries: append([]gputypes.BindGroupLayoutEntry(nil), entries...)}
}

func layoutKind(e gputypes.BindGroupLayoutEntry) string {
	switch {
	case e.Texture != nil:
		return "texture"
	case e.Sampler != nil:
		return "sampler"
	case e.Buffer != nil:
		return "buffer"
	}
	return ""
}

// Sampler is an immutable sampler object.
type Sampler struct {
	Descriptor gputypes.SamplerDescriptor
}

// CreateSampler returns a sampler for desc.
func (d *Device) CreateSampler(desc gputypes.SamplerDescriptor) *Sampler {
	return &Sampler{Descriptor: desc}
}

// BindGroupEntry binds exactly one resource to a binding number.
type BindGroupEntry struct {
	Binding uint32
	Texture *ebiten.Image
	Sampler *Sampler
	Buffer  *BufferBinding
}

func (e BindGroupEntry) kind() string {
	switch {
	case e.Texture != nil:
		return "texture"
	case e.Sampler != nil:
		return "sampler"
	case e.Buffer != nil:
		return "buffer"
	}
	return ""
}

// BindGroupEntries numbers resources sequentially from binding 0. Accepted
// resources are *ebiten.Image, *Sampler and BufferBinding.
func BindGroupEntries(resources ...any) []BindGroupEntry {
	out := make([]BindGroupEntry, len(resources))
	for i, r := range resources {
		e := BindGroupEntry{Binding: uint32(i)}
		switch v := r.(type) {
		case *ebiten.Image:
			e.Texture = v
		case *Sampler:
			e.Sampler = v
		case BufferBinding:
			e.Buffer = &v
		default:
			panic(fmt.Sprintf("render: unsupported bind group resource %T", r))
		}
		out[i] = e
	}
	return out
}

// BindGroup is a set of resources matching a layout. It is built per frame.
type BindGroup struct {
	Label   string
	Layout  *BindGroupLayout
	Entries []BindGroupEntry
}

// Texture returns the texture bound at binding.
func (g *BindGroup) Texture(binding uint32) *ebiten.Image {
	for _, e := range g.Entries {
		if e.Binding == binding {
			return e.Texture
		}
	}
	return nil
}

// BufferAt returns the buffer range bound at binding.
func (g *BindGroup) BufferAt(binding uint32) (BufferBinding, bool) {
	for _, e := range g.Entries {
		if e.Binding == binding && e.Buffer != nil {
			return *e.Buffer, true
		}
	}
	return BufferBinding{}, false
}

// ErrBindGroupMismatch is wrapped by CreateBindGroup validation errors.
var ErrBindGroupMismatch = errors.New("bind group does not match layout")

// CreateBindGroup validates entries against layout: every layout binding is
// filled exactly once with a resource of the declared kind, and buffer ranges
// are at least the layout's MinBindingSize.
func (d *Device) CreateBindGroup(label string, layout *BindGroupLayout, entries []BindGroupEntry) (*BindGroup, error) {
	if len(entries) != len(layout.Entries) {
		return nil, fmt.Errorf("%s: %d entries for %d bindings: %w", label, len(entries), len(layout.Entries), ErrBindGroupMismatch)
	}
	seen := make(map[uint32]bool, len(entries))
	for _, e := range entries {
		le, ok := layout.entry(e.Binding)
		if !ok {
			return nil, fmt.Errorf("%s: binding %d not in layout %q: %w", label, e.Binding, layout.Label, ErrBindGroupMismatch)
		}
		if seen[e.Binding] {
			return nil, fmt.Errorf("%s: binding %d bound twice: %w", label, e.Binding, ErrBindGroupMismatch)
		}
		seen[e.Binding] = true
		if got, want := e.kind(), layoutKind(le); got != want {
			return nil, fmt.Errorf("%s: binding %d is %q, layout wants %q: %w", label, e.Binding, got, want, ErrBindGroupMismatch)
		}
		if le.Buffer != nil && e.Buffer.Size < le.Buffer.MinBindingSize {
			return nil, fmt.Errorf("%s: binding %d size %d below minimum %d: %w", label, e.Binding, e.Buffer.Size, le.Buffer.MinBindingSize, ErrBindGroupMismatch)
		}
	}
	return &BindGroup{Label: label, Layout: layout, Entries: append([]BindGroupEntry(nil), entries...)}, nil
}

// Shader is fragment program source.
type Shader struct {
	Label  string
	Source []byte
}

// UniformField maps a named shader uniform onto float32 values inside a
// bound uniform buffer. Len is the number of float32 components.
type UniformField struct {
	Name   string
	Offset uint32
	Len    int
}

// VertexState describes vertex input. Only fullscreen pipelines without
// vertex buffers are supported.
type VertexState struct {
	EntryPoint string
	Buffers    []gputypes.VertexBufferLayout
}

// FullscreenVertexState is the vertex stage of a single triangle covering
// the whole target.
func FullscreenVertexState() VertexState {
	return VertexState{EntryPoint: "fullscreen_vertex_shader"}
}

// FragmentState describes the fragment stage. Uniforms maps buffer binding
// numbers to the shader uniforms read out of them.
type FragmentState struct {
	Shader     *Shader
	EntryPoint string
	Targets    []gputypes.ColorTargetState
	Uniforms   map[uint32][]UniformField
}

// RenderPipelineDescriptor describes a render pipeline.
type RenderPipelineDescriptor struct {
	Label        string
	Layout       []*BindGroupLayout
	Vertex       VertexState
	Fragment     FragmentState
	Primitive    gputypes.PrimitiveState
	DepthStencil *gputypes.DepthStencilState
	Multisample  gputypes.MultisampleState
}

// RenderPipeline is a compiled pipeline.
type RenderPipeline struct {
	Descriptor RenderPipelineDescriptor
	Program    any
}

// Blend returns the blend state of the single color target.
func (p *RenderPipeline) Blend() *gputypes.BlendState {
	return p.Descriptor.Fragment.Targets[0].Blend
}

// CreateRenderPipeline validates desc and compiles its fragment shader.
func (d *Device) CreateRenderPipeline(desc RenderPipelineDescriptor) (*RenderPipeline, error) {
	if err := validatePipeline(desc); err != nil {
		return nil, fmt.Errorf("%s: %w", desc.Label, err)
	}
	prog, err := d.backend.CompileShader(desc.Fragment.Shader.Label, desc.Fragment.Shader.Source)
	if err != nil {
		return nil, fmt.Errorf("%s: compile %s: %w", desc.Label, desc.Fragment.Shader.Label, err)
	}
	return &RenderPipeline{Descriptor: desc, Program: prog}, nil
}

func validatePipeline(desc RenderPipelineDescriptor) error {
	switch {
	case len(desc.Vertex.Buffers) != 0:
		return errors.New("vertex buffers are not supported")
	case desc.DepthStencil != nil:
		return errors.New("depth/stencil is not supported")
	case desc.Multisample.Count > 1:
		return fmt.Errorf("multisample count %d is not supported", desc.Multisample.Count)
	case len(desc.Fragment.Targets) != 1:
		return fmt.Errorf("want exactly one color target, got %d", len(desc.Fragment.Targets))
	case desc.Fragment.Shader == nil:
		return errors.New("missing fragment shader")
	}
	for binding := range desc.Fragment.Uniforms {
		if !layoutHasBuffer(desc.Layout, binding) {
			return fmt.Errorf("uniforms reference binding %d which is not a buffer", binding)
		}
	}
	return nil
}

func layoutHasBuffer(layouts []*BindGroupLayout, binding uint32) bool {
	for _, l := range layouts {
		if e, ok := l.entry(binding); ok && e.Buffer != nil {
			return true
		}
	}
	return false
}

// Range is a half-open [Start, End) index range.
type Range struct {
	Start, End uint32
}

// Len returns the number of indices in the range.
func (r Range) Len() uint32 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// DrawCommand is one draw submitted to a Backend.
type DrawCommand struct {
	Target     *ebiten.Image
	Pipeline   *RenderPipeline
	BindGroups []*BindGroup
	Vertices   Range
	Instances  Range
}
