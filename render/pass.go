package render

import (
	"errors"
	"image/color"

	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"
)

// RenderPassColorAttachment is the single color output of a pass.
type RenderPassColorAttachment struct {
	View       *ebiten.Image
	LoadOp     gputypes.LoadOp
	StoreOp    gputypes.StoreOp
	ClearValue gputypes.Color
}

// DefaultColorAttachment loads and stores view.
func DefaultColorAttachment(view *ebiten.Image) RenderPassColorAttachment {
	return RenderPassColorAttachment{View: view, LoadOp: gputypes.LoadOpLoad, StoreOp: gputypes.StoreOpStore}
}

// RenderPassDescriptor describes a pass.
type RenderPassDescriptor struct {
	Label string
	Color RenderPassColorAttachment
}

// RenderContext is handed to graph nodes while a frame is recorded.
type RenderContext struct {
	Device *Device

	passes    int
	drawCalls int
}

// NewRenderContext returns a context recording onto d.
func NewRenderContext(d *Device) *RenderContext {
	return &RenderContext{Device: d}
}

// Passes returns the number of passes begun.
func (c *RenderContext) Passes() int { return c.passes }

// DrawCalls returns the number of draws submitted.
func (c *RenderContext) DrawCalls() int { return c.drawCalls }

// BeginTrackedRenderPass starts a pass. A clear load op fills the view
// before anything is drawn.
func (c *RenderContext) BeginTrackedRenderPass(desc RenderPassDescriptor) *TrackedRenderPass {
	c.passes++
	if desc.Color.LoadOp == gputypes.LoadOpClear {
		cv := desc.Color.ClearValue
		desc.Color.View.Fill(color.RGBA64{
			R: uint16(cv.R * cv.A * 0xffff),
			G: uint16(cv.G * cv.A * 0xffff),
			B: uint16(cv.B * cv.A * 0xffff),
			A: uint16(cv.A * 0xffff),
		})
	}
	return &TrackedRenderPass{ctx: c, desc: desc}
}

// TrackedRenderPass records pipeline and bind group state and submits draws.
type TrackedRenderPass struct {
	ctx      *RenderContext
	desc     RenderPassDescriptor
	pipeline *RenderPipeline
	groups   []*BindGroup
}

// SetRenderPipeline selects the pipeline for following draws.
func (p *TrackedRenderPass) SetRenderPipeline(pl *RenderPipeline) {
	p.pipeline = pl
}

// SetBindGroup binds g at index.
func (p *TrackedRenderPass) SetBindGroup(index int, g *BindGroup) {
	for len(p.groups) <= index {
		p.groups = append(p.groups, nil)
	}
	p.groups[index] = g
}

// Draw submits a draw with the current state.
func (p *TrackedRenderPass) Draw(vertices, instances Range) error {
	if p.pipeline == nil {
		return errors.New("render: draw without pipeline")
	}
	if len(p.groups) < len(p.pipeline.Descriptor.Layout) {
		return errors.New("render: draw with missing bind groups")
	}
	for i, g := range p.groups {
		if g == nil {
			return errors.New("render: draw with missing bind groups")
		}
		if i < len(p.pipeline.Descriptor.Layout) && g.Layout != p.pipeline.Descriptor.Layout[i] {
			return errors.New("render: bind group layout does not match pipeline")
		}
	}
	p.ctx.drawCalls++
	return p.ctx.Device.backend.Draw(&DrawCommand{
		Target:     p.desc.Color.View,
		Pipeline:   p.pipeline,
		BindGroups: p.groups,
		Vertices:   vertices,
		Instances:  instances,
	})
}
