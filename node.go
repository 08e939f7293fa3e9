package pixelperfect

import (
	"github.com/phanxgames/pixelperfect/render"
)

// NodeName is the graph name of PostProcessNode.
const NodeName = "pixel_perfect"

// PostProcessStats counts what PostProcessNode did during the current frame.
type PostProcessStats struct {
	Draws   int
	Skipped int
}

// PostProcessNode runs the pixel-perfect shader over each view's main
// texture. Until the pipeline has compiled and both uniforms are uploaded
// it does nothing, leaving the main texture as the main pass left it.
type PostProcessNode struct{}

func (PostProcessNode) Run(ctx *render.RenderContext, view *render.View, world *render.World) error {
	pp := render.MustResource[PostProcessPipeline](world)
	stats := render.MustResource[PostProcessStats](world)

	pipeline, ok := render.MustResource[render.PipelineCache](world).GetRenderPipeline(pp.PipelineID)
	if !ok {
		stats.Skipped++
		return nil
	}
	cameraBinding, ok := render.MustResource[CameraUniforms](world).Uniforms.Binding(view.Entity)
	if !ok {
		stats.Skipped++
		return nil
	}
	viewBinding, ok := render.MustResource[render.ViewUniforms](world).Uniforms.Binding(view.Entity)
	if !ok {
		stats.Skipped++
		return nil
	}

	source, destination := view.Target.Textures()
	group, err := ctx.Device.CreateBindGroup("pixel_perfect_bind_group", pp.Layout, render.BindGroupEntries(
		source,
		pp.Sampler,
		cameraBinding,
		viewBinding,
	))
	if err != nil {
		return err
	}

	pass := ctx.BeginTrackedRenderPass(render.RenderPassDescriptor{
		Label: "pixel_perfect_pass",
		Color: render.DefaultColorAttachment(destination),
	})
	pass.SetRenderPipeline(pipeline)
	pass.SetBindGroup(0, group)
	if err := pass.Draw(render.Range{Start: 0, End: 3}, render.Range{Start: 0, End: 1}); err != nil {
		return err
	}
	// The destination only becomes the main texture once it was drawn.
	view.Target.PostProcessWrite()
	stats.Draws++
	return nil
}
