package pixelperfect

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/phanxgames/pixelperfect/app"
	"github.com/phanxgames/pixelperfect/render"
)

// SetBarAnimation advances BarAnimation components during app.Update.
const SetBarAnimation app.SystemSet = "pixel_perfect_bar_animation"

// Plugin installs the pixel-perfect camera: its simulation systems, the
// camera extraction, and PostProcessNode between tonemapping and the end of
// post-processing.
type Plugin struct{}

func (Plugin) Build(a *app.App) {
	a.ConfigureSets(app.PostUpdate, SetPixelation, SetTransformSnap, app.SetTransformPropagate)
	a.ConfigureSetBefore(app.PostUpdate, SetPixelation, app.SetCameraUpdate)

	a.AddSystems(app.PostUpdate, SetPixelation, func(e *ecs.ECS) {
		updatePixelation(e)
	})
	a.AddSystems(app.PostUpdate, SetTransformSnap, func(e *ecs.ECS) {
		if n := snapTransforms(e); n > 0 {
			a.Logf("snapped %d camera transforms", n)
		}
	})
	a.AddSystems(app.Update, SetBarAnimation, func(e *ecs.ECS) {
		animateBars(e, 1/float32(ebiten.TPS()))
	})

	PixelationCapturedEvent.Subscribe(a.World(), func(_ donburi.World, ev PixelationCaptured) {
		a.Logf("starting resolution %vx%v captured for %v", ev.Resolution.X, ev.Resolution.Y, ev.Entity)
	})

	render.InsertResource(a.Render, NewCameraUniforms())
	render.InsertResource(a.Render, &PostProcessStats{})
	a.AddExtract(extractCameras)
	a.AddPrepare(prepareCameraUniforms)
	a.AddPrepare(func(*render.Device, *render.World) {
		*render.MustResource[PostProcessStats](a.Render) = PostProcessStats{}
	})

	a.Graph.AddNode(NodeName, PostProcessNode{})
	a.Graph.AddEdges(render.NodeTonemapping, NodeName, render.NodeEndMainPassPostProcessing)
}

// Finish queues the post-process pipeline once every plugin is built.
func (Plugin) Finish(a *app.App) {
	render.InsertResource(a.Render, NewPostProcessPipeline(a.Device, a.Pipelines))
}
