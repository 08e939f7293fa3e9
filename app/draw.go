package app

import (
	"sort"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/pixelperfect/render"
)

// ExtractedView is the render-side copy of a camera.
type ExtractedView struct {
	Order      int
	ClearColor Color
	View       CameraViewData
}

// ExtractedSprite is the render-side copy of a visible sprite.
type ExtractedSprite struct {
	Image  *ebiten.Image
	Color  Color
	Matrix [6]float64
	Z      float64
}

func extractViews(sim donburi.World, rw *render.World) {
	views := render.ExtractedStore[ExtractedView](rw)
	views.Reset()
	cameraQuery.Each(sim, func(entry *donburi.Entry) {
		cam := Camera.Get(entry)
		if cam.Inactive {
			return
		}
		views.Insert(entry.Entity(), ExtractedView{
			Order:      cam.Order,
			ClearColor: cam.ClearColor,
			View:       *CameraView.Get(entry),
		})
	})
}

var spriteQuery = donburi.NewQuery(filter.Contains(Sprite, GlobalTransform))

func extractSprites(sim donburi.World, rw *render.World) {
	sprites := render.ExtractedStore[ExtractedSprite](rw)
	sprites.Reset()
	spriteQuery.Each(sim, func(entry *donburi.Entry) {
		s := Sprite.Get(entry)
		if s.Hidden || s.Image == nil {
			return
		}
		g := GlobalTransform.Get(entry)
		sprites.Insert(entry.Entity(), ExtractedSprite{Image: s.Image, Color: s.Color, Matrix: g.Matrix, Z: g.Z})
	})
}

func prepareViewUniforms(d *render.Device, rw *render.World) {
	vu := render.MustResource[render.ViewUniforms](rw)
	vu.Uniforms.Clear()
	render.ExtractedStore[ExtractedView](rw).Each(func(e donburi.Entity, v ExtractedView) {
		w, h := float32(v.View.Width), float32(v.View.Height)
		vu.Push(e, render.ViewUniform{
			Viewport:   [4]float32{0, 0, w, h},
			TargetSize: [2]float32{w, h},
		})
	})
	vu.Uniforms.Write(d)
}

// MainPassNode clears the view target with the camera's clear color and
// draws every extracted sprite, back to front by Z.
type MainPassNode struct{}

func (MainPassNode) Run(ctx *render.RenderContext, view *render.View, world *render.World) error {
	ev, ok := render.ExtractedStore[ExtractedView](world).Get(view.Entity)
	if !ok {
		return nil
	}
	target := view.Target.MainTexture()
	ctx.BeginTrackedRenderPass(render.RenderPassDescriptor{
		Label: "main_pass_2d",
		Color: render.RenderPassColorAttachment{
			View:       target,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: ev.ClearColor.GPU(),
		},
	})

	var sprites []ExtractedSprite
	render.ExtractedStore[ExtractedSprite](world).Each(func(_ donburi.Entity, s ExtractedSprite) {
		sprites = append(sprites, s)
	})
	sort.SliceStable(sprites, func(i, j int) bool { return sprites[i].Z < sprites[j].Z })

	var op ebiten.DrawImageOptions
	for _, s := range sprites {
		b := s.Image.Bounds()
		op.GeoM.Reset()
		op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
		m := multiplyAffine(ev.View.View, s.Matrix)
		var g ebiten.GeoM
		g.SetElement(0, 0, m[0])
		g.SetElement(1, 0, m[1])
		g.SetElement(0, 1, m[2])
		g.SetElement(1, 1, m[3])
		g.SetElement(0, 2, m[4])
		g.SetElement(1, 2, m[5])
		op.GeoM.Concat(g)
		op.ColorScale = s.Color.ColorScale()
		target.DrawImage(s.Image, &op)
	}
	return nil
}

// FrameStats summarizes the last drawn frame.
type FrameStats struct {
	Views       int
	Passes      int
	ShaderDraws int
	Duration    time.Duration
}

// LastFrame returns stats of the most recent Draw.
func (a *App) LastFrame() FrameStats { return a.lastStats }

// Draw extracts, prepares and renders every active camera, composites the
// results onto screen in camera order, then draws UI.
func (a *App) Draw(screen *ebiten.Image) {
	a.Startup()
	start := time.Now()

	for _, fn := range a.extracts {
		fn(a.ECS.World, a.Render)
	}
	for _, fn := range a.prepares {
		fn(a.Device, a.Render)
	}

	ctx := render.NewRenderContext(a.Device)
	stats := FrameStats{}
	screen.Fill(a.config.ClearColor)
	for _, e := range a.sortedViews() {
		view := a.view(e, screen.Bounds().Dx(), screen.Bounds().Dy())
		if err := a.Graph.Run(ctx, view, a.Render); err != nil {
			a.Logf("view %v: %v", e, err)
			continue
		}
		screen.DrawImage(view.Target.MainTexture(), nil)
		stats.Views++
	}
	a.releaseStaleTargets()

	a.ECS.Draw(screen)
	a.flushScreenshots(screen)
	a.Pipelines.ProcessQueue()

	stats.Passes = ctx.Passes()
	stats.ShaderDraws = ctx.DrawCalls()
	stats.Duration = time.Since(start)
	a.lastStats = stats
	a.Logf("views: %d | passes: %d | shader draws: %d | frame: %v",
		stats.Views, stats.Passes, stats.ShaderDraws, stats.Duration)
}

// RenderFrame draws one frame into an offscreen image of the window size.
// Useful for headless tests and screenshots.
func (a *App) RenderFrame() *ebiten.Image {
	w, h := WindowSize(a.ECS.World)
	img := ebiten.NewImage(w, h)
	a.Draw(img)
	return img
}

func (a *App) sortedViews() []donburi.Entity {
	store := render.ExtractedStore[ExtractedView](a.Render)
	var out []donburi.Entity
	store.Each(func(e donburi.Entity, _ ExtractedView) { out = append(out, e) })
	sort.SliceStable(out, func(i, j int) bool {
		vi, _ := store.Get(out[i])
		vj, _ := store.Get(out[j])
		return vi.Order < vj.Order
	})
	return out
}

// view returns the View for camera e, reallocating its ping-pong pair when
// the target size changed.
func (a *App) view(e donburi.Entity, w, h int) *render.View {
	vt, ok := a.targets[e]
	if ok {
		if main, _ := vt.Textures(); main.Bounds().Dx() != w || main.Bounds().Dy() != h {
			a.releaseTarget(e)
			ok = false
		}
	}
	if !ok {
		vt = render.NewViewTarget(a.pool.Acquire(w, h), a.pool.Acquire(w, h))
		a.targets[e] = vt
	}
	return &render.View{Entity: e, Target: vt, Width: w, Height: h}
}

func (a *App) releaseTarget(e donburi.Entity) {
	main, other := a.targets[e].Textures()
	a.pool.Release(main)
	a.pool.Release(other)
	delete(a.targets, e)
}

func (a *App) releaseStaleTargets() {
	store := render.ExtractedStore[ExtractedView](a.Render)
	for e := range a.targets {
		if _, ok := store.Get(e); !ok {
			a.releaseTarget(e)
		}
	}
}
