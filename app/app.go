// Package app hosts a donburi world inside an Ebitengine game loop.
//
// Simulation runs in ordered stages of system sets on the ECS. Drawing
// extracts a copy of what the renderer needs into a separate render world,
// prepares per-frame GPU data, then runs a render graph once per camera.
//
//	a := app.New(app.DefaultConfig())
//	a.AddPlugins(myPlugin{})
//	app.SpawnCamera2D(a.ECS)
//	if err := a.Run(); err != nil {
//		log.Fatal(err)
//	}
package app

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/pixelperfect/render"
)

// Config holds window and runtime settings.
type Config struct {
	Title  string
	Width  int
	Height int
	// Debug enables per-frame stats and one-off events on stderr.
	Debug bool
	// ClearColor fills the screen behind all cameras.
	ClearColor Color
	// ShowFPS overlays FPS and TPS in the top-left corner.
	ShowFPS bool
	// ScreenshotDir is where Screenshot writes PNGs.
	ScreenshotDir string
}

// DefaultConfig returns a 1280×720 window titled "pixelperfect".
func DefaultConfig() Config {
	return Config{
		Title:         "pixelperfect",
		Width:         1280,
		Height:        720,
		ClearColor:    ColorBlack,
		ScreenshotDir: "screenshots",
	}
}

// Plugin adds systems, extraction and render nodes to an App.
type Plugin interface {
	Build(a *App)
}

// Finisher is implemented by plugins that create render resources once
// every plugin has been built.
type Finisher interface {
	Finish(a *App)
}

// ExtractFunc copies simulation state into the render world.
type ExtractFunc func(sim donburi.World, rw *render.World)

// PrepareFunc turns extracted state into GPU-side data.
type PrepareFunc func(d *render.Device, rw *render.World)

// App is an ebiten.Game driving a donburi ECS and a render graph.
type App struct {
	ECS       *ecs.ECS
	Render    *render.World
	Device    *render.Device
	Pipelines *render.PipelineCache
	Graph     *render.Graph

	config    Config
	debug     bool
	schedule  *schedule
	plugins   []Plugin
	extracts  []ExtractFunc
	prepares  []PrepareFunc
	started   bool
	pool      render.TexturePool
	targets   map[donburi.Entity]*render.ViewTarget
	lastStats FrameStats

	screenshots []string
}

// New returns an App drawing through Ebitengine.
func New(cfg Config) *App {
	return NewWithBackend(cfg, render.NewEbitenBackend())
}

// NewWithBackend returns an App submitting draws to b.
func NewWithBackend(cfg Config, b render.Backend) *App {
	d := render.NewDevice(b)
	a := &App{
		ECS:       ecs.NewECS(donburi.NewWorld()),
		Render:    render.NewWorld(),
		Device:    d,
		Pipelines: render.NewPipelineCache(d),
		Graph:     render.NewGraph(),
		config:    cfg,
		debug:     cfg.Debug,
		schedule:  newSchedule(),
		targets:   make(map[donburi.Entity]*render.ViewTarget),
	}
	a.Pipelines.OnError = func(id render.CachedRenderPipelineID, err error) {
		a.Logf("pipeline %d failed: %v", id, err)
	}
	render.InsertResource(a.Render, a.Pipelines)
	setWindowSize(a.ECS.World, cfg.Width, cfg.Height)
	a.AddPlugins(corePlugin{})
	return a
}

// World returns the simulation world.
func (a *App) World() donburi.World { return a.ECS.World }

// Config returns the configuration the app was created with.
func (a *App) Config() Config { return a.config }

// SetDebugMode toggles stderr diagnostics.
func (a *App) SetDebugMode(on bool) { a.debug = on }

// Debug reports whether diagnostics are on.
func (a *App) Debug() bool { return a.debug }

// Logf writes one diagnostic line to stderr when debug mode is on.
func (a *App) Logf(format string, args ...any) {
	if !a.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[pixelperfect] "+format+"\n", args...)
}

// AddPlugins builds each plugin immediately.
func (a *App) AddPlugins(plugins ...Plugin) *App {
	for _, p := range plugins {
		a.plugins = append(a.plugins, p)
		p.Build(a)
	}
	return a
}

// AddSystems appends systems to set within stage.
func (a *App) AddSystems(stage Stage, set SystemSet, systems ...ecs.System) *App {
	a.schedule.addSystems(stage, set, systems...)
	return a
}

// ConfigureSets orders sets one after another within stage.
func (a *App) ConfigureSets(stage Stage, sets ...SystemSet) *App {
	a.schedule.chain(stage, sets...)
	return a
}

// ConfigureSetBefore orders set before each of others within stage.
func (a *App) ConfigureSetBefore(stage Stage, set SystemSet, others ...SystemSet) *App {
	for _, o := range others {
		a.schedule.chain(stage, set, o)
	}
	return a
}

// SetOrder returns the resolved set order of stage.
func (a *App) SetOrder(stage Stage) ([]SystemSet, error) {
	return a.schedule.setOrder(stage)
}

// AddExtract registers fn to run at the start of every drawn frame.
func (a *App) AddExtract(fn ExtractFunc) *App {
	a.extracts = append(a.extracts, fn)
	return a
}

// AddPrepare registers fn to run after extraction.
func (a *App) AddPrepare(fn PrepareFunc) *App {
	a.prepares = append(a.prepares, fn)
	return a
}

// AddUI registers a renderer drawn on the screen after every camera.
func (a *App) AddUI(r func(e *ecs.ECS, screen *ebiten.Image)) *App {
	a.ECS.AddRenderer(LayerUI, r)
	return a
}

// LayerUI is the ECS layer UI renderers draw on.
const LayerUI ecs.LayerID = 0

// Startup finishes plugins and freezes the schedule. Update and Draw call
// it; calling it again does nothing.
func (a *App) Startup() {
	if a.started {
		return
	}
	a.started = true
	for _, p := range a.plugins {
		if f, ok := p.(Finisher); ok {
			f.Finish(a)
		}
	}
	for _, sys := range a.schedule.order() {
		a.ECS.AddSystem(sys)
	}
	a.schedule.compiled = true
	if a.config.ShowFPS {
		a.AddUI(newFPSOverlay().Draw)
	}
	a.Pipelines.ProcessQueue()
}

// Update runs one tick of every stage and delivers queued events.
func (a *App) Update() error {
	a.Startup()
	a.ECS.Update()
	events.ProcessAllEvents(a.ECS.World)
	return nil
}

// Layout tracks the outside size as the render target size.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	setWindowSize(a.ECS.World, outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it closes.
func (a *App) Run() error {
	ebiten.SetWindowTitle(a.config.Title)
	ebiten.SetWindowSize(a.config.Width, a.config.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(a)
}

// corePlugin registers the host's own sets, systems and graph nodes.
type corePlugin struct{}

func (corePlugin) Build(a *App) {
	a.ConfigureSets(PostUpdate, SetTransformPropagate, SetCameraUpdate)
	a.AddSystems(PostUpdate, SetTransformPropagate, PropagateTransforms)
	a.AddSystems(PostUpdate, SetCameraUpdate, UpdateCameras)

	a.AddExtract(extractViews)
	a.AddExtract(extractSprites)
	a.AddPrepare(prepareViewUniforms)
	render.InsertResource(a.Render, render.NewViewUniforms())

	a.Graph.AddNode(render.NodeMainPass, MainPassNode{})
	a.Graph.AddNode(render.NodeTonemapping, render.EmptyNode{})
	a.Graph.AddNode(render.NodeEndMainPassPostProcessing, render.EmptyNode{})
	a.Graph.AddEdges(render.NodeMainPass, render.NodeTonemapping, render.NodeEndMainPassPostProcessing)
}
