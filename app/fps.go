package app

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/yohamta/donburi/ecs"
)

// fpsRefreshTicks is how often the overlay text is redrawn.
const fpsRefreshTicks = 30

// fpsOverlay draws ActualFPS and ActualTPS into a small cached image.
type fpsOverlay struct {
	img   *ebiten.Image
	ticks int
}

func newFPSOverlay() *fpsOverlay {
	return &fpsOverlay{img: ebiten.NewImage(100, 32)}
}

func (o *fpsOverlay) Draw(_ *ecs.ECS, screen *ebiten.Image) {
	if o.ticks%fpsRefreshTicks == 0 {
		o.img.Fill(color.RGBA{A: 128})
		ebitenutil.DebugPrint(o.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	o.ticks++
	screen.DrawImage(o.img, nil)
}
