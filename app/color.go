package app

import (
	"image/color"

	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the color is handed to Ebitengine.
type Color struct {
	R, G, B, A float64
}

var (
	// ColorWhite is the default sprite tint.
	ColorWhite = Color{1, 1, 1, 1}
	// ColorBlack is opaque black.
	ColorBlack = Color{0, 0, 0, 1}
)

// RGB returns an opaque color.
func RGB(r, g, b float64) Color {
	return Color{r, g, b, 1}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// RGBA implements color.Color with premultiplied 16-bit components.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA64{
		R: uint16(clamp01(c.R*c.A) * 0xffff),
		G: uint16(clamp01(c.G*c.A) * 0xffff),
		B: uint16(clamp01(c.B*c.A) * 0xffff),
		A: uint16(clamp01(c.A) * 0xffff),
	}.RGBA()
}

// GPU converts c to a render pass clear value.
func (c Color) GPU() gputypes.Color {
	return gputypes.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// ColorScale converts c to a tint for DrawImageOptions.
func (c Color) ColorScale() ebiten.ColorScale {
	var cs ebiten.ColorScale
	cs.ScaleWithColor(c)
	return cs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// WhitePixel is a 1x1 white image used for solid color sprites.
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite)
}
