package render

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// TexturePool reuses offscreen images of an exact size. View targets are
// acquired from it and released when a window resize changes their size.
type TexturePool struct {
	buckets map[image.Point][]*ebiten.Image
	created int
}

// Acquire returns a cleared w×h image.
func (p *TexturePool) Acquire(w, h int) *ebiten.Image {
	key := image.Pt(w, h)
	if stack := p.buckets[key]; len(stack) > 0 {
		img := stack[len(stack)-1]
		p.buckets[key] = stack[:len(stack)-1]
		img.Clear()
		return img
	}
	p.created++
	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, w, h),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns img for reuse. It is cleared on the next Acquire.
func (p *TexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	if p.buckets == nil {
		p.buckets = make(map[image.Point][]*ebiten.Image)
	}
	key := img.Bounds().Size()
	p.buckets[key] = append(p.buckets[key], img)
}

// Created returns how many images the pool allocated.
func (p *TexturePool) Created() int { return p.created }

// Free returns the number of pooled images of size w×h.
func (p *TexturePool) Free(w, h int) int {
	return len(p.buckets[image.Pt(w, h)])
}
