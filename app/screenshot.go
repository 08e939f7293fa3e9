package app

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a PNG capture of the next composited frame, UI
// included. Files land in Config.ScreenshotDir as <timestamp>_<label>.png.
func (a *App) Screenshot(label string) {
	a.screenshots = append(a.screenshots, label)
}

// flushScreenshots writes every queued capture of screen. It runs at the
// end of Draw.
func (a *App) flushScreenshots(screen *ebiten.Image) {
	if len(a.screenshots) == 0 {
		return
	}
	defer func() { a.screenshots = a.screenshots[:0] }()

	dir := a.config.ScreenshotDir
	if dir == "" {
		dir = "screenshots"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		a.Logf("screenshot: %v", err)
		return
	}

	b := screen.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pixels)
	img := straightAlpha(pixels, b.Dx(), b.Dy())

	stamp := time.Now().Format("20060102_150405")
	for _, label := range a.screenshots {
		path := filepath.Join(dir, stamp+"_"+screenshotName(label)+".png")
		if err := writePNG(path, img); err != nil {
			a.Logf("screenshot: %v", err)
			continue
		}
		a.Logf("screenshot saved to %s", path)
	}
}

// straightAlpha converts premultiplied RGBA pixels to NRGBA.
func straightAlpha(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pixels)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for c := 0; c < 3; c++ {
			img.Pix[i+c] = uint8(min(int(img.Pix[i+c])*255/a, 255))
		}
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// screenshotName keeps letters, digits, '-' and '.'; anything else becomes '_'.
func screenshotName(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "frame"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
