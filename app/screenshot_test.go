package app

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestScreenshotName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"joins-2", "joins-2"},
		{"frame.01", "frame.01"},
		{"bars open", "bars_open"},
		{"a/b\\c", "a_b_c"},
		{"", "frame"},
		{"  ", "frame"},
	}
	for _, tt := range tests {
		if got := screenshotName(tt.in); got != tt.want {
			t.Errorf("screenshotName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStraightAlpha(t *testing.T) {
	pixels := []byte{
		128, 64, 0, 128, // half transparent, premultiplied
		10, 20, 30, 255, // opaque
		0, 0, 0, 0, // transparent
	}
	img := straightAlpha(pixels, 3, 1)

	want := []byte{
		255, 127, 0, 128,
		10, 20, 30, 255,
		0, 0, 0, 0,
	}
	for i := range want {
		if img.Pix[i] != want[i] {
			t.Errorf("Pix[%d] = %d, want %d", i, img.Pix[i], want[i])
		}
	}
	if pixels[0] != 128 {
		t.Error("input modified")
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := writePNG(path, straightAlpha([]byte{1, 2, 3, 255}, 1, 1)); err != nil {
		t.Fatalf("writePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Errorf("bounds = %v, want 1x1", b)
	}
}

func TestScreenshotQueue(t *testing.T) {
	a := NewWithBackend(Config{Width: 8, Height: 8}, nil)
	a.Screenshot("a")
	a.Screenshot("b")
	if len(a.screenshots) != 2 || a.screenshots[0] != "a" || a.screenshots[1] != "b" {
		t.Errorf("queue = %v, want [a b]", a.screenshots)
	}
}
