package pixelperfect

import (
	"errors"
	"fmt"
	"os"

	dmath "github.com/yohamta/donburi/features/math"
	"gopkg.in/yaml.v2"

	"github.com/phanxgames/pixelperfect/app"
)

// CameraConfig describes a pixel-perfect camera in YAML:
//
//	resolution: [320, 180]
//	bar_color: [0.1, 0.1, 0.1, 1]
//	bar_offset: [0, 8]
//	joins: 1
type CameraConfig struct {
	Resolution []float64 `yaml:"resolution"`
	BarColor   []float64 `yaml:"bar_color"`
	BarOffset  []float64 `yaml:"bar_offset"`
	// Joins enables pixelation when set, even to 0.
	Joins *float64 `yaml:"joins"`
}

// DefaultCameraConfig mirrors DefaultCameraState.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Resolution: []float64{256, 256},
		BarColor:   []float64{0, 0, 0, 1},
	}
}

// ParseCameraConfig decodes YAML over the defaults and validates it.
func ParseCameraConfig(data []byte) (CameraConfig, error) {
	cfg := DefaultCameraConfig()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return CameraConfig{}, fmt.Errorf("parse camera config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return CameraConfig{}, err
	}
	return cfg, nil
}

// LoadCameraConfig reads and parses a YAML file.
func LoadCameraConfig(path string) (CameraConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CameraConfig{}, fmt.Errorf("read camera config: %w", err)
	}
	return ParseCameraConfig(data)
}

// Validate reports values that would otherwise panic at runtime.
func (c CameraConfig) Validate() error {
	if len(c.Resolution) != 2 {
		return fmt.Errorf("camera config: resolution needs 2 components, got %d", len(c.Resolution))
	}
	if !(c.Resolution[0] > 0 && c.Resolution[1] > 0) {
		return fmt.Errorf("camera config: resolution must be positive, got %v", c.Resolution)
	}
	if n := len(c.BarOffset); n != 0 && n != 2 {
		return fmt.Errorf("camera config: bar_offset needs 2 components, got %d", n)
	}
	if n := len(c.BarColor); n != 3 && n != 4 {
		return fmt.Errorf("camera config: bar_color needs 3 or 4 components, got %d", n)
	}
	for _, v := range c.BarColor {
		if v < 0 || v > 1 {
			return errors.New("camera config: bar_color components must be within [0, 1]")
		}
	}
	if c.Joins != nil && !(*c.Joins >= 0) {
		return fmt.Errorf("camera config: joins must be non-negative, got %v", *c.Joins)
	}
	return nil
}

// State returns the CameraState described by c. c must be valid.
func (c CameraConfig) State() CameraState {
	col := app.Color{R: c.BarColor[0], G: c.BarColor[1], B: c.BarColor[2], A: 1}
	if len(c.BarColor) == 4 {
		col.A = c.BarColor[3]
	}
	s := CameraState{
		Resolution: dmath.Vec2{X: c.Resolution[0], Y: c.Resolution[1]},
		BarColor:   col,
	}
	if len(c.BarOffset) == 2 {
		s.BarOffset = dmath.Vec2{X: c.BarOffset[0], Y: c.BarOffset[1]}
	}
	return s
}

// Pixelation returns the configured pixelation, if any.
func (c CameraConfig) Pixelation() (PixelationState, bool) {
	if c.Joins == nil {
		return PixelationState{}, false
	}
	return NewPixelation(*c.Joins), true
}
