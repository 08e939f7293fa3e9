// Package rendertest provides a render.Backend that records instead of drawing.
package rendertest

import (
	"sync"

	"github.com/phanxgames/pixelperfect/render"
)

// Draw is one recorded draw call with its uniforms already decoded.
type Draw struct {
	Command  render.DrawCommand
	Uniforms map[string]any
}

// Backend records compiles and draws. It is safe for concurrent compiles.
type Backend struct {
	// CompileErr, when set, fails every compile.
	CompileErr error
	// DrawErr, when set, fails every draw without recording it.
	DrawErr error

	mu       sync.Mutex
	compiled []string
	draws    []Draw
}

// CompileShader records label and returns it as the program.
func (b *Backend) CompileShader(label string, src []byte) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.CompileErr != nil {
		return nil, b.CompileErr
	}
	b.compiled = append(b.compiled, label)
	return label, nil
}

// Draw records cmd.
func (b *Backend) Draw(cmd *render.DrawCommand) error {
	if b.DrawErr != nil {
		return b.DrawErr
	}
	u, err := render.DecodeUniforms(cmd)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draws = append(b.draws, Draw{Command: *cmd, Uniforms: u})
	return nil
}

// Compiled returns the labels of compiled shaders.
func (b *Backend) Compiled() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.compiled...)
}

// Draws returns every recorded draw.
func (b *Backend) Draws() []Draw {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Draw(nil), b.draws...)
}

// Reset forgets recorded draws.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draws = nil
}
