package render

import (
	"fmt"
	"reflect"

	"github.com/yohamta/donburi"
)

// World is the render-side store. It never shares memory with the
// simulation world: extraction copies values in, and the render graph only
// reads from here.
type World struct {
	resources map[reflect.Type]any
	extracted map[reflect.Type]any
}

// NewWorld creates an empty render world.
func NewWorld() *World {
	return &World{
		resources: make(map[reflect.Type]any),
		extracted: make(map[reflect.Type]any),
	}
}

// InsertResource stores r as the singleton of type T, replacing any previous one.
func InsertResource[T any](w *World, r *T) {
	w.resources[reflect.TypeFor[T]()] = r
}

// Resource returns the singleton of type T, or nil if none was inserted.
func Resource[T any](w *World) *T {
	r, ok := w.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return r.(*T)
}

// MustResource is like Resource but panics when T is missing. Use it for
// resources that a plugin guarantees during setup.
func MustResource[T any](w *World) *T {
	r := Resource[T](w)
	if r == nil {
		panic(fmt.Sprintf("render: missing resource %v", reflect.TypeFor[T]()))
	}
	return r
}

// Extracted holds one frame's snapshot of a simulation component, keyed by
// the simulation entity it was copied from.
type Extracted[T any] struct {
	items map[donburi.Entity]T
	order []donburi.Entity
}

// ExtractedStore returns the store for T, creating it on first use.
func ExtractedStore[T any](w *World) *Extracted[T] {
	key := reflect.TypeFor[T]()
	if s, ok := w.extracted[key]; ok {
		return s.(*Extracted[T])
	}
	s := &Extracted[T]{items: make(map[donburi.Entity]T)}
	w.extracted[key] = s
	return s
}

// Reset drops every item. Extraction is a full overwrite, never a merge.
func (e *Extracted[T]) Reset() {
	clear(e.items)
	e.order = e.order[:0]
}

// Insert stores a copy of v for entity.
func (e *Extracted[T]) Insert(entity donburi.Entity, v T) {
	if _, ok := e.items[entity]; !ok {
		e.order = append(e.order, entity)
	}
	e.items[entity] = v
}

// Get returns the value extracted for entity this frame.
func (e *Extracted[T]) Get(entity donburi.Entity) (T, bool) {
	v, ok := e.items[entity]
	return v, ok
}

// Len returns the number of extracted items.
func (e *Extracted[T]) Len() int {
	return len(e.order)
}

// Each calls fn for every item in insertion order.
func (e *Extracted[T]) Each(fn func(entity donburi.Entity, v T)) {
	for _, ent := range e.order {
		fn(ent, e.items[ent])
	}
}
