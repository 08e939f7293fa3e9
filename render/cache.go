package render

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// CachedRenderPipelineID identifies a queued pipeline.
type CachedRenderPipelineID int

// PipelineState is the compilation state of a queued pipeline.
type PipelineState int

const (
	PipelineQueued PipelineState = iota
	PipelineCompiling
	PipelineReady
	PipelineFailed
)

func (s PipelineState) String() string {
	switch s {
	case PipelineQueued:
		return "queued"
	case PipelineCompiling:
		return "compiling"
	case PipelineReady:
		return "ready"
	case PipelineFailed:
		return "failed"
	}
	return fmt.Sprintf("PipelineState(%d)", int(s))
}

type cachedPipeline struct {
	desc     RenderPipelineDescriptor
	state    PipelineState
	pipeline *RenderPipeline
	err      error
}

// PipelineCache compiles render pipelines off the frame loop. Queueing is
// cheap and returns an ID immediately; the pipeline becomes observable
// through GetRenderPipeline once a background compile succeeds.
//
// Identical descriptors share one entry.
type PipelineCache struct {
	device *Device

	mu       sync.Mutex
	entries  []*cachedPipeline
	byHash   map[uint64]CachedRenderPipelineID
	group    errgroup.Group
	OnError  func(id CachedRenderPipelineID, err error)
	compiled int
}

// NewPipelineCache returns a cache compiling at most two pipelines at once.
func NewPipelineCache(d *Device) *PipelineCache {
	c := &PipelineCache{device: d, byHash: make(map[uint64]CachedRenderPipelineID)}
	c.group.SetLimit(2)
	return c
}

// QueueRenderPipeline registers desc for compilation.
func (c *PipelineCache) QueueRenderPipeline(desc RenderPipelineDescriptor) CachedRenderPipelineID {
	h := hashRenderPipelineDescriptor(&desc)
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.byHash[h]; ok {
		return id
	}
	id := CachedRenderPipelineID(len(c.entries))
	c.entries = append(c.entries, &cachedPipeline{desc: desc})
	c.byHash[h] = id
	return id
}

// GetRenderPipeline returns the compiled pipeline, or false while it is
// queued, compiling or failed.
func (c *PipelineCache) GetRenderPipeline(id CachedRenderPipelineID) (*RenderPipeline, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(id)
	if e == nil || e.state != PipelineReady {
		return nil, false
	}
	return e.pipeline, true
}

// State returns the state of id and the compile error if it failed.
func (c *PipelineCache) State(id CachedRenderPipelineID) (PipelineState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(id)
	if e == nil {
		return PipelineFailed, fmt.Errorf("render: unknown pipeline id %d", id)
	}
	return e.state, e.err
}

// Compiled returns how many pipelines finished successfully.
func (c *PipelineCache) Compiled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compiled
}

func (c *PipelineCache) entry(id CachedRenderPipelineID) *cachedPipeline {
	if id < 0 || int(id) >= len(c.entries) {
		return nil
	}
	return c.entries[id]
}

// ProcessQueue starts compiling queued pipelines. Pipelines that do not fit
// under the concurrency limit stay queued until a later call.
func (c *PipelineCache) ProcessQueue() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.state != PipelineQueued {
			continue
		}
		id := CachedRenderPipelineID(i)
		desc := e.desc
		if !c.group.TryGo(func() error { return c.compile(id, desc) }) {
			return
		}
		e.state = PipelineCompiling
	}
}

// Wait blocks until every started compile finished and returns the first
// compile error.
func (c *PipelineCache) Wait() error {
	return c.group.Wait()
}

func (c *PipelineCache) compile(id CachedRenderPipelineID, desc RenderPipelineDescriptor) error {
	p, err := c.device.CreateRenderPipeline(desc)

	c.mu.Lock()
	e := c.entries[id]
	if err != nil {
		e.state, e.err = PipelineFailed, err
	} else {
		e.state, e.pipeline = PipelineReady, p
		c.compiled++
	}
	onError := c.OnError
	c.mu.Unlock()

	if err != nil && onError != nil {
		onError(id, err)
	}
	return err
}

func hashRenderPipelineDescriptor(d *RenderPipelineDescriptor) uint64 {
	h := fnv.New64a()
	writeString(h, d.Label)
	for _, l := range d.Layout {
		writeString(h, l.Label)
		for _, e := range l.Entries {
			writeUint(h, uint64(e.Binding))
			writeString(h, layoutKind(e))
			if e.Buffer != nil {
				writeUint(h, e.Buffer.MinBindingSize)
			}
		}
	}
	writeString(h, d.Vertex.EntryPoint)
	writeUint(h, uint64(len(d.Vertex.Buffers)))
	if s := d.Fragment.Shader; s != nil {
		writeString(h, s.Label)
		h.Write(s.Source)
	}
	writeString(h, d.Fragment.EntryPoint)
	for _, t := range d.Fragment.Targets {
		writeUint(h, uint64(t.Format))
		writeUint(h, uint64(t.WriteMask))
		if t.Blend != nil {
			writeUint(h, uint64(t.Blend.Color.SrcFactor))
			writeUint(h, uint64(t.Blend.Color.DstFactor))
			writeUint(h, uint64(t.Blend.Alpha.SrcFactor))
			writeUint(h, uint64(t.Blend.Alpha.DstFactor))
		}
	}
	bindings := make([]uint32, 0, len(d.Fragment.Uniforms))
	for b := range d.Fragment.Uniforms {
		bindings = append(bindings, b)
	}
	sort.Slice(bindings, func(i, j int) bool { return bindings[i] < bindings[j] })
	for _, b := range bindings {
		writeUint(h, uint64(b))
		for _, f := range d.Fragment.Uniforms[b] {
			writeString(h, f.Name)
			writeUint(h, uint64(f.Offset))
			writeUint(h, uint64(f.Len))
		}
	}
	writeUint(h, uint64(d.Primitive.Topology))
	writeUint(h, uint64(d.Primitive.CullMode))
	writeUint(h, uint64(d.Multisample.Count))
	return h.Sum64()
}

func writeString(h hash.Hash64, s string) {
	writeUint(h, uint64(len(s)))
	h.Write([]byte(s))
}

func writeUint(h hash.Hash64, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	h.Write(b[:])
}
