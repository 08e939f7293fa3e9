package render

import (
	"encoding/binary"
	"math"

	"github.com/yohamta/donburi"
)

// UniformOffsetAlignment is the alignment of every slot in a dynamic uniform
// buffer, matching the common minUniformBufferOffsetAlignment limit.
const UniformOffsetAlignment = 256

// Std140 appends values using std140 layout rules: scalars align to 4, vec2
// to 8, vec3/vec4 to 16, and a struct's size rounds up to 16.
type Std140 struct {
	buf []byte
}

// Reset empties the encoder, keeping its capacity.
func (s *Std140) Reset() { s.buf = s.buf[:0] }

// Float appends a float scalar.
func (s *Std140) Float(v float32) {
	s.align(4)
	s.put(v)
}

// Vec2 appends a vec2<f32>.
func (s *Std140) Vec2(x, y float32) {
	s.align(8)
	s.put(x)
	s.put(y)
}

// Vec4 appends a vec4<f32>.
func (s *Std140) Vec4(x, y, z, w float32) {
	s.align(16)
	s.put(x)
	s.put(y)
	s.put(z)
	s.put(w)
}

// Bytes returns the encoded struct padded to a multiple of 16 bytes. The
// returned slice aliases the encoder until the next Reset.
func (s *Std140) Bytes() []byte {
	s.align(16)
	return s.buf
}

func (s *Std140) align(n int) {
	for len(s.buf)%n != 0 {
		s.buf = append(s.buf, 0)
	}
}

func (s *Std140) put(v float32) {
	s.buf = binary.LittleEndian.AppendUint32(s.buf, math.Float32bits(v))
}

// readFloat32 decodes the little-endian float at off.
func readFloat32(data []byte, off uint32) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
}

// Buffer is an uploaded block of uniform data. Its contents never change
// after Device.CreateBuffer; a new frame uploads a new Buffer.
type Buffer struct {
	label string
	data  []byte
}

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// Size returns the buffer length in bytes.
func (b *Buffer) Size() uint64 { return uint64(len(b.data)) }

// BufferBinding is a byte range of a Buffer bound to a shader slot.
type BufferBinding struct {
	Buffer *Buffer
	Offset uint64
	Size   uint64
}

// Bytes returns the bound range.
func (b BufferBinding) Bytes() []byte {
	return b.Buffer.data[b.Offset : b.Offset+b.Size]
}

// DynamicUniformBuffer packs many instances of one uniform struct into a
// single buffer, each at an aligned offset. It is rebuilt every frame.
type DynamicUniformBuffer struct {
	label    string
	staging  []byte
	itemSize uint64
	buffer   *Buffer
}

// NewDynamicUniformBuffer creates an empty buffer whose slots hold itemSize bytes.
func NewDynamicUniformBuffer(label string, itemSize uint64) *DynamicUniformBuffer {
	return &DynamicUniformBuffer{label: label, itemSize: itemSize}
}

// Clear discards staged items and the previously uploaded buffer.
func (u *DynamicUniformBuffer) Clear() {
	u.staging = u.staging[:0]
	u.buffer = nil
}

// Push stages one item and returns its offset. Items shorter than the slot
// size are zero padded; longer items panic since that is a layout bug.
func (u *DynamicUniformBuffer) Push(item []byte) uint32 {
	if uint64(len(item)) > u.itemSize {
		panic("render: uniform item larger than slot size")
	}
	offset := len(u.staging)
	u.staging = append(u.staging, item...)
	for uint64(len(u.staging)-offset) < u.itemSize {
		u.staging = append(u.staging, 0)
	}
	for len(u.staging)%UniformOffsetAlignment != 0 {
		u.staging = append(u.staging, 0)
	}
	return uint32(offset)
}

// Write uploads the staged items. With nothing staged no buffer is created,
// so Binding keeps reporting "not ready".
func (u *DynamicUniformBuffer) Write(d *Device) {
	if len(u.staging) == 0 {
		u.buffer = nil
		return
	}
	u.buffer = d.CreateBuffer(u.label, u.staging)
}

// Binding returns the slot at offset, or false when nothing has been
// uploaded this frame or offset is out of range.
func (u *DynamicUniformBuffer) Binding(offset uint32) (BufferBinding, bool) {
	if u.buffer == nil || uint64(offset)+u.itemSize > u.buffer.Size() {
		return BufferBinding{}, false
	}
	return BufferBinding{Buffer: u.buffer, Offset: uint64(offset), Size: u.itemSize}, true
}

// EntityUniforms is a DynamicUniformBuffer with one slot per entity.
type EntityUniforms struct {
	buffer  *DynamicUniformBuffer
	offsets map[donburi.Entity]uint32
}

// NewEntityUniforms creates per-entity uniforms of itemSize bytes each.
func NewEntityUniforms(label string, itemSize uint64) EntityUniforms {
	return EntityUniforms{
		buffer:  NewDynamicUniformBuffer(label, itemSize),
		offsets: make(map[donburi.Entity]uint32),
	}
}

// Clear forgets all entities and the uploaded buffer.
func (u *EntityUniforms) Clear() {
	u.buffer.Clear()
	clear(u.offsets)
}

// Push stages data for entity.
func (u *EntityUniforms) Push(entity donburi.Entity, data []byte) {
	u.offsets[entity] = u.buffer.Push(data)
}

// Write uploads all staged slots.
func (u *EntityUniforms) Write(d *Device) {
	u.buffer.Write(d)
}

// Len returns the number of entities with a slot this frame.
func (u *EntityUniforms) Len() int {
	return len(u.offsets)
}

// Binding returns the slot for entity, or false if the entity has none or
// nothing was uploaded yet.
func (u *EntityUniforms) Binding(entity donburi.Entity) (BufferBinding, bool) {
	off, ok := u.offsets[entity]
	if !ok {
		return BufferBinding{}, false
	}
	return u.buffer.Binding(off)
}
