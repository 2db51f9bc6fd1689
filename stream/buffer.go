package stream

import (
	"bytes"
	"encoding/binary"

	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/errors"
	"github.com/wippyai/marshalgen/internal/abi"
)

// allocAlign is the alignment of storage handed out by Alloc.
const allocAlign = 8

// Buffer implements marshalgen.Stream over an in-memory byte buffer.
type Buffer struct {
	mem   marshalgen.Memory
	alloc marshalgen.Allocator
	buf   *bytes.Buffer
	data  []byte
	pos   int
}

var _ marshalgen.Stream = (*Buffer)(nil)

// New creates an empty stream for writing values held in mem.
func New(mem marshalgen.Memory, alloc marshalgen.Allocator) *Buffer {
	return &Buffer{mem: mem, alloc: alloc, buf: &bytes.Buffer{}}
}

// NewReader creates a stream that decodes data into mem.
func NewReader(data []byte, mem marshalgen.Memory, alloc marshalgen.Allocator) *Buffer {
	return &Buffer{mem: mem, alloc: alloc, buf: &bytes.Buffer{}, data: data}
}

// Bytes returns everything written so far.
func (b *Buffer) Bytes() []byte {
	return b.buf.Bytes()
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int {
	return b.buf.Len()
}

// Remaining returns the number of unread bytes.
func (b *Buffer) Remaining() int {
	return len(b.data) - b.pos
}

// Position returns the read offset.
func (b *Buffer) Position() int {
	return b.pos
}

func (b *Buffer) Write(ptr, n uint32) error {
	if n == 0 {
		return nil
	}
	data, err := b.mem.Read(ptr, n)
	if err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindOutOfBounds, err, "read value bytes")
	}
	b.buf.Write(data)
	return nil
}

func (b *Buffer) Read(ptr, n uint32) error {
	if n == 0 {
		return nil
	}
	data, err := b.take(n)
	if err != nil {
		return err
	}
	if err := b.mem.Write(ptr, data); err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindOutOfBounds, err, "store value bytes")
	}
	return nil
}

// Alloc stores the address of n fresh bytes into slot. A zero-size request
// stores a null pointer.
func (b *Buffer) Alloc(slot, n uint32) error {
	if n == 0 {
		return b.storePtr(slot, 0)
	}
	if n > abi.MaxAlloc {
		return errors.New(errors.PhaseDecode, errors.KindAllocation).
			Value(n).
			Detail("allocation of %d bytes exceeds limit", n).
			Build()
	}
	ptr, err := b.alloc.Alloc(n, allocAlign)
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindAllocation, err, "allocate pointee")
	}
	return b.storePtr(slot, ptr)
}

// PutString writes the NUL-terminated string at str. A null pointer is
// written as the empty string.
func (b *Buffer) PutString(str uint32) error {
	data, err := b.cstring(str)
	if err != nil {
		return err
	}
	b.putBE32(uint32(len(data)))
	b.buf.Write(data)
	return nil
}

func (b *Buffer) LoadStringInPlace(slot uint32) error {
	ptr, err := b.loadString()
	if err != nil {
		return err
	}
	return b.storePtr(slot, ptr)
}

// SaveStringArray writes count followed by each string of the pointer
// array at arr.
func (b *Buffer) SaveStringArray(arr, count uint32) error {
	if count > abi.MaxArrayCount {
		return errors.Overflow(errors.PhaseEncode, nil, count, "string array count")
	}
	b.putBE32(count)
	for i := uint32(0); i < count; i++ {
		str, err := b.mem.ReadU32(arr + i*marshalgen.PointerSize)
		if err != nil {
			return errors.Wrap(errors.PhaseEncode, errors.KindOutOfBounds, err, "read string array entry")
		}
		if err := b.PutString(str); err != nil {
			return err
		}
	}
	return nil
}

func (b *Buffer) LoadStringArrayInPlace(slot uint32) error {
	count, err := b.getBE32()
	if err != nil {
		return err
	}
	if count > abi.MaxArrayCount {
		return errors.Overflow(errors.PhaseDecode, nil, count, "string array count")
	}
	if count == 0 {
		return b.storePtr(slot, 0)
	}

	arr, err := b.alloc.Alloc(count*marshalgen.PointerSize, marshalgen.PointerSize)
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindAllocation, err, "allocate string array")
	}
	for i := uint32(0); i < count; i++ {
		if err := b.LoadStringInPlace(arr + i*marshalgen.PointerSize); err != nil {
			return err
		}
	}
	return b.storePtr(slot, arr)
}

func (b *Buffer) loadString() (uint32, error) {
	n, err := b.getBE32()
	if err != nil {
		return 0, err
	}
	if n > abi.MaxStringSize {
		return 0, errors.Overflow(errors.PhaseDecode, nil, n, "string length")
	}
	data, err := b.take(n)
	if err != nil {
		return 0, err
	}

	ptr, err := b.alloc.Alloc(n+1, 1)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseDecode, errors.KindAllocation, err, "allocate string")
	}
	if err := b.mem.Write(ptr, data); err != nil {
		return 0, errors.Wrap(errors.PhaseDecode, errors.KindOutOfBounds, err, "store string")
	}
	if err := b.mem.WriteU8(ptr+n, 0); err != nil {
		return 0, errors.Wrap(errors.PhaseDecode, errors.KindOutOfBounds, err, "terminate string")
	}
	return ptr, nil
}

// cstring reads the bytes of a NUL-terminated string, without the NUL.
func (b *Buffer) cstring(ptr uint32) ([]byte, error) {
	if ptr == 0 {
		return nil, nil
	}
	var out []byte
	for i := uint32(0); ; i++ {
		if i > abi.MaxStringSize {
			return nil, errors.Overflow(errors.PhaseEncode, nil, i, "string length")
		}
		c, err := b.mem.ReadU8(ptr + i)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseEncode, errors.KindOutOfBounds, err, "unterminated string")
		}
		if c == 0 {
			return out, nil
		}
		out = append(out, c)
	}
}

func (b *Buffer) take(n uint32) ([]byte, error) {
	if uint64(b.pos)+uint64(n) > uint64(len(b.data)) {
		return nil, errors.OutOfBounds(errors.PhaseDecode, nil, b.pos+int(n), len(b.data))
	}
	data := b.data[b.pos : b.pos+int(n)]
	b.pos += int(n)
	return data, nil
}

func (b *Buffer) putBE32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
}

func (b *Buffer) getBE32() (uint32, error) {
	data, err := b.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(data), nil
}

func (b *Buffer) storePtr(slot, ptr uint32) error {
	if err := b.mem.WriteU32(slot, ptr); err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindOutOfBounds, err, "store pointer")
	}
	return nil
}
