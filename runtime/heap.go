package runtime

import (
	"encoding/binary"

	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/errors"
)

// HeapMemory is a linear memory backed by a Go byte slice.
type HeapMemory struct {
	data []byte
}

var (
	_ marshalgen.Memory      = (*HeapMemory)(nil)
	_ marshalgen.MemorySizer = (*HeapMemory)(nil)
)

func NewHeapMemory(size uint32) *HeapMemory {
	return &HeapMemory{data: make([]byte, size)}
}

func (m *HeapMemory) Size() uint32 {
	return uint32(len(m.data))
}

// Bytes exposes the backing slice.
func (m *HeapMemory) Bytes() []byte {
	return m.data
}

func (m *HeapMemory) check(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(m.data)) {
		return errors.New(errors.PhaseRuntime, errors.KindOutOfBounds).
			Value(offset).
			Detail("access of %d bytes at %d beyond memory of %d bytes", length, offset, len(m.data)).
			Build()
	}
	return nil
}

func (m *HeapMemory) Read(offset uint32, length uint32) ([]byte, error) {
	if err := m.check(offset, length); err != nil {
		return nil, err
	}
	return m.data[offset : offset+length], nil
}

func (m *HeapMemory) Write(offset uint32, data []byte) error {
	if err := m.check(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *HeapMemory) ReadU8(offset uint32) (uint8, error) {
	if err := m.check(offset, 1); err != nil {
		return 0, err
	}
	return m.data[offset], nil
}

func (m *HeapMemory) ReadU16(offset uint32) (uint16, error) {
	if err := m.check(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.data[offset:]), nil
}

func (m *HeapMemory) ReadU32(offset uint32) (uint32, error) {
	if err := m.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), nil
}

func (m *HeapMemory) ReadU64(offset uint32) (uint64, error) {
	if err := m.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.data[offset:]), nil
}

func (m *HeapMemory) WriteU8(offset uint32, value uint8) error {
	if err := m.check(offset, 1); err != nil {
		return err
	}
	m.data[offset] = value
	return nil
}

func (m *HeapMemory) WriteU16(offset uint32, value uint16) error {
	if err := m.check(offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.data[offset:], value)
	return nil
}

func (m *HeapMemory) WriteU32(offset uint32, value uint32) error {
	if err := m.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[offset:], value)
	return nil
}

func (m *HeapMemory) WriteU64(offset uint32, value uint64) error {
	if err := m.check(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[offset:], value)
	return nil
}
