package marshalgen

// Memory is a 32-bit addressed linear memory that generated procedures
// read field values from and decode into.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of a linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator hands out regions of a linear memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// Stream is the byte channel marshaling procedures run against.
// All addresses refer to the Memory the stream is bound to.
//
// Strings and string arrays produced by LoadStringInPlace and
// LoadStringArrayInPlace are borrowed: they live in storage owned by the
// stream's allocator and stay valid only as long as that allocator does.
type Stream interface {
	// Write appends n bytes starting at ptr.
	Write(ptr, n uint32) error
	// Read fills n bytes starting at ptr from the stream.
	Read(ptr, n uint32) error
	// Alloc reserves n bytes and stores the new address into the
	// pointer-sized slot at slot.
	Alloc(slot, n uint32) error
	// PutString writes the NUL-terminated string at str with a length prefix.
	PutString(str uint32) error
	// LoadStringInPlace decodes a length-prefixed string into fresh storage
	// and stores its address into slot.
	LoadStringInPlace(slot uint32) error
	// SaveStringArray writes count strings from the pointer array at arr.
	SaveStringArray(arr, count uint32) error
	// LoadStringArrayInPlace decodes a counted string array and stores the
	// address of the new pointer array into slot.
	LoadStringArrayInPlace(slot uint32) error
}

// PointerSize is the width of an address in the linear memory model.
const PointerSize = 4

// Direction selects whether a procedure writes a value to the stream or
// reads one from it.
type Direction uint8

const (
	Write Direction = iota
	Read
)

func (d Direction) String() string {
	if d == Read {
		return "read"
	}
	return "write"
}
