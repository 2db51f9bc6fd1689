// Package wasmbin encodes the few WebAssembly binary constructs needed to
// back guest memories: a module declaring and exporting one memory.
package wasmbin

import "bytes"

const (
	sectionMemory = 5
	sectionExport = 7

	exportKindMemory = 0x02

	limitsMin    = 0x00
	limitsMinMax = 0x01
)

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// Writer provides buffered writing utilities for WASM binary encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteU32 writes an unsigned LEB128 encoded uint32.
func (w *Writer) WriteU32(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// WriteName writes a UTF-8 encoded name (length-prefixed).
func (w *Writer) WriteName(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf.WriteString(s)
}

// Section writes a section with its size prefix.
func (w *Writer) Section(id byte, body *Writer) {
	w.Byte(id)
	w.WriteU32(uint32(body.Len()))
	w.WriteBytes(body.Bytes())
}

// MemoryModule returns a module with a single memory of minPages pages,
// exported under name. maxPages of zero leaves the memory unbounded.
func MemoryModule(name string, minPages, maxPages uint32) []byte {
	mem := NewWriter()
	mem.WriteU32(1)
	if maxPages == 0 {
		mem.Byte(limitsMin)
		mem.WriteU32(minPages)
	} else {
		mem.Byte(limitsMinMax)
		mem.WriteU32(minPages)
		mem.WriteU32(maxPages)
	}

	exp := NewWriter()
	exp.WriteU32(1)
	exp.WriteName(name)
	exp.Byte(exportKindMemory)
	exp.WriteU32(0)

	w := NewWriter()
	w.WriteBytes(header)
	w.Section(sectionMemory, mem)
	w.Section(sectionExport, exp)
	return w.Bytes()
}
