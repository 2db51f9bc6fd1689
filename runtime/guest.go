package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/errors"
	"github.com/wippyai/marshalgen/internal/wasmbin"
)

// guestMemoryExport is the export name of the memory in guest modules.
const guestMemoryExport = "memory"

// PageSize is the size of one WebAssembly memory page.
const PageSize = 65536

// Runtime owns the wazero runtime that guest memories live in.
type Runtime struct {
	rt wazero.Runtime
}

// New creates a runtime with the wazero default memory limit.
func New(ctx context.Context) (*Runtime, error) {
	return NewWithLimit(ctx, 0)
}

// NewWithLimit creates a runtime whose guest memories cannot grow past
// maxPages. Zero keeps the wazero default.
func NewWithLimit(ctx context.Context, maxPages uint32) (*Runtime, error) {
	cfg := wazero.NewRuntimeConfig()
	if maxPages > 0 {
		cfg = cfg.WithMemoryLimitPages(maxPages)
	}
	return &Runtime{rt: wazero.NewRuntimeWithConfig(ctx, cfg)}, nil
}

// Close releases all runtime resources, including guest memories.
func (r *Runtime) Close(ctx context.Context) error {
	return r.rt.Close(ctx)
}

// NewGuestMemory instantiates an anonymous module exporting a memory of
// the given number of pages.
func (r *Runtime) NewGuestMemory(ctx context.Context, pages uint32) (*GuestMemory, error) {
	if pages == 0 {
		return nil, errors.InvalidInput(errors.PhaseRuntime, "guest memory needs at least one page")
	}
	bin := wasmbin.MemoryModule(guestMemoryExport, pages, 0)
	mod, err := r.rt.InstantiateWithConfig(ctx, bin, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindAllocation, err, "instantiate guest memory")
	}
	mem := mod.ExportedMemory(guestMemoryExport)
	if mem == nil {
		_ = mod.Close(ctx)
		return nil, errors.NotFound(errors.PhaseRuntime, "export", guestMemoryExport)
	}
	Logger().Debug("guest memory created", zap.Uint32("pages", pages), zap.Uint32("bytes", mem.Size()))
	return &GuestMemory{Mem: mem, mod: mod}, nil
}

// GuestMemory adapts a wazero api.Memory to marshalgen.Memory.
type GuestMemory struct {
	Mem api.Memory
	mod api.Module
}

var (
	_ marshalgen.Memory      = (*GuestMemory)(nil)
	_ marshalgen.MemorySizer = (*GuestMemory)(nil)
)

// WrapMemory adapts an existing wazero memory, such as the memory of a
// guest program.
func WrapMemory(mem api.Memory) *GuestMemory {
	if mem == nil {
		return nil
	}
	return &GuestMemory{Mem: mem}
}

// Close releases the module backing a memory created by NewGuestMemory.
func (m *GuestMemory) Close(ctx context.Context) error {
	if m.mod == nil {
		return nil
	}
	return m.mod.Close(ctx)
}

func (m *GuestMemory) Size() uint32 {
	return m.Mem.Size()
}

// Grow adds pages and returns the previous size in pages.
func (m *GuestMemory) Grow(pages uint32) (uint32, error) {
	prev, ok := m.Mem.Grow(pages)
	if !ok {
		return 0, errors.New(errors.PhaseRuntime, errors.KindAllocation).
			Value(pages).
			Detail("cannot grow guest memory by %d pages", pages).
			Build()
	}
	return prev, nil
}

func outOfBounds(offset, length uint32) error {
	return errors.New(errors.PhaseRuntime, errors.KindOutOfBounds).
		Value(offset).
		Detail("guest memory access of %d bytes at %d", length, offset).
		Build()
}

func (m *GuestMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, outOfBounds(offset, length)
	}
	return data, nil
}

func (m *GuestMemory) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return outOfBounds(offset, uint32(len(data)))
	}
	return nil
}

func (m *GuestMemory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.Mem.ReadByte(offset)
	if !ok {
		return 0, outOfBounds(offset, 1)
	}
	return v, nil
}

func (m *GuestMemory) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.Mem.ReadUint16Le(offset)
	if !ok {
		return 0, outOfBounds(offset, 2)
	}
	return v, nil
}

func (m *GuestMemory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, outOfBounds(offset, 4)
	}
	return v, nil
}

func (m *GuestMemory) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.Mem.ReadUint64Le(offset)
	if !ok {
		return 0, outOfBounds(offset, 8)
	}
	return v, nil
}

func (m *GuestMemory) WriteU8(offset uint32, value uint8) error {
	if !m.Mem.WriteByte(offset, value) {
		return outOfBounds(offset, 1)
	}
	return nil
}

func (m *GuestMemory) WriteU16(offset uint32, value uint16) error {
	if !m.Mem.WriteUint16Le(offset, value) {
		return outOfBounds(offset, 2)
	}
	return nil
}

func (m *GuestMemory) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return outOfBounds(offset, 4)
	}
	return nil
}

func (m *GuestMemory) WriteU64(offset uint32, value uint64) error {
	if !m.Mem.WriteUint64Le(offset, value) {
		return outOfBounds(offset, 8)
	}
	return nil
}
