package runtime

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/errors"
)

func exerciseMemory(t *testing.T, mem marshalgen.Memory, size uint32) {
	t.Helper()

	if err := mem.WriteU8(0, 0xab); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteU16(2, 0xbeef); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteU32(4, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteU64(8, 0x0102030405060708); err != nil {
		t.Fatal(err)
	}

	if v, err := mem.ReadU8(0); err != nil || v != 0xab {
		t.Errorf("ReadU8 = %x, %v", v, err)
	}
	if v, err := mem.ReadU16(2); err != nil || v != 0xbeef {
		t.Errorf("ReadU16 = %x, %v", v, err)
	}
	if v, err := mem.ReadU32(4); err != nil || v != 0xdeadbeef {
		t.Errorf("ReadU32 = %x, %v", v, err)
	}
	if v, err := mem.ReadU64(8); err != nil || v != 0x0102030405060708 {
		t.Errorf("ReadU64 = %x, %v", v, err)
	}

	data, err := mem.Read(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != 0xef || data[3] != 0xde {
		t.Errorf("memory is not little-endian: %x", data)
	}

	_, err = mem.ReadU32(size - 2)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindOutOfBounds}) {
		t.Errorf("expected out of bounds, got %v", err)
	}
	if err := mem.Write(size-1, []byte{1, 2}); err == nil {
		t.Error("write past the end should fail")
	}
}

func TestHeapMemory(t *testing.T) {
	mem := NewHeapMemory(64)
	if mem.Size() != 64 {
		t.Errorf("Size() = %d", mem.Size())
	}
	exerciseMemory(t, mem, 64)
}

func TestGuestMemory(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close(ctx)

	mem, err := rt.NewGuestMemory(ctx, 1)
	if err != nil {
		t.Fatalf("NewGuestMemory: %v", err)
	}
	if mem.Size() != PageSize {
		t.Errorf("Size() = %d, want %d", mem.Size(), PageSize)
	}
	exerciseMemory(t, mem, PageSize)

	prev, err := mem.Grow(1)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if prev != 1 || mem.Size() != 2*PageSize {
		t.Errorf("after Grow: prev=%d size=%d", prev, mem.Size())
	}

	second, err := rt.NewGuestMemory(ctx, 1)
	if err != nil {
		t.Fatalf("second guest memory: %v", err)
	}
	if err := second.WriteU32(0, 7); err != nil {
		t.Fatal(err)
	}
	if v, _ := mem.ReadU32(0); v == 7 {
		t.Error("guest memories must be independent")
	}
	if err := second.Close(ctx); err != nil {
		t.Errorf("Close: %v", err)
	}

	if _, err := rt.NewGuestMemory(ctx, 0); err == nil {
		t.Error("zero pages should be rejected")
	}
}

func TestGuestMemory_Limit(t *testing.T) {
	ctx := context.Background()
	rt, err := NewWithLimit(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close(ctx)

	mem, err := rt.NewGuestMemory(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mem.Grow(1); err == nil {
		t.Error("growing past the runtime limit should fail")
	}
}
