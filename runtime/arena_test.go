package runtime

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/marshalgen/errors"
)

func TestArena_Alloc(t *testing.T) {
	a := NewArena(0, 128)

	p1, err := a.Alloc(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p1 != ArenaBase {
		t.Errorf("first allocation at %d, want %d", p1, ArenaBase)
	}

	p2, err := a.Alloc(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if p2%8 != 0 || p2 < p1+3 {
		t.Errorf("misaligned or overlapping allocation at %d", p2)
	}
	if a.Allocations() != 2 {
		t.Errorf("Allocations() = %d, want 2", a.Allocations())
	}
	if a.Used() != p2+8-ArenaBase {
		t.Errorf("Used() = %d", a.Used())
	}
}

func TestArena_Limits(t *testing.T) {
	a := NewArena(16, 32)

	if _, err := a.Alloc(16, 1); err != nil {
		t.Fatal(err)
	}
	_, err := a.Alloc(1, 1)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindAllocation}) {
		t.Errorf("expected allocation failure, got %v", err)
	}
	if _, err := a.Alloc(4, 3); err == nil {
		t.Error("non power of two alignment should fail")
	}
	if _, err := a.Alloc(0xfffffff0, 1); err == nil {
		t.Error("oversized allocation should fail")
	}
}

func TestArena_FreeAndReset(t *testing.T) {
	a := NewArena(0, 256)

	p1, _ := a.Alloc(8, 4)
	p2, _ := a.Alloc(8, 4)

	a.Free(p1, 8, 4)
	if a.Allocations() != 2 {
		t.Error("freeing a non-top allocation should be a no-op")
	}
	a.Free(p2, 8, 4)
	if a.Allocations() != 1 {
		t.Errorf("Allocations() = %d after freeing the top", a.Allocations())
	}
	if p3, _ := a.Alloc(8, 4); p3 != p2 {
		t.Errorf("freed top should be reused: got %d, want %d", p3, p2)
	}

	mark := a.Mark()
	_, _ = a.Alloc(32, 8)
	_, _ = a.Alloc(1, 1)
	a.Release(mark)
	if a.Mark() != mark || a.Allocations() != 2 {
		t.Errorf("Release did not rewind: next=%d allocations=%d", a.Mark(), a.Allocations())
	}

	a.Reset()
	if a.Used() != 0 || a.Allocations() != 0 {
		t.Error("Reset should reclaim everything")
	}
}

func TestAllocationList(t *testing.T) {
	a := NewArena(0, 256)
	list := NewAllocationList()

	for i := 0; i < 3; i++ {
		p, err := a.Alloc(4, 4)
		if err != nil {
			t.Fatal(err)
		}
		list.Add(p, 4, 4)
	}
	if list.Count() != 3 || list.Bytes() != 12 {
		t.Errorf("Count=%d Bytes=%d", list.Count(), list.Bytes())
	}

	list.Free(a)
	if a.Allocations() != 0 {
		t.Errorf("freeing newest first should unwind the arena, %d left", a.Allocations())
	}
	list.Reset()
	if list.Count() != 0 {
		t.Error("Reset should empty the list")
	}
}
