package runtime

import (
	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/errors"
	"github.com/wippyai/marshalgen/internal/abi"
)

// ArenaBase is the lowest address an arena hands out by default. Keeping
// the first bytes unused means no allocation is ever at address 0.
const ArenaBase = 16

// Allocation records a single allocation for later cleanup.
type Allocation struct {
	Ptr   uint32
	Size  uint32
	Align uint32
}

// AllocationList tracks allocations so they can be released together.
type AllocationList struct {
	allocations []Allocation
}

func NewAllocationList() *AllocationList {
	return &AllocationList{allocations: make([]Allocation, 0, 8)}
}

func (al *AllocationList) Add(ptr, size, align uint32) {
	al.allocations = append(al.allocations, Allocation{
		Ptr:   ptr,
		Size:  size,
		Align: align,
	})
}

// Free releases the tracked allocations, newest first.
func (al *AllocationList) Free(allocator marshalgen.Allocator) {
	if allocator == nil {
		return
	}
	for i := len(al.allocations) - 1; i >= 0; i-- {
		a := al.allocations[i]
		if a.Ptr != 0 {
			allocator.Free(a.Ptr, a.Size, a.Align)
		}
	}
}

func (al *AllocationList) Reset() {
	al.allocations = al.allocations[:0]
}

func (al *AllocationList) Count() int {
	return len(al.allocations)
}

// Bytes returns the total size of the tracked allocations.
func (al *AllocationList) Bytes() uint64 {
	var n uint64
	for _, a := range al.allocations {
		n += uint64(a.Size)
	}
	return n
}

// Arena is a bump allocator over [base, limit) of a linear memory. Free
// only reclaims the most recent allocation; Reset reclaims everything.
type Arena struct {
	live  *AllocationList
	base  uint32
	limit uint32
	next  uint32
}

var _ marshalgen.Allocator = (*Arena)(nil)

func NewArena(base, limit uint32) *Arena {
	if base == 0 {
		base = ArenaBase
	}
	return &Arena{base: base, limit: limit, next: base, live: NewAllocationList()}
}

func (a *Arena) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	if align&(align-1) != 0 {
		return 0, errors.New(errors.PhaseRuntime, errors.KindAllocation).
			Value(align).
			Detail("alignment %d is not a power of two", align).
			Build()
	}
	if size > abi.MaxAlloc {
		return 0, errors.AllocationFailed(errors.PhaseRuntime, size, align)
	}
	ptr := abi.AlignTo(a.next, align)
	end, ok := abi.SafeAddU32(ptr, size)
	if !ok || ptr < a.next || end > a.limit {
		return 0, errors.AllocationFailed(errors.PhaseRuntime, size, align)
	}
	a.next = end
	a.live.Add(ptr, size, align)
	return ptr, nil
}

func (a *Arena) Free(ptr, size, align uint32) {
	if ptr == 0 || ptr+size != a.next {
		return
	}
	a.next = ptr
	if n := a.live.Count(); n > 0 && a.live.allocations[n-1].Ptr == ptr {
		a.live.allocations = a.live.allocations[:n-1]
	}
}

// Reset reclaims every allocation.
func (a *Arena) Reset() {
	a.next = a.base
	a.live.Reset()
}

// Used returns the number of bytes between the base and the next free
// address, padding included.
func (a *Arena) Used() uint32 {
	return a.next - a.base
}

// Allocations returns the number of live allocations.
func (a *Arena) Allocations() int {
	return a.live.Count()
}

// Mark returns a position that Release can rewind to.
func (a *Arena) Mark() uint32 {
	return a.next
}

// Release frees everything allocated after mark.
func (a *Arena) Release(mark uint32) {
	if mark < a.base || mark > a.next {
		return
	}
	a.next = mark
	n := a.live.Count()
	for n > 0 && a.live.allocations[n-1].Ptr >= mark {
		n--
	}
	a.live.allocations = a.live.allocations[:n]
}
