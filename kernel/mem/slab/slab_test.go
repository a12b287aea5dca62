package slab

import (
	"testing"
	"unsafe"

	"petos/kernel"
	"petos/kernel/mem"
	"petos/kernel/mem/pmm"
)

// fakeFrames hands out frames carved from a plain Go byte slice, so tests
// can exercise Allocator.growHead without a real boot memory map.
type fakeFrames struct {
	backing []byte
	next    uintptr
}

func newFakeFrames(t *testing.T) *fakeFrames {
	t.Helper()
	// over-allocate so we can round the first frame up to a page boundary.
	buf := make([]byte, 64*int(mem.PageSize))
	base := uintptr(unsafe.Pointer(&buf[0]))
	aligned := (base + uintptr(mem.PageSize) - 1) &^ (uintptr(mem.PageSize) - 1)
	return &fakeFrames{backing: buf, next: aligned}
}

func (f *fakeFrames) AllocZeroed(order mem.PageOrder) (pmm.Frame, *kernel.Error) {
	addr := f.next
	f.next += uintptr(order.Size())
	return pmm.FrameFromAddress(addr), nil
}

func (f *fakeFrames) Dealloc(pmm.Frame, mem.PageOrder) {}

func TestAllocatorAllocPicksSmallestFittingClass(t *testing.T) {
	a := NewAllocator(newFakeFrames(t))

	off, err := a.Alloc(20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if off == 0 {
		t.Fatalf("expected a non-zero offset")
	}
	if a.heads[1].entries == nil || a.heads[0].entries != nil {
		t.Fatalf("expected a 20-byte request to be served by the 32-byte class")
	}
}

func TestAllocatorRejectsOversizedRequest(t *testing.T) {
	a := NewAllocator(newFakeFrames(t))

	if _, err := a.Alloc(4096); err == nil {
		t.Fatalf("expected an error for a request past the largest size class")
	}
}

func TestAllocatorGrowsNewEntryWhenFull(t *testing.T) {
	a := NewAllocator(newFakeFrames(t))

	var offsets []uintptr
	// 16-byte class over a 4-page entry would fit 1024 objects but is capped
	// at maxCapacity (32) slots, so 40 allocations force at least one growHead.
	for i := 0; i < 40; i++ {
		off, err := a.Alloc(16)
		if err != nil {
			t.Fatalf("alloc %d: unexpected error: %v", i, err)
		}
		offsets = append(offsets, off)
	}

	for _, off := range offsets {
		a.Free(off)
	}
}

func TestAllocatorFreePanicsOnUnownedOffset(t *testing.T) {
	a := NewAllocator(newFakeFrames(t))

	off, err := a.Alloc(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Free(off)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected Free to panic on a double free")
		}
	}()
	a.Free(off)
}
