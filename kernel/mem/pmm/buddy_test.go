package pmm

import (
	"testing"
	"unsafe"

	"petos/kernel/mem"
)

func newTestBuddy(t *testing.T, frameCount uint64) *BuddyAllocator {
	t.Helper()
	bitmapSize := BitmapBytes(frameCount)
	backing := make([]byte, bitmapSize)
	return NewBuddyAllocator(Frame(0), frameCount, uintptr(unsafe.Pointer(&backing[0])))
}

func TestBuddyAllocContiguousSplitsBlock(t *testing.T) {
	a := newTestBuddy(t, 16)

	f, err := a.AllocContiguous(mem.PageOrder(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.IsValid() {
		t.Fatalf("expected a valid frame")
	}
}

func TestBuddyDeallocMerges(t *testing.T) {
	a := newTestBuddy(t, 16)

	f, err := a.AllocContiguous(mem.PageOrder(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a.Dealloc(f, mem.PageOrder(0))

	f2, err := a.AllocContiguous(mem.PageOrder(1))
	if err != nil {
		t.Fatalf("unexpected error after dealloc: %v", err)
	}
	if !f2.IsValid() {
		t.Fatalf("expected a valid frame for a higher order after merge")
	}
}

func TestBuddyAllocExhaustion(t *testing.T) {
	a := newTestBuddy(t, 2)

	if _, err := a.AllocContiguous(mem.PageOrder(0)); err != nil {
		t.Fatalf("first alloc should succeed: %v", err)
	}
	if _, err := a.AllocContiguous(mem.PageOrder(0)); err != nil {
		t.Fatalf("second alloc should succeed: %v", err)
	}
	if _, err := a.AllocContiguous(mem.PageOrder(0)); err == nil {
		t.Fatalf("expected out-of-memory error once frames are exhausted")
	}
}
