package slab

import (
	"testing"

	"petos/kernel/mem"
)

func TestEntryTakeAndRelease(t *testing.T) {
	e := NewEntry(0x1000, 64, mem.Size(4*mem.PageSize))

	if e.capacity == 0 {
		t.Fatalf("expected a non-zero capacity")
	}
	if !e.IsEmpty() {
		t.Fatalf("freshly built entry should be empty")
	}

	off := e.TakeObject()
	if !e.Holds(off) {
		t.Fatalf("entry should hold the object it just handed out")
	}
	if e.IsEmpty() {
		t.Fatalf("entry should no longer be empty after TakeObject")
	}

	e.Release(off)
	if !e.IsEmpty() {
		t.Fatalf("entry should be empty again after Release")
	}
}

func TestEntryCapacityCeiling(t *testing.T) {
	e := NewEntry(0, 1, mem.Size(4096))
	if e.capacity != maxCapacity {
		t.Fatalf("capacity should be capped at %d, got %d", maxCapacity, e.capacity)
	}
}

func TestEntryIsFullAfterExhaustingCapacity(t *testing.T) {
	e := NewEntry(0, 256, mem.Size(4*mem.PageSize))

	var offsets []uintptr
	for e.Available() > 0 {
		offsets = append(offsets, e.TakeObject())
	}
	if !e.IsFull() {
		t.Fatalf("entry should report full once Available() == 0")
	}

	e.Release(offsets[0])
	if e.IsFull() {
		t.Fatalf("entry should no longer be full after releasing one object")
	}
}

func TestTakeObjectPanicsWhenFull(t *testing.T) {
	e := NewEntry(0, 1024, mem.Size(mem.PageSize))
	for e.Available() > 0 {
		e.TakeObject()
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected TakeObject to panic on a full entry")
		}
	}()
	e.TakeObject()
}

func TestReleasePanicsOnDoubleFree(t *testing.T) {
	e := NewEntry(0x1000, 64, mem.Size(4*mem.PageSize))
	off := e.TakeObject()
	e.Release(off)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected Release to panic on a double free")
		}
	}()
	e.Release(off)
}

func TestReleasePanicsOnForeignOffset(t *testing.T) {
	e := NewEntry(0x1000, 64, mem.Size(4*mem.PageSize))

	defer func() {
		if recover() == nil {
			t.Fatalf("expected Release to panic on an offset this entry never handed out")
		}
	}()
	e.Release(0x2000)
}
