package slab

import (
	"petos/kernel"
	"petos/kernel/mem"
	"petos/kernel/mem/pmm"
)

// defaultEntryPages is the page-run size given to a fresh Entry when every
// existing entry for its size class is full, matching the teacher's
// SlabEntry::DEFAULT_SLAB_SIZE_IN_PAGES.
const defaultEntryPages = 4

// sizeClasses are the object sizes this allocator serves, mirroring the
// small fixed catalogue a kernel heap typically needs (kernel object
// headers, handle tables, small VFS nodes) rather than an arbitrary
// byte-granular allocator.
var sizeClasses = [...]uint16{16, 32, 64, 128, 256, 512, 1024}

// FrameAllocator is the physical-page source a Head uses to grow.
type FrameAllocator interface {
	AllocZeroed(order mem.PageOrder) (pmm.Frame, *kernel.Error)
	Dealloc(f pmm.Frame, order mem.PageOrder)
}

// Head owns every Entry serving one object size class.
type Head struct {
	objectSize uint16
	entries    *Entry
}

// Allocator is the top-level slab allocator: one Head per size class, all
// sharing a single FrameAllocator for new page runs.
type Allocator struct {
	heads     [len(sizeClasses)]Head
	allocator FrameAllocator
}

// NewAllocator constructs a slab allocator drawing page runs from frames.
func NewAllocator(frames FrameAllocator) *Allocator {
	a := &Allocator{allocator: frames}
	for i, size := range sizeClasses {
		a.heads[i] = Head{objectSize: size}
	}
	return a
}

func classFor(size uintptr) int {
	for i, s := range sizeClasses {
		if uintptr(s) >= size {
			return i
		}
	}
	return -1
}

// Alloc reserves size bytes from the smallest size class that fits,
// growing that class with a fresh page run if every existing entry is full.
func (a *Allocator) Alloc(size uintptr) (uintptr, *kernel.Error) {
	class := classFor(size)
	if class < 0 {
		return 0, &kernel.Error{Module: "slab", Message: "object too large for slab classes", Kind: kernel.ErrInvalidData}
	}

	head := &a.heads[class]
	for e := head.entries; e != nil; e = e.next {
		if !e.IsFull() {
			return e.TakeObject(), nil
		}
	}

	entry, err := a.growHead(head)
	if err != nil {
		return 0, err
	}
	return entry.TakeObject(), nil
}

func (a *Allocator) growHead(head *Head) (*Entry, *kernel.Error) {
	order := mem.Size(defaultEntryPages * mem.PageSize).Order()
	frame, err := a.allocator.AllocZeroed(order)
	if err != nil {
		return nil, err
	}

	entry := NewEntry(frame.Address(), head.objectSize, order.Size())
	entry.next = head.entries
	head.entries = entry
	return entry, nil
}

// Free returns the object at offset to its owning entry. Panics if no
// tracked entry holds offset (a double free or a foreign pointer), matching
// Entry.Release's panic and the teacher's release() assertion.
func (a *Allocator) Free(offset uintptr) {
	for i := range a.heads {
		head := &a.heads[i]
		for e := head.entries; e != nil; e = e.next {
			if e.Holds(offset) {
				e.Release(offset)
				return
			}
		}
	}
	panic("slab: Free of an offset not owned by any tracked entry")
}
