// Package slab implements the sub-page object allocator layered on top of
// kernel/mem/pmm, described in SPEC_FULL.md §4.2. Grounded directly on
// original_source/kernel/src/memory/allocators/system/slab_entry.rs: each
// SlabEntry owns a small run of pages carved into fixed-size objects and
// tracked with a 32-bit occupancy bitmap, so at most maxCapacity objects
// live in a single entry regardless of how small object_size is.
package slab

import (
	"math/bits"

	"petos/kernel/mem"
)

// maxCapacity is the largest number of objects a single SlabEntry tracks;
// its heapMask is a single uint32 so 32 is also the hard ceiling.
const maxCapacity = 32

// Entry owns one run of pages subdivided into fixed-size objects. Objects
// are taken and released via a bitmap rather than a free list, the way the
// teacher's SlabEntry does, to avoid threading pointers through
// freshly-allocated, possibly-unmapped memory.
type Entry struct {
	next       *Entry
	baseOffset uintptr
	objectSize uint16
	capacity   uint16
	heapMask   uint32
	pageRun    mem.Size
}

// NewEntry carves an Entry out of a page run starting at offset, sized
// objectSize bytes each. capacity is min(pageRun/objectSize, maxCapacity);
// any tail bytes past capacity*objectSize are wasted, matching the
// teacher's explicit "wasting memory for small objects" tradeoff.
func NewEntry(offset uintptr, objectSize uint16, pageRun mem.Size) *Entry {
	capacity := uint16(uint64(pageRun) / uint64(objectSize))
	if capacity > maxCapacity {
		capacity = maxCapacity
	}

	return &Entry{
		baseOffset: offset,
		objectSize: objectSize,
		capacity:   capacity,
		pageRun:    pageRun,
	}
}

func (e *Entry) objectIndex(offset uintptr) uint16 {
	distance := offset - e.baseOffset
	return uint16(distance / uintptr(e.objectSize))
}

// Holds reports whether offset names a live object owned by this entry.
func (e *Entry) Holds(offset uintptr) bool {
	if offset < e.baseOffset {
		return false
	}
	idx := e.objectIndex(offset)
	if idx >= e.capacity {
		return false
	}
	return e.heapMask&(1<<idx) != 0
}

// TakeObject reserves and returns the offset of the first free object. The
// caller must check Available() > 0 first; TakeObject panics otherwise,
// matching the teacher's "at least one object is free" invariant.
func (e *Entry) TakeObject() uintptr {
	if e.IsFull() {
		panic("slab: TakeObject on a full entry")
	}

	idx := uint16(bits.TrailingZeros32(^e.heapMask))
	e.heapMask |= 1 << idx

	return e.baseOffset + uintptr(idx)*uintptr(e.objectSize)
}

// Release returns the object at offset to the free pool. Panics if offset
// does not name an object currently held by this entry (a double free or a
// foreign pointer), matching the teacher's release()'s
// assert!(self.holds(offset)).
func (e *Entry) Release(offset uintptr) {
	if !e.Holds(offset) {
		panic("slab: Release of an offset not held by this entry")
	}
	idx := e.objectIndex(offset)
	e.heapMask &^= 1 << idx
}

// Available reports how many objects this entry can still hand out.
func (e *Entry) Available() uint16 {
	used := bits.OnesCount32(e.heapMask)
	return e.capacity - uint16(used)
}

// IsEmpty reports whether every object in this entry is free.
func (e *Entry) IsEmpty() bool {
	return e.heapMask == 0
}

// IsFull reports whether every object in this entry is taken.
func (e *Entry) IsFull() bool {
	return uint16(bits.OnesCount32(e.heapMask)) >= e.capacity
}
