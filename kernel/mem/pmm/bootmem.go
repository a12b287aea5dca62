package pmm

import (
	"petos/kernel"
	"petos/kernel/mem"
)

// BootMemAllocator hands out frames directly from the usable memory regions
// discovered at boot, one at a time and without any freeing support. It
// exists purely to carve out the handful of frames the real BuddyAllocator
// needs for its own bitmaps before the buddy allocator can take over,
// mirroring the two-phase bootstrap in
// kernel/mem/pmm/allocator/{bootmem,bitmap_allocator}.go.
type BootMemAllocator struct {
	regions []kernel.MemRegion
	region  int
	next    uint64
}

// NewBootMemAllocator builds a allocator over the usable regions of a boot
// memory map, skipping any region not marked MemAvailable.
func NewBootMemAllocator(regions []kernel.MemRegion) *BootMemAllocator {
	a := &BootMemAllocator{regions: regions}
	a.skipToUsable()
	return a
}

func (a *BootMemAllocator) skipToUsable() {
	for a.region < len(a.regions) {
		r := a.regions[a.region]
		if r.Kind == kernel.MemAvailable && a.next < r.TotalPages {
			return
		}
		a.region++
		a.next = 0
	}
}

// AllocFrame reserves and returns the next unused frame, or InvalidFrame
// once every usable region is exhausted.
func (a *BootMemAllocator) AllocFrame() Frame {
	if a.region >= len(a.regions) {
		return InvalidFrame
	}

	r := a.regions[a.region]
	frame := FrameFromAddress(r.PhysBase) + Frame(a.next)
	a.next++

	a.skipToUsable()
	return frame
}

// AllocContiguousBytes reserves a run of frames covering at least size bytes
// from the current region, returning the physical address of the first
// frame. It never spans two regions.
func (a *BootMemAllocator) AllocContiguousBytes(size mem.Size) (uintptr, bool) {
	if a.region >= len(a.regions) {
		return 0, false
	}

	r := a.regions[a.region]
	pagesNeeded := size.Pages()
	if a.next+uint64(pagesNeeded) > r.TotalPages {
		a.region++
		a.next = 0
		a.skipToUsable()
		return a.AllocContiguousBytes(size)
	}

	addr := r.PhysBase + uintptr(a.next)<<mem.PageShift
	a.next += uint64(pagesNeeded)
	a.skipToUsable()
	return addr, true
}
