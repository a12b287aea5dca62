package mem

import "sync/atomic"

// PageFlag is a bit in a PhysicalPage's flag set.
type PageFlag uint32

const (
	// FlagActive marks a page that is mapped into at least one address
	// space and in active use.
	FlagActive PageFlag = 1 << iota

	// FlagDirty marks a page whose contents have been modified since it
	// was last written back (reserved for a future disk-backed cache;
	// this kernel never swaps, but modules may use it for their own
	// bookkeeping).
	FlagDirty

	// FlagError marks a page the allocator has condemned (failed a
	// diagnostic) and will never hand out again.
	FlagError

	// FlagLocked marks a page that must not be evicted or reused, e.g.
	// one backing a kernel stack.
	FlagLocked

	// FlagUnused marks a page that is free.
	FlagUnused

	// FlagDMA marks a page suitable for DMA (below the 16MiB ISA DMA
	// boundary).
	FlagDMA

	// FlagVirtualMapped marks a page that currently has an associated
	// virtual-address mapping recorded in MappedAddr.
	FlagVirtualMapped
)

// PhysicalPage is the per-4KiB-frame metadata record. One instance exists
// for every frame covered by the boot memory map; see SPEC_FULL.md §3.
type PhysicalPage struct {
	refCount   uint32
	flags      uint32
	mappedAddr uintptr
}

// RefCount returns the current reference count.
func (p *PhysicalPage) RefCount() uint32 {
	return atomic.LoadUint32(&p.refCount)
}

// Acquire increments the reference count and returns the new value. Used by
// Take/Acquire call sites that hand out an additional reference to an
// already-live page.
func (p *PhysicalPage) Acquire() uint32 {
	return atomic.AddUint32(&p.refCount, 1)
}

// Release decrements the reference count and returns the new value. The
// page is free (and must be returned to the buddy free-list by the caller)
// iff the returned value is 0.
func (p *PhysicalPage) Release() uint32 {
	return atomic.AddUint32(&p.refCount, ^uint32(0))
}

// IsFree reports whether the page's refcount is 0.
func (p *PhysicalPage) IsFree() bool {
	return p.RefCount() == 0
}

// Flags returns the current flag set.
func (p *PhysicalPage) Flags() PageFlag {
	return PageFlag(atomic.LoadUint32(&p.flags))
}

// SetFlags ORs the given flags into the page's flag set.
func (p *PhysicalPage) SetFlags(f PageFlag) {
	for {
		old := atomic.LoadUint32(&p.flags)
		if atomic.CompareAndSwapUint32(&p.flags, old, old|uint32(f)) {
			return
		}
	}
}

// ClearFlags clears the given flags from the page's flag set.
func (p *PhysicalPage) ClearFlags(f PageFlag) {
	for {
		old := atomic.LoadUint32(&p.flags)
		if atomic.CompareAndSwapUint32(&p.flags, old, old&^uint32(f)) {
			return
		}
	}
}

// HasFlags reports whether all of the given flags are set.
func (p *PhysicalPage) HasFlags(f PageFlag) bool {
	return p.Flags()&f == f
}

// MappedAddr returns the virtual address this page is mapped at, if
// FlagVirtualMapped is set.
func (p *PhysicalPage) MappedAddr() uintptr {
	return p.mappedAddr
}

// SetMappedAddr records the virtual address this page is mapped at and sets
// FlagVirtualMapped.
func (p *PhysicalPage) SetMappedAddr(addr uintptr) {
	p.mappedAddr = addr
	p.SetFlags(FlagVirtualMapped)
}

// ClearMappedAddr forgets the recorded virtual-address mapping.
func (p *PhysicalPage) ClearMappedAddr() {
	p.mappedAddr = 0
	p.ClearFlags(FlagVirtualMapped)
}

// PageMap is the flat array of PhysicalPage records covering the machine's
// RAM, built once at boot. A page's physical address is always
// index<<PageShift, per SPEC_FULL.md §3.
type PageMap struct {
	pages []PhysicalPage
}

// NewPageMap allocates (in the Go heap, at boot time before the kernel's own
// allocators exist) a PageMap large enough to cover frameCount frames, all
// initially marked FlagUnused.
func NewPageMap(frameCount uint64) *PageMap {
	pm := &PageMap{pages: make([]PhysicalPage, frameCount)}
	for i := range pm.pages {
		pm.pages[i].flags = uint32(FlagUnused)
	}
	return pm
}

// Len returns the number of frames covered by this map.
func (pm *PageMap) Len() uint64 {
	return uint64(len(pm.pages))
}

// At returns the record for the given frame index. Panics if out of range,
// matching the teacher's style of trusting internal invariants rather than
// returning an error for a programming mistake.
func (pm *PageMap) At(frame uint64) *PhysicalPage {
	return &pm.pages[frame]
}
