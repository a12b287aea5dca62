package vmm

import (
	"petos/kernel"
	"petos/kernel/mem"
	"petos/kernel/mem/pmm"
)

// FrameAllocator is the minimal frame-acquisition surface a PageMarker
// needs to materialize page tables and backing pages on demand. The buddy
// allocator in kernel/mem/pmm satisfies it; tests substitute a fake.
type FrameAllocator interface {
	AllocZeroed(order mem.PageOrder) (pmm.Frame, *kernel.Error)
	Dealloc(f pmm.Frame, order mem.PageOrder)
}

// Region describes a virtual-address range to map or unmap, in whole pages.
type Region struct {
	Addr  uintptr
	Size  mem.Size
	Flags PageTableEntryFlag
}

func (r Region) pageCount() uintptr {
	return uintptr(r.Size.Pages())
}

// PageMarker owns one page directory (one address space) and maps, unmaps
// and looks up translations within it. It generalizes the teacher's
// PageDirectoryTable to the 2-level 32-bit layout; see the vmm package doc
// for the exact grounding.
type PageMarker struct {
	dirFrame  pmm.Frame
	allocator FrameAllocator
}

// NewPageMarker allocates a zeroed page directory backed by allocator and
// returns a PageMarker owning it.
func NewPageMarker(allocator FrameAllocator) (*PageMarker, *kernel.Error) {
	dirFrame, err := allocator.AllocZeroed(0)
	if err != nil {
		return nil, err
	}
	return &PageMarker{dirFrame: dirFrame, allocator: allocator}, nil
}

// Init installs the recursive self-mapping in the last directory entry, so
// that walk() can reach every level of this address space via
// recursiveDirAddr once the directory is loaded.
func (m *PageMarker) Init() {
	last := entryAt(m.dirFrame.Address(), entriesPerTable-1)
	last.SetFrame(m.dirFrame)
	last.SetFlags(FlagPresent | FlagRW)
}

// MapRange maps region into this address space, backing every page in it
// with a freshly allocated zeroed frame. A missing page table is allocated
// only when allowAllocate is set; when allowAllocate is false, an absent
// directory entry is reported as ErrNoMemory instead. A page that is
// already mapped is reported as ErrBusyResource.
func (m *PageMarker) MapRange(region Region, allowAllocate bool) *kernel.Error {
	count := region.pageCount()
	for i := uintptr(0); i < count; i++ {
		virtAddr := region.Addr + i<<mem.PageShift
		if err := m.mapOne(virtAddr, region.Flags, allowAllocate); err != nil {
			return err
		}
	}
	return nil
}

func (m *PageMarker) mapOne(virtAddr uintptr, flags PageTableEntryFlag, allowAllocate bool) *kernel.Error {
	var walkErr *kernel.Error

	walk(virtAddr, func(level int, pte *pageTableEntry) bool {
		if level < pageLevels-1 {
			if !pte.HasFlags(FlagPresent) {
				if !allowAllocate {
					walkErr = &kernel.Error{Module: "vmm", Message: "intermediate table absent", Kind: kernel.ErrNoMemory}
					return false
				}
				frame, err := m.allocator.AllocZeroed(0)
				if err != nil {
					walkErr = err
					return false
				}
				pte.SetFrame(frame)
				pte.SetFlags(FlagPresent | FlagRW | FlagUser)
			}
			return true
		}

		if pte.HasFlags(FlagPresent) {
			walkErr = &kernel.Error{Module: "vmm", Message: "page already mapped", Kind: kernel.ErrBusyResource}
			return false
		}

		frame, err := m.allocator.AllocZeroed(0)
		if err != nil {
			walkErr = err
			return false
		}
		pte.SetFrame(frame)
		pte.SetFlags(flags | FlagPresent)
		return true
	})

	if walkErr == nil {
		flushTLBEntry(virtAddr)
	}
	return walkErr
}

// UnmapRange clears the mapping for every page in region. When unmapAll is
// false, only pages actually present are cleared and absent pages are
// silently skipped; when true, an absent page is reported as an error.
func (m *PageMarker) UnmapRange(region Region, unmapAll bool) *kernel.Error {
	count := region.pageCount()
	for i := uintptr(0); i < count; i++ {
		virtAddr := region.Addr + i<<mem.PageShift
		if err := m.unmapOne(virtAddr, unmapAll); err != nil {
			return err
		}
	}
	return nil
}

func (m *PageMarker) unmapOne(virtAddr uintptr, unmapAll bool) *kernel.Error {
	var walkErr *kernel.Error
	var freed pmm.Frame = pmm.InvalidFrame

	walk(virtAddr, func(level int, pte *pageTableEntry) bool {
		if level < pageLevels-1 {
			if !pte.HasFlags(FlagPresent) {
				if unmapAll {
					walkErr = &kernel.Error{Module: "vmm", Message: "intermediate table absent", Kind: kernel.ErrInvalidData}
				}
				return false
			}
			return true
		}

		if !pte.HasFlags(FlagPresent) {
			if unmapAll {
				walkErr = &kernel.Error{Module: "vmm", Message: "page not mapped", Kind: kernel.ErrInvalidData}
			}
			return false
		}

		freed = pte.Frame()
		*pte = 0
		return true
	})

	if walkErr != nil {
		return walkErr
	}
	if freed.IsValid() {
		m.allocator.Dealloc(freed, 0)
		flushTLBEntry(virtAddr)
	}
	return nil
}

// LookupPhysical translates virtAddr within this address space. The caller
// is responsible for this address space being the one currently loaded;
// callers that need to inspect a non-active address space must Load it
// first.
func (m *PageMarker) LookupPhysical(virtAddr uintptr) (physAddr uintptr, ok bool) {
	return Translate(virtAddr)
}

// Load installs this address space's directory into CR3.
func (m *PageMarker) Load() {
	switchPDT(m.dirFrame.Address())
}

// Drop releases the directory frame itself. Callers must ensure no other
// CPU has this address space loaded.
func (m *PageMarker) Drop() {
	m.allocator.Dealloc(m.dirFrame, 0)
}
