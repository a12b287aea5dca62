package vmm

import (
	"unsafe"

	"petos/kernel/mem"
	"petos/kernel/mem/pmm"
)

// PageTableEntryFlag is a bit in a page-directory or page-table entry.
type PageTableEntryFlag uintptr

const (
	FlagPresent PageTableEntryFlag = 1 << iota
	FlagRW
	FlagUser
	FlagWriteThrough
	FlagCacheDisable
	FlagAccessed
	FlagDirty
	FlagHugePage
	_ // global, unused by this kernel (no per-task shared kernel pages rely on it)
	FlagCopyOnWrite
	FlagNoExecute
)

const (
	// pageLevels is 2 for a 32-bit x86 two-level directory/table scheme:
	// a page directory of 1024 entries, each pointing to a page table of
	// 1024 entries, each mapping one 4KiB page.
	pageLevels = 2

	// entriesPerTable is 1024 = 2^10 entries per directory/table.
	entriesPerTable = 1 << 10

	// ptrShift is log2(sizeof(uintptr)) when entries are a native word in
	// size; the teacher names the analogous constant mem.PointerShift.
	ptrShift = 2
)

// pageLevelBits[i] is the number of virtual-address bits consumed by level
// i (level 0 = directory, level 1 = table).
var pageLevelBits = [pageLevels]uint{10, 10}

// pageLevelShifts[i] is the bit offset of level i's index field within a
// virtual address; pageLevelShifts[pageLevels-1] is the page offset width.
var pageLevelShifts = [pageLevels]uint{22, 12}

// pageTableEntry is one 32-bit directory or table slot: a frame number in
// the high bits and a PageTableEntryFlag set in the low bits.
type pageTableEntry uintptr

func (e *pageTableEntry) Frame() pmm.Frame {
	return pmm.Frame((uintptr(*e) &^ (uintptr(mem.PageSize) - 1)) >> mem.PageShift)
}

func (e *pageTableEntry) SetFrame(f pmm.Frame) {
	*e = pageTableEntry((uintptr(*e) & (uintptr(mem.PageSize) - 1)) | f.Address())
}

func (e *pageTableEntry) Flags() PageTableEntryFlag {
	return PageTableEntryFlag(uintptr(*e) & (uintptr(mem.PageSize) - 1))
}

func (e *pageTableEntry) HasFlags(f PageTableEntryFlag) bool {
	return uintptr(*e)&uintptr(f) == uintptr(f)
}

func (e *pageTableEntry) SetFlags(f PageTableEntryFlag) {
	*e |= pageTableEntry(f)
}

func (e *pageTableEntry) ClearFlags(f PageTableEntryFlag) {
	*e &^= pageTableEntry(f)
}

// entryIndex returns the index of virtAddr's entry at the given table
// level.
func entryIndex(virtAddr uintptr, level int) uintptr {
	return (virtAddr >> pageLevelShifts[level]) & (entriesPerTable - 1)
}

// entryAt returns a pointer to the table entry at index idx within the
// table whose first entry lives at tableAddr.
func entryAt(tableAddr uintptr, idx uintptr) *pageTableEntry {
	return (*pageTableEntry)(unsafe.Pointer(tableAddr + (idx << ptrShift)))
}
