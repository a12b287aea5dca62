package vmm

import "petos/kernel/mem"

// Translate resolves virtAddr to a physical address using the currently
// active address space, returning ok=false if no mapping exists at the
// directory or table level.
func Translate(virtAddr uintptr) (physAddr uintptr, ok bool) {
	present := true

	walk(virtAddr, func(level int, pte *pageTableEntry) bool {
		if !pte.HasFlags(FlagPresent) {
			present = false
			return false
		}
		if level == pageLevels-1 {
			physAddr = pte.Frame().Address() | (virtAddr & (uintptr(mem.PageSize) - 1))
		}
		return true
	})

	return physAddr, present
}
