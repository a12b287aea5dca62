package vmm

import "petos/kernel/cpu"

// recursiveDirAddr is the base of the 4MiB window that the active
// directory's last (self-referencing) entry maps: page table i appears at
// recursiveDirAddr + i*4KiB and the directory itself at the window's last
// page, giving every level of the active hierarchy a stable virtual address
// regardless of where physical memory backing it lives. Grounded on
// kernel/mem/vmm/pdt.go's recursive mapping scheme.
const recursiveDirAddr = ^uintptr(0) &^ (1<<22 - 1)

// walkFn visits one page-table-entry level while resolving virtAddr. It
// returns false to abort the walk (e.g. a required entry is absent).
type walkFn func(level int, pte *pageTableEntry) bool

// walk resolves virtAddr against the currently active directory, invoking
// visit once per level (directory, then table) via the recursive mapping.
func walk(virtAddr uintptr, visit walkFn) {
	dirAddr := recursiveDirAddr | ((entriesPerTable - 1) << pageLevelShifts[1])
	dirIdx := entryIndex(virtAddr, 0)
	dirEntry := entryAt(dirAddr, dirIdx)

	if !visit(0, dirEntry) {
		return
	}

	tableAddr := recursiveDirAddr | (dirIdx << pageLevelShifts[1])
	tableIdx := entryIndex(virtAddr, 1)
	tableEntry := entryAt(tableAddr, tableIdx)

	visit(1, tableEntry)
}

// flushTLBEntry flushes virtAddr's TLB entry via the architecture-specific
// INVLPG wrapper.
func flushTLBEntry(virtAddr uintptr) {
	cpu.FlushTLBEntry(virtAddr)
}

// switchPDT loads pdtPhysAddr into CR3.
func switchPDT(pdtPhysAddr uintptr) {
	cpu.SwitchPDT(pdtPhysAddr)
}

// activePDT returns the physical address currently loaded in CR3.
func activePDT() uintptr {
	return cpu.ActivePDT()
}
