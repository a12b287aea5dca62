// Package vmm implements the two-level x86 page-table marker described in
// SPEC_FULL.md §4.3: it owns one page directory per address space and
// provides Map/Unmap/Lookup over it. Grounded on
// kernel/mem/vmm/{pdt,map,page,translate,tlb}.go (whose 4-level amd64 walk
// this package generalizes down to the 2-level, 10/10/12-bit layout a
// 32-bit x86 kernel actually uses) and
// src/gopheros/kernel/mem/vmm/walk.go for the table-walk shape.
package vmm

import "petos/kernel/mem"

// Page describes a virtual memory page index.
type Page uintptr

// Address returns the virtual address this page index corresponds to.
func (p Page) Address() uintptr {
	return uintptr(p) << mem.PageShift
}

// PageFromAddress returns the Page containing virtAddr, rounding down to
// the containing page if virtAddr is not page-aligned.
func PageFromAddress(virtAddr uintptr) Page {
	return Page(virtAddr >> mem.PageShift)
}
