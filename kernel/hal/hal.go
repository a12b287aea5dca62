// Package hal collects the minimal hardware-abstraction surface the rest of
// the kernel depends on directly: right now, just the serial sink early
// diagnostics and panics write through. Grounded on kernel/hal/hal.go's
// ActiveTerminal pattern; the console/VGA driver layer it also wires up is
// out of scope per SPEC_FULL.md §1.
package hal

// ActiveTerminal is the sink kfmt/early.Printf and kernel.Panic write to.
var ActiveTerminal = &serialPort{}

// InitTerminal programs the serial sink so the kernel can emit diagnostics
// before any other subsystem is ready.
func InitTerminal() {
	ActiveTerminal.Init(comPortBase)
}
