package irq

// gateCount is the number of interrupt-descriptor-table slots on x86.
const gateCount = 256

// IDT tracks which of the 256 interrupt gates are installed. The actual
// gate encoding (TSS-relative offsets, selector, IST index) and the LIDT
// call are architecture glue out of scope per SPEC_FULL.md §1; this type
// models the logical "is this vector installed" bookkeeping and the
// dispatch tables in handler.go, which is where the real behavior lives.
type IDT struct {
	installed [gateCount]bool
}

var (
	// idt is the single kernel-wide IDT, installed once during Init.
	idt IDT

	// chains holds the 16 PIC-line callback chains; IRQ vectors 32..47
	// dispatch into chains[vector-32].
	chains [LineCount]*Chain

	loadIDTFn = loadIDT
)

// loadIDT is implemented in architecture assembly (out of scope); it writes
// the IDT descriptor and executes LIDT.
func loadIDT()

func init() {
	for i := range chains {
		chains[i] = NewChain(uint8(i))
	}
}

// ChainFor returns the callback chain for the given PIC line (0..15).
func ChainFor(line uint8) *Chain {
	return chains[line]
}

// Init installs the 256 interrupt gates, remaps the PIC so that IRQ0..15
// land on vectors 32..47, and marks every exception and IRQ vector as
// installed. Exception handlers are registered separately via
// HandleException/HandleExceptionWithCode; IRQ dispatch always goes through
// the per-line Chain.
func Init() {
	for i := range idt.installed {
		idt.installed[i] = false
	}

	RemapPIC(32, 40)

	for v := ExceptionNum(0); v < 32; v++ {
		idt.installed[v] = true
	}
	for v := 32; v < 48; v++ {
		idt.installed[v] = true
	}
	idt.installed[SyscallVector] = true
	idt.installed[ExitTaskVector] = true
	idt.installed[ModuleInitCompleteVector] = true

	loadIDTFn()
}

// DispatchIRQ is invoked by the naked IRQ stub (out of scope) for hardware
// line `line` (0..15). Nested interrupts are not permitted: the dispatcher
// always runs with interrupts disabled.
func DispatchIRQ(line uint8, regs *Regs) {
	chains[line].Dispatch(regs)
}
