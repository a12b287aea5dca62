// Package irq builds the IDT, dispatches CPU traps and hardware interrupts,
// and runs the per-line IRQ callback chains. Grounded on
// src/gopheros/kernel/irq/{handler_amd64,interrupt_amd64}.go and
// src/gopheros/kernel/gate/gate_amd64.go for the exception vector
// enumeration, and on original_source/kernel/src/interrupts/{mod,pic}.rs and
// original_source/kernel/src/io/irq/chain.rs for the IRQ chain semantics.
package irq

import "petos/kernel/sync"

// ExceptionNum identifies a CPU exception vector.
type ExceptionNum uint8

const (
	DivideByZero                = ExceptionNum(0)
	NMI                         = ExceptionNum(2)
	Breakpoint                  = ExceptionNum(3)
	Overflow                    = ExceptionNum(4)
	BoundRangeExceeded          = ExceptionNum(5)
	InvalidOpcode               = ExceptionNum(6)
	DeviceNotAvailable          = ExceptionNum(7)
	DoubleFault                 = ExceptionNum(8)
	InvalidTSS                  = ExceptionNum(10)
	SegmentNotPresent           = ExceptionNum(11)
	StackSegmentFault           = ExceptionNum(12)
	GPFException                = ExceptionNum(13)
	PageFaultException          = ExceptionNum(14)
	FloatingPointException      = ExceptionNum(16)
	AlignmentCheck              = ExceptionNum(17)
	MachineCheck                = ExceptionNum(18)
	SIMDFloatingPointException  = ExceptionNum(19)
)

// The three user-callable vectors spec.md §4.4 names explicitly.
const (
	// SyscallVector is the synchronous syscall entry point (int 0x80).
	SyscallVector = ExceptionNum(0x80)

	// ExitTaskVector terminates the calling task (int 0x81).
	ExitTaskVector = ExceptionNum(0x81)

	// ModuleInitCompleteVector signals that a module finished its
	// initialization (int 0x82).
	ModuleInitCompleteVector = ExceptionNum(0x82)
)

// ExceptionHandler handles an exception that does not push an error code.
type ExceptionHandler func(frame *Frame, regs *Regs)

// ExceptionHandlerWithCode handles an exception that pushes an error code.
type ExceptionHandlerWithCode func(errorCode uint32, frame *Frame, regs *Regs)

var (
	exceptionHandlers         = make(map[ExceptionNum]ExceptionHandler)
	exceptionHandlersWithCode = make(map[ExceptionNum]ExceptionHandlerWithCode)
)

// HandleException registers an exception handler (without an error code)
// for the given vector.
func HandleException(num ExceptionNum, handler ExceptionHandler) {
	exceptionHandlers[num] = handler
}

// HandleExceptionWithCode registers an exception handler (with an error
// code) for the given vector.
func HandleExceptionWithCode(num ExceptionNum, handler ExceptionHandlerWithCode) {
	exceptionHandlersWithCode[num] = handler
}

// DispatchException is invoked by the (out of scope, assembly) trap stubs
// for vectors that push no error code. It looks up and invokes the
// registered handler, if any.
func DispatchException(num ExceptionNum, frame *Frame, regs *Regs) {
	sync.EnterIRQ()
	defer sync.LeaveIRQ()

	if h, ok := exceptionHandlers[num]; ok {
		h(frame, regs)
	}
}

// DispatchExceptionWithCode is the error-code-pushing counterpart of
// DispatchException.
func DispatchExceptionWithCode(num ExceptionNum, errorCode uint32, frame *Frame, regs *Regs) {
	sync.EnterIRQ()
	defer sync.LeaveIRQ()

	if h, ok := exceptionHandlersWithCode[num]; ok {
		h(errorCode, frame, regs)
	}
}
