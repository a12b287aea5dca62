// Package syscall implements the synchronous syscall bridge described in
// SPEC_FULL.md §4.8: int 0x80 requests land here after the
// architecture-specific trampoline (out of scope per SPEC_FULL.md §1) has
// saved the caller's registers. Grounded on
// original_source/kernel/src/io/system.rs's handle_syscall (the
// ESP-preservation check around a request that may have blocked, and the
// reserved-code fast path used by user-space to probe whether the syscall
// gate is wired up at all) and user/syscall/mod.rs's Request dispatch.
package syscall

// ErrorCode is the value returned to user space in EAX on failure; zero
// means success.
type ErrorCode uint32

const (
	OK ErrorCode = iota
	ErrNotSupported
	ErrInvalidData
	ErrNoMemory
	ErrKernelSpaceCall
	ErrBusyResource
	ErrInvalidQueueKind
	ErrNoSpaceInBuffer
	ErrModuleIsNotFound
	ErrInvalidModuleParams
)

// reservedRequest is a sentinel request code (original_source's
// syscall::RESERVED = 0xFFFF_FFFF) user space can issue to check that the
// syscall gate answers at all, without touching any real subsystem. It
// deliberately sits outside the Request enum's range rather than at 0,
// since 0 is PrintK's real request code.
const reservedRequest = 0xFFFFFFFF

// reservedCheckValue is written back in EDX for a reservedRequest call, the
// analogue of the teacher's CHECK_CODE.
const reservedCheckValue = 42
