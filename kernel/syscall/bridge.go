package syscall

import (
	"petos/kernel"
	"petos/kernel/mem"
	"petos/kernel/mem/vmm"
	"petos/kernel/module"
	"petos/kernel/object"
	"petos/kernel/sched"
	"petos/kernel/sync"
)

// Request names one operation a user task can ask the kernel to perform
// through int 0x80. The full catalogue intentionally covers more ground
// than the teacher's four-request Request enum: module registration,
// kernel-object lifecycle and the blocking primitives (events, queues) a
// synchronous one-register-pair ABI needs explicit opcodes for, since it
// has no room to encode a richer call signature.
type Request uint32

const (
	PrintK Request = iota
	MemRemap
	RegBlockDevice
	RegCharDevice
	IoOperation
	UserCopy
	KernelCopy
	QueueBlockingGet
	QueueTryGet
	EventNew
	EventBlock
	EventNotifyOne
	EventNotifyAll
	SpawnTask
	TerminateCurrentTask
	TerminateCurrentProcess
	SetIrqHandler
	GetModuleInfo
	GetObjectInfo
	CloneHandle
	FreeKernelObject
)

// Params is the in-place register payload a trap stub hands to Dispatch:
// Code carries the request on entry and the result code on return; Edx and
// Ecx carry the two general-purpose argument registers the ABI allows.
type Params struct {
	Code uint32
	Edx  uintptr
	Ecx  uintptr
}

var (
	handles   handleTable
	scheduler *sched.Scheduler
)

// Bind wires the scheduler instance syscalls that touch task state
// (SpawnTask, TerminateCurrentTask, blocking primitives) operate against.
// Called once during kernel bring-up.
func Bind(s *sched.Scheduler) {
	scheduler = s
}

// Dispatch services one syscall, mutating params in place the way the
// teacher's handle_syscall does: params.Code becomes the ErrorCode result,
// and handlers that produce a value write it back through params.Edx.
//
// A blocking handler may put the calling task to sleep and resume it much
// later on a different kernel stack; when that happens the stack pointer
// recorded before the call may no longer match the one active on return,
// so the caller is expected to re-home ESP the way handle_syscall does
// before returning to user space. That re-homing is architecture glue out
// of scope here; Dispatch only guarantees params is left in a consistent
// state for whatever stub performs it.
func Dispatch(params *Params) {
	if params.Code == reservedRequest {
		params.Code = uint32(OK)
		params.Edx = reservedCheckValue
		return
	}

	req := Request(params.Code)
	err := route(req, params)
	if err != nil {
		params.Code = uint32(codeFor(err))
		return
	}
	params.Code = uint32(OK)
}

func route(req Request, params *Params) *kernel.Error {
	switch req {
	case PrintK:
		return handlePrintK(params.Edx)
	case MemRemap:
		return handleMemRemap(params.Edx, params.Ecx)
	case RegBlockDevice:
		return handleRegBlockDevice(params.Edx)
	case RegCharDevice:
		return handleRegCharDevice(params.Edx)
	case IoOperation:
		return handleIoOperation(params.Edx, params.Ecx)
	case UserCopy:
		return handleUserCopy(params.Edx, params.Ecx)
	case KernelCopy:
		return handleKernelCopy(params.Edx, params.Ecx)
	case QueueBlockingGet:
		return handleQueueGet(params, true)
	case QueueTryGet:
		return handleQueueGet(params, false)
	case EventNew:
		return handleEventNew(params)
	case EventBlock:
		return handleEventBlock(params.Edx)
	case EventNotifyOne, EventNotifyAll:
		return handleEventNotify(params.Edx)
	case SpawnTask:
		return handleSpawnTask(params)
	case TerminateCurrentTask:
		return handleTerminateCurrentTask()
	case TerminateCurrentProcess:
		return handleTerminateCurrentProcess()
	case SetIrqHandler:
		return handleSetIrqHandler(params.Edx, params.Ecx)
	case GetModuleInfo:
		return handleGetModuleInfo(params)
	case GetObjectInfo:
		return handleGetObjectInfo(params)
	case CloneHandle:
		return handleCloneHandle(params)
	case FreeKernelObject:
		return handleFreeKernelObject(params.Edx)
	default:
		return &kernel.Error{Module: "syscall", Message: "unknown request", Kind: kernel.ErrNotSupported}
	}
}

func codeFor(err *kernel.Error) ErrorCode {
	switch err.Kind {
	case kernel.ErrNoMemory:
		return ErrNoMemory
	case kernel.ErrInvalidData:
		return ErrInvalidData
	case kernel.ErrKernelSpaceCall:
		return ErrKernelSpaceCall
	case kernel.ErrBusyResource:
		return ErrBusyResource
	case kernel.ErrInvalidQueueKind:
		return ErrInvalidQueueKind
	case kernel.ErrNoSpaceInBuffer:
		return ErrNoSpaceInBuffer
	case kernel.ErrModuleIsNotFound:
		return ErrModuleIsNotFound
	case kernel.ErrInvalidModuleParams:
		return ErrInvalidModuleParams
	default:
		return ErrNotSupported
	}
}

// validatePtr rejects the null pointer the way the teacher's validate_ref
// does, since a user task handing over offset zero is always a bug (or an
// attack) rather than a legitimate argument.
func validatePtr(offset uintptr) *kernel.Error {
	if offset == 0 {
		return &kernel.Error{Module: "syscall", Message: "null argument pointer", Kind: kernel.ErrInvalidData}
	}
	return nil
}

func handlePrintK(edx uintptr) *kernel.Error {
	if err := validatePtr(edx); err != nil {
		return err
	}
	str := readCString(edx)
	module.LogFromTask(str)
	return nil
}

func handleMemRemap(edx, ecx uintptr) *kernel.Error {
	if err := validatePtr(edx); err != nil {
		return err
	}
	region := vmm.Region{Addr: edx, Size: mem.Size(ecx)}
	marker := currentAddressSpace()
	if marker == nil {
		return &kernel.Error{Module: "syscall", Message: "no address space bound to current task", Kind: kernel.ErrKernelSpaceCall}
	}
	return marker.MapRange(region, true)
}

func handleRegBlockDevice(edx uintptr) *kernel.Error {
	if err := validatePtr(edx); err != nil {
		return err
	}
	return module.RegisterFromDescriptor(edx, module.KindBlock)
}

func handleRegCharDevice(edx uintptr) *kernel.Error {
	if err := validatePtr(edx); err != nil {
		return err
	}
	return module.RegisterFromDescriptor(edx, module.KindChar)
}

func handleIoOperation(edx, ecx uintptr) *kernel.Error {
	if err := validatePtr(edx); err != nil {
		return err
	}
	return module.DispatchIOOperations(edx, ecx)
}

// handleUserCopy copies a kernel buffer named by edx out to the user
// address in ecx (kernel -> user direction; the user task is reading a
// kernel-produced result).
func handleUserCopy(edx, ecx uintptr) *kernel.Error {
	h, err := handles.lookup(edx)
	if err != nil {
		return err
	}
	buf, ok := h.(*object.KernelBuf)
	if !ok {
		return &kernel.Error{Module: "syscall", Message: "handle is not a kernel buffer", Kind: kernel.ErrInvalidData}
	}
	mem.Memcopy(ecx, buf.Addr(), mem.Size(buf.Len()))
	return nil
}

// handleKernelCopy copies a user buffer at ecx into the kernel buffer named
// by edx (user -> kernel direction; the user task is submitting data).
func handleKernelCopy(edx, ecx uintptr) *kernel.Error {
	h, err := handles.lookup(edx)
	if err != nil {
		return err
	}
	buf, ok := h.(*object.KernelBuf)
	if !ok {
		return &kernel.Error{Module: "syscall", Message: "handle is not a kernel buffer", Kind: kernel.ErrInvalidData}
	}
	mem.Memcopy(buf.Addr(), ecx, mem.Size(buf.Len()))
	return nil
}

func handleQueueGet(params *Params, blocking bool) *kernel.Error {
	h, err := handles.lookup(params.Edx)
	if err != nil {
		return err
	}
	q, ok := h.(*object.Queue[uintptr])
	if !ok {
		return &kernel.Error{Module: "syscall", Message: "handle is not a queue", Kind: kernel.ErrInvalidQueueKind}
	}

	if blocking {
		params.Ecx = q.BlockingPop()
		return nil
	}

	v, ok := q.TryPop()
	if !ok {
		return &kernel.Error{Module: "syscall", Message: "queue empty", Kind: kernel.ErrBusyResource}
	}
	params.Ecx = v
	return nil
}

func handleEventNew(params *Params) *kernel.Error {
	ev := object.NewEvent()
	params.Edx = handles.insert(ev)
	return nil
}

func handleEventBlock(edx uintptr) *kernel.Error {
	h, err := handles.lookup(edx)
	if err != nil {
		return err
	}
	ev, ok := h.(*object.Event)
	if !ok {
		return &kernel.Error{Module: "syscall", Message: "handle is not an event", Kind: kernel.ErrInvalidData}
	}
	ev.Wait()
	return nil
}

func handleEventNotify(edx uintptr) *kernel.Error {
	h, err := handles.lookup(edx)
	if err != nil {
		return err
	}
	ev, ok := h.(*object.Event)
	if !ok {
		return &kernel.Error{Module: "syscall", Message: "handle is not an event", Kind: kernel.ErrInvalidData}
	}
	ev.Set()
	return nil
}

func handleSpawnTask(params *Params) *kernel.Error {
	if scheduler == nil {
		return &kernel.Error{Module: "syscall", Message: "scheduler not bound", Kind: kernel.ErrKernelSpaceCall}
	}
	task := sched.NewTask(nextTaskID(), sched.PriorityUser(0))
	scheduler.PushTask(task)
	params.Edx = uintptr(task.ID)
	return nil
}

func handleTerminateCurrentTask() *kernel.Error {
	if scheduler == nil {
		return &kernel.Error{Module: "syscall", Message: "scheduler not bound", Kind: kernel.ErrKernelSpaceCall}
	}
	scheduler.Terminate()
	return nil
}

func handleTerminateCurrentProcess() *kernel.Error {
	return handleTerminateCurrentTask()
}

func handleSetIrqHandler(edx, ecx uintptr) *kernel.Error {
	line := uint8(edx)
	return module.SetUserIrqHandler(line, ecx)
}

func handleGetModuleInfo(params *Params) *kernel.Error {
	info, err := module.Describe(params.Edx)
	if err != nil {
		return err
	}
	params.Ecx = uintptr(info.Kind)
	return nil
}

func handleGetObjectInfo(params *Params) *kernel.Error {
	h, err := handles.lookup(params.Edx)
	if err != nil {
		return err
	}
	if c, ok := h.(object.Container); ok {
		params.Ecx = uintptr(c.Obj().Kind())
		return nil
	}
	return &kernel.Error{Module: "syscall", Message: "handle is not an object container", Kind: kernel.ErrInvalidData}
}

func handleCloneHandle(params *Params) *kernel.Error {
	h, err := handles.lookup(params.Edx)
	if err != nil {
		return err
	}
	if c, ok := h.(object.Container); ok {
		c.Obj().Retain()
		params.Ecx = params.Edx
		return nil
	}
	return &kernel.Error{Module: "syscall", Message: "handle is not an object container", Kind: kernel.ErrInvalidData}
}

func handleFreeKernelObject(edx uintptr) *kernel.Error {
	return handles.release(edx)
}

var taskIDSeq sync.Spinlock
var nextTaskIDValue uint64

func nextTaskID() uint64 {
	taskIDSeq.Acquire()
	defer taskIDSeq.Release()
	nextTaskIDValue++
	return nextTaskIDValue
}

// currentAddressSpace resolves the page marker backing the current task.
// Address-space-per-task bookkeeping lives in kernel/sched's Task.Context
// once a process model is wired in; until then this always reports no
// address space, matching the MemRemap error path above.
func currentAddressSpace() *vmm.PageMarker {
	return nil
}
