// Package module implements the kernel-task-backed driver model described
// in SPEC_FULL.md §4.9: a registered module (filesystem, character device,
// or block device) owns a bounded work queue that a dedicated kernel task
// drains. Grounded on
// original_source/kernel/src/drivers/module_info.rs's Module/ModuleQueue
// design, with the block-device exchange task in blockexchange.go grounded
// on that file's blk_exchange/spawn_block_exchange.
package module

import (
	"unsafe"

	"petos/kernel"
	"petos/kernel/object"
	"petos/kernel/sync"
)

// Kind identifies what a Module's work queue carries.
type Kind uint8

const (
	KindFs Kind = iota
	KindChar
	KindBlock
)

func (k Kind) String() string {
	switch k {
	case KindFs:
		return "fs"
	case KindChar:
		return "char"
	case KindBlock:
		return "block"
	default:
		return "unknown"
	}
}

// maxNameLen mirrors the teacher's MAX_MODULE_NAME_LEN: module names are
// fixed-width so a descriptor can be read out of a user page with a single
// unsafe cast rather than a length-prefixed copy.
const maxNameLen = 12

// FileRequest is one unit of work a module's kernel task drains from its
// queue. Exactly one of the fields below is meaningful, selected by Op.
type FileRequest struct {
	Op      FileOp
	File    uintptr // handle to the IndexNode this request targets
	Buf     uintptr // handle to the object.KernelBuf carrying the payload
	Command uint32  // meaningful only for Op == FileOpCommand
}

// FileOp distinguishes the three request shapes a module's queue carries.
type FileOp uint8

const (
	FileOpRead FileOp = iota
	FileOpWrite
	FileOpCommand
)

// FileResponse is a module's reply to a FileRequest.
type FileResponse struct {
	Status kernel.ErrorKind
}

// FileWork pairs a FileRequest with the completion event its requester
// waits on, mirroring the teacher's FileWork::send_response/.wait() pairing
// in original_source/kernel/src/drivers/module_info.rs. This is the actual
// element type carried by a Module's public queue: the request alone
// carries no way to signal the requester back, which is what spec.md §2's
// "completing a request sets an event that unblocks the requester"
// requires.
type FileWork struct {
	Request FileRequest

	done     *object.Event
	response FileResponse
}

// NewFileWork wraps req with a fresh, unsignaled completion event.
func NewFileWork(req FileRequest) *FileWork {
	return &FileWork{Request: req, done: object.NewEvent()}
}

// SendResponse records resp and wakes whatever task is blocked in Wait.
func (w *FileWork) SendResponse(resp FileResponse) {
	w.response = resp
	w.done.Set()
}

// Wait blocks the calling task until SendResponse has been called, then
// returns the response it delivered.
func (w *FileWork) Wait() FileResponse {
	w.done.Wait()
	return w.response
}

// resolveKernelBuf turns a FileRequest.Buf handle back into the
// object.KernelBuf it names. A handle is the address of an object's Object
// header (object.Object.Handle), and every kernel object type embeds its
// header as its first field, so the cast back is exact as long as the
// handle was produced by object.KernelBuf.Obj().Handle() in this same
// address space, which is always true here: the handle never crosses the
// user/kernel boundary, only vfs's backed file path to the owning module's
// queue.
func resolveKernelBuf(handle uintptr) *object.KernelBuf {
	return (*object.KernelBuf)(unsafe.Pointer(handle))
}

// Module is one registered driver: a name, a kind, and the work queue its
// kernel task drains. Block modules additionally run a block-exchange task
// (blockexchange.go) that translates file-shaped requests into sector
// reads/writes against the underlying block device queue.
type Module struct {
	header   object.Object
	ID       uint64
	Name     string
	Kind     Kind
	Queue    *object.Queue[*FileWork]
	irqLine  *uint8
	exchange *blockExchange
}

// Obj implements object.Container.
func (m *Module) Obj() *object.Object { return &m.header }

// Info is the subset of a Module's state the syscall bridge's
// GetModuleInfo reports back to user space.
type Info struct {
	ID   uint64
	Name string
	Kind Kind
}

var (
	regMu    sync.Spinlock
	registry = map[uint64]*Module{}
	nextID   uint64
)

// Register creates and stores a new module with a bounded work queue.
// Block modules also get their block-exchange state wired
// (spawnBlockExchange); no task is started here, the exchange loop runs
// when a caller invokes RunBlockExchange. See blockexchange.go.
func Register(name string, kind Kind, capacity int) (*Module, *kernel.Error) {
	if len(name) == 0 || len(name) > maxNameLen {
		return nil, &kernel.Error{Module: "module", Message: "invalid module name length", Kind: kernel.ErrInvalidModuleParams}
	}

	regMu.Acquire()
	nextID++
	id := nextID
	regMu.Release()

	m := &Module{
		header: object.NewObject(object.KindQueue),
		ID:     id,
		Name:   name,
		Kind:   kind,
		Queue:  object.NewBoundedQueue[*FileWork](capacity),
	}

	if kind == KindBlock {
		if err := spawnBlockExchange(m, capacity); err != nil {
			return nil, err
		}
	}

	regMu.Acquire()
	registry[id] = m
	regMu.Release()

	return m, nil
}

// Describe looks up a module by its queue handle and returns its Info.
func Describe(handle uintptr) (Info, *kernel.Error) {
	regMu.Acquire()
	defer regMu.Release()

	for _, m := range registry {
		if m.Queue.Obj().Handle() == handle {
			return Info{ID: m.ID, Name: m.Name, Kind: m.Kind}, nil
		}
	}
	return Info{}, &kernel.Error{Module: "module", Message: "no module with that handle", Kind: kernel.ErrModuleIsNotFound}
}

// moduleDescriptor is the fixed-layout record RegisterFromDescriptor reads
// directly out of the calling task's memory: a 12-byte name field (unused
// bytes are NUL) followed by a one-byte queue capacity. Matches the
// teacher's fixed MAX_MODULE_NAME_LEN-width name encoding.
type moduleDescriptor struct {
	name     [maxNameLen]byte
	capacity uint8
}

// RegisterFromDescriptor parses a moduleDescriptor out of raw memory at
// addr and registers the module it describes. Used by the syscall bridge's
// RegBlockDevice/RegCharDevice handlers.
func RegisterFromDescriptor(addr uintptr, kind Kind) *kernel.Error {
	desc := readDescriptor(addr)

	n := 0
	for ; n < maxNameLen && desc.name[n] != 0; n++ {
	}
	name := string(desc.name[:n])

	capacity := int(desc.capacity)
	if capacity == 0 {
		capacity = 16
	}

	_, err := Register(name, kind, capacity)
	return err
}

// SetUserIrqHandler records line as the IRQ line of the module whose queue
// handle is moduleHandle. It only stores the line on the Module: no
// callback is appended to line's irq.Chain, so a fired interrupt on that
// line is not delivered to the module by this function.
func SetUserIrqHandler(line uint8, moduleHandle uintptr) *kernel.Error {
	regMu.Acquire()
	defer regMu.Release()

	for _, m := range registry {
		if m.Queue.Obj().Handle() == moduleHandle {
			l := line
			m.irqLine = &l
			return nil
		}
	}
	return &kernel.Error{Module: "module", Message: "no module with that handle", Kind: kernel.ErrModuleIsNotFound}
}

// LogFromTask emits a user task's PrintK message through the kernel's
// diagnostic sink.
func LogFromTask(s string) {
	logFn("[task] %s\n", s)
}

// ioOperation is the fixed-layout record DispatchIOOperations reads out of
// the calling task's memory for each entry of its IoOperation batch: a
// module handle paired with an opaque device command. The per-device
// command encoding (the ioctl-style op numbers a real char/block driver
// would interpret) is device glue SPEC_FULL.md §6 treats as reconstructible
// and is passed through to the owning module's queue uninterpreted.
type ioOperation struct {
	moduleHandle uintptr
	command      uint32
}

// lookupByHandle returns the registered module whose queue handle matches
// handle, the same lookup Describe and SetUserIrqHandler perform.
func lookupByHandle(handle uintptr) (*Module, *kernel.Error) {
	regMu.Acquire()
	defer regMu.Release()

	for _, m := range registry {
		if m.Queue.Obj().Handle() == handle {
			return m, nil
		}
	}
	return nil, &kernel.Error{Module: "module", Message: "no module with that handle", Kind: kernel.ErrModuleIsNotFound}
}

// DispatchIOOperations executes the IoOperation syscall request: addr names
// a caller-owned array of count ioOperation records, each routed as a
// FileOpCommand to its named module's queue and waited on so the syscall
// doesn't return before the command actually completes.
func DispatchIOOperations(addr uintptr, count uintptr) *kernel.Error {
	if count == 0 {
		return &kernel.Error{Module: "module", Message: "zero-length io operation batch", Kind: kernel.ErrInvalidData}
	}

	ops := unsafe.Slice((*ioOperation)(unsafe.Pointer(addr)), count)
	for _, op := range ops {
		m, err := lookupByHandle(op.moduleHandle)
		if err != nil {
			return err
		}

		work := NewFileWork(FileRequest{Op: FileOpCommand, Command: op.command})
		m.Queue.Push(work)
		if resp := work.Wait(); resp.Status != kernel.ErrNone {
			return &kernel.Error{Module: "module", Message: "io operation failed", Kind: resp.Status}
		}
	}
	return nil
}
