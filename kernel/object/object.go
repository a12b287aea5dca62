// Package object implements the reference-counted kernel object model
// described in SPEC_FULL.md §4.7: every object a handle can name (event,
// mutex, queue, kernel buffer) embeds an Object header carrying its kind
// tag and atomic refcount. Grounded on
// original_source/kernel/src/object/mod.rs's Object/Handle/Kind design and
// on task/mutex.rs and user/queue/mod.rs for how individual object types
// build on top of it.
package object

import (
	"sync/atomic"
	"unsafe"
)

// Kind tags the concrete type behind an Object header, so a generic Handle
// can be downcast safely and so GetObjectInfo (kernel/syscall) can report
// it without the caller needing compile-time knowledge of T.
type Kind uint8

const (
	KindEvent Kind = iota
	KindMutex
	KindQueue
	KindKernelBuf
	KindTask
)

func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "event"
	case KindMutex:
		return "mutex"
	case KindQueue:
		return "queue"
	case KindKernelBuf:
		return "kernel-buf"
	case KindTask:
		return "task"
	default:
		return "unknown"
	}
}

// Blocker is the scheduler surface object types use to suspend and wake a
// task, mirroring kernel/sync.Blocker but kept separate so this package
// never depends on kernel/sched directly: kmain wires the concrete
// scheduler in once at boot, the way the original binds a single global
// runtime.
type Blocker interface {
	BlockOn(handle uintptr)
	Notify(handle uintptr)
}

// Runtime is the scheduler every blocking object type suspends against.
// It must be assigned during kernel bring-up before any object blocks.
var Runtime Blocker

// Object is the common header every kernel object embeds. Handles identify
// an object by the address of its Object header, which doubles as a stable
// handle value for as long as the object is retained.
type Object struct {
	kind     Kind
	refCount uint32
}

// NewObject returns an Object header for a freshly constructed object of
// the given kind, with an initial reference count of one.
func NewObject(kind Kind) Object {
	return Object{kind: kind, refCount: 1}
}

// Kind reports the tag this header was constructed with.
func (o *Object) Kind() Kind { return o.kind }

// Handle returns the stable handle value for this object: the address of
// its own header.
func (o *Object) Handle() uintptr { return uintptr(unsafe.Pointer(o)) }

// Retain increments the reference count, returning the new count.
func (o *Object) Retain() uint32 {
	return atomic.AddUint32(&o.refCount, 1)
}

// Release decrements the reference count and reports whether it reached
// zero, meaning the caller now owns the last reference and must tear the
// object down.
func (o *Object) Release() bool {
	return atomic.AddUint32(&o.refCount, ^uint32(0)) == 0
}

// RefCount returns the current reference count, for diagnostics.
func (o *Object) RefCount() uint32 {
	return atomic.LoadUint32(&o.refCount)
}
