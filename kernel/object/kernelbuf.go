package object

import (
	"reflect"
	"unsafe"

	"petos/kernel/mem"
)

// KernelBuf is a kernel-owned byte buffer reachable by handle, used to
// stage data that crosses the syscall boundary (UserCopy/KernelCopy)
// without exposing raw kernel pointers to user tasks directly.
type KernelBuf struct {
	header Object
	data   []byte
}

// BufSource optionally backs KernelBuf allocations with a kernel
// sub-allocator instead of the plain Go heap: kmain wires this to the slab
// allocator during boot (kernel/mem/slab.Allocator.Alloc), the same way
// Runtime is wired to the scheduler, so that the slab allocator built at
// boot has an actual caller rather than being constructed and discarded.
// Left nil, NewKernelBuf falls back
// to the plain Go heap, which is what every test in this tree runs
// against.
var BufSource func(size int) uintptr

// NewKernelBuf allocates a zeroed buffer of the given size.
func NewKernelBuf(size int) *KernelBuf {
	if BufSource == nil || size == 0 {
		return &KernelBuf{header: NewObject(KindKernelBuf), data: make([]byte, size)}
	}

	addr := BufSource(size)
	mem.Memset(addr, 0, mem.Size(size))
	data := *(*[]byte)(unsafe.Pointer(&reflect.SliceHeader{Data: addr, Len: size, Cap: size}))
	return &KernelBuf{header: NewObject(KindKernelBuf), data: data}
}

// Obj implements Container.
func (b *KernelBuf) Obj() *Object { return &b.header }

// Bytes returns the buffer's backing slice.
func (b *KernelBuf) Bytes() []byte { return b.data }

// Len reports the buffer's size in bytes.
func (b *KernelBuf) Len() int { return len(b.data) }

// Addr returns the address of the buffer's backing storage, for the raw
// mem.Memcopy calls the syscall bridge's UserCopy/KernelCopy handlers use
// to move bytes across the kernel/user boundary.
func (b *KernelBuf) Addr() uintptr {
	if len(b.data) == 0 {
		return 0
	}
	return (*reflect.SliceHeader)(unsafe.Pointer(&b.data)).Data
}
