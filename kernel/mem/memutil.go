package mem

import (
	"reflect"
	"unsafe"
)

// Memset sets size bytes at addr to value. The implementation is based on
// bytes.Repeat: instead of a plain byte-at-a-time loop it performs
// log2(size) copies, which is cheap since page addresses are always
// aligned.
func Memset(addr uintptr, value byte, size Size) {
	if size == 0 {
		return
	}

	target := *(*[]byte)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  int(size),
		Cap:  int(size),
		Data: addr,
	}))

	target[0] = value
	for index := Size(1); index < size; index *= 2 {
		copy(target[index:], target[:index])
	}
}

// Memcopy copies size bytes from src to dst. Used for the syscall bridge's
// user/kernel buffer transfers.
func Memcopy(dst, src uintptr, size Size) {
	if size == 0 {
		return
	}

	dstSlice := *(*[]byte)(unsafe.Pointer(&reflect.SliceHeader{
		Len: int(size), Cap: int(size), Data: dst,
	}))
	srcSlice := *(*[]byte)(unsafe.Pointer(&reflect.SliceHeader{
		Len: int(size), Cap: int(size), Data: src,
	}))

	copy(dstSlice, srcSlice)
}
