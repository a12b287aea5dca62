package syscall

import (
	"reflect"
	"unsafe"
)

// maxCStringLen bounds how far readCString will scan for a terminator,
// guarding against a malicious or buggy user task handing over an address
// that is never actually NUL-terminated.
const maxCStringLen = 4096

// readCString reads a NUL-terminated byte string directly out of memory at
// addr. Used for PrintK, whose argument is a raw pointer into the calling
// task's address space rather than a Go string value.
func readCString(addr uintptr) string {
	var raw []byte
	hdr := (*reflect.SliceHeader)(unsafe.Pointer(&raw))
	hdr.Data = addr
	hdr.Len = maxCStringLen
	hdr.Cap = maxCStringLen

	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}
