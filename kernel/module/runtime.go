package module

import (
	"unsafe"

	"petos/kernel/kfmt/early"
)

// logFn is the sink LogFromTask writes through: kfmt/early.Printf, held in
// a variable so that it can be replaced.
var logFn = early.Printf

func readDescriptor(addr uintptr) *moduleDescriptor {
	return (*moduleDescriptor)(unsafe.Pointer(addr))
}

// Handler processes one FileRequest a module's kernel task drained from
// its queue and produces the response to send back.
type Handler func(FileRequest) FileResponse

// RunLoop drains m's queue forever, passing each request to handle and
// delivering its return value back to the requester through the FileWork
// it arrived on. It is meant to be the body of the dedicated kernel task a
// module is spawned with; the task-spawning and context-switch machinery
// that actually schedules such a body onto a CPU is architecture glue out
// of scope per SPEC_FULL.md §1, so callers invoke RunLoop directly from
// whatever task body their scheduler integration settles on.
func RunLoop(m *Module, handle Handler) {
	for {
		work := m.Queue.BlockingPop()
		work.SendResponse(handle(work.Request))
	}
}
