package vfs

import (
	"petos/kernel"
	"petos/kernel/module"
	"petos/kernel/object"
)

// Read returns up to len(buf) bytes from n. A purely in-memory file is
// read directly, starting at offset. A module-backed file routes the
// request through its owning module's work queue and blocks on the
// resulting module.FileWork's completion event before the bytes it names
// are valid; offset is not passed to the module, and the returned count is
// always len(buf).
func (n *IndexNode) Read(offset int, buf []byte) (int, *kernel.Error) {
	if n.Kind != NodeFile {
		return 0, &kernel.Error{Module: "vfs", Message: "not a file", Kind: kernel.ErrInvalidData}
	}

	if n.backing != nil {
		return n.readBacked(buf)
	}

	if offset >= len(n.data) {
		return 0, nil
	}
	copied := copy(buf, n.data[offset:])
	return copied, nil
}

// Write stores len(data) bytes into n: starting at offset, growing the
// in-memory backing slice as needed, for an unbacked file, or routed
// through the owning module's queue for a backed one, in which case offset
// is not passed to the module.
func (n *IndexNode) Write(offset int, data []byte) (int, *kernel.Error) {
	if n.Kind != NodeFile {
		return 0, &kernel.Error{Module: "vfs", Message: "not a file", Kind: kernel.ErrInvalidData}
	}

	if n.backing != nil {
		return n.writeBacked(data)
	}

	needed := offset + len(data)
	if needed > len(n.data) {
		grown := make([]byte, needed)
		copy(grown, n.data)
		n.data = grown
	}
	copy(n.data[offset:], data)
	return len(data), nil
}

func (n *IndexNode) readBacked(buf []byte) (int, *kernel.Error) {
	kbuf := object.NewKernelBuf(len(buf))
	work := module.NewFileWork(module.FileRequest{Op: module.FileOpRead, File: n.Obj().Handle(), Buf: kbuf.Obj().Handle()})
	n.backing.Queue.Push(work)

	resp := work.Wait()
	if resp.Status != kernel.ErrNone {
		return 0, &kernel.Error{Module: "vfs", Message: "backed read failed", Kind: resp.Status}
	}
	copy(buf, kbuf.Bytes())
	return len(buf), nil
}

func (n *IndexNode) writeBacked(data []byte) (int, *kernel.Error) {
	kbuf := object.NewKernelBuf(len(data))
	copy(kbuf.Bytes(), data)
	work := module.NewFileWork(module.FileRequest{Op: module.FileOpWrite, File: n.Obj().Handle(), Buf: kbuf.Obj().Handle()})
	n.backing.Queue.Push(work)

	resp := work.Wait()
	if resp.Status != kernel.ErrNone {
		return 0, &kernel.Error{Module: "vfs", Message: "backed write failed", Kind: resp.Status}
	}
	return len(data), nil
}
