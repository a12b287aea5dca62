package module

import (
	"testing"
	"time"
	"unsafe"

	"petos/kernel"
	"petos/kernel/object"
)

// waitForResponse blocks on work's completion event from a helper goroutine
// and fails the test if nothing answers within a second, so a regression
// that leaves a FileWork undelivered hangs the test run instead of the
// whole suite.
func waitForResponse(t *testing.T, work *FileWork) FileResponse {
	t.Helper()

	done := make(chan FileResponse, 1)
	go func() { done <- work.Wait() }()

	select {
	case resp := <-done:
		return resp
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for a FileWork response")
		return FileResponse{}
	}
}

func TestRunLoopDeliversHandlerResponseThroughFileWork(t *testing.T) {
	withFakeRuntime(t)

	m, err := Register("console", KindChar, 4)
	if err != nil {
		t.Fatalf("unexpected error registering a module: %v", err)
	}

	go RunLoop(m, func(req FileRequest) FileResponse {
		return FileResponse{Status: kernel.ErrorKind(req.Command)}
	})

	work := NewFileWork(FileRequest{Op: FileOpCommand, Command: uint32(kernel.ErrBusyResource)})
	m.Queue.Push(work)

	if resp := waitForResponse(t, work); resp.Status != kernel.ErrBusyResource {
		t.Fatalf("expected the handler's response to reach the requester, got %v", resp.Status)
	}
}

func TestRunBlockExchangeReadCopiesSectorIntoCallerBuffer(t *testing.T) {
	withFakeRuntime(t)

	m, err := Register("disk0", KindBlock, 4)
	if err != nil {
		t.Fatalf("unexpected error registering a block module: %v", err)
	}
	xchg := m.exchange

	const payload = "hello from disk"
	go func() {
		blk := xchg.deviceQueue.BlockingPop()
		copy(blk.Buf.Bytes(), payload)
		blk.Complete(kernel.ErrNone)
	}()
	go RunBlockExchange(m)

	kbuf := object.NewKernelBuf(sectorSize)
	work := NewFileWork(FileRequest{Op: FileOpRead, Buf: kbuf.Obj().Handle()})
	m.Queue.Push(work)

	if resp := waitForResponse(t, work); resp.Status != kernel.ErrNone {
		t.Fatalf("unexpected response status: %v", resp.Status)
	}
	if got := string(kbuf.Bytes()[:len(payload)]); got != payload {
		t.Fatalf("expected the caller buffer to carry the device's bytes, got %q", got)
	}
	if xchg.sector != 1 {
		t.Fatalf("expected the sector cursor to advance to 1 after the read, got %d", xchg.sector)
	}
}

func TestRunBlockExchangeWriteCopiesCallerBufferIntoSector(t *testing.T) {
	withFakeRuntime(t)

	m, err := Register("disk1", KindBlock, 4)
	if err != nil {
		t.Fatalf("unexpected error registering a block module: %v", err)
	}
	xchg := m.exchange

	observed := make(chan []byte, 1)
	go func() {
		blk := xchg.deviceQueue.BlockingPop()
		observed <- append([]byte(nil), blk.Buf.Bytes()...)
		blk.Complete(kernel.ErrNone)
	}()
	go RunBlockExchange(m)

	const payload = "write me"
	kbuf := object.NewKernelBuf(sectorSize)
	copy(kbuf.Bytes(), payload)
	work := NewFileWork(FileRequest{Op: FileOpWrite, Buf: kbuf.Obj().Handle()})
	m.Queue.Push(work)

	if resp := waitForResponse(t, work); resp.Status != kernel.ErrNone {
		t.Fatalf("unexpected response status: %v", resp.Status)
	}

	select {
	case bytes := <-observed:
		if got := string(bytes[:len(payload)]); got != payload {
			t.Fatalf("expected the device to observe the caller's bytes, got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the device side to observe the write")
	}
	if xchg.sector != 1 {
		t.Fatalf("expected the sector cursor to advance to 1 after the write, got %d", xchg.sector)
	}
}

func TestRunBlockExchangeAdvancesSectorOnDeviceFailure(t *testing.T) {
	withFakeRuntime(t)

	m, err := Register("disk2", KindBlock, 4)
	if err != nil {
		t.Fatalf("unexpected error registering a block module: %v", err)
	}
	xchg := m.exchange

	go func() {
		blk := xchg.deviceQueue.BlockingPop()
		blk.Complete(kernel.ErrNoMemory)
	}()
	go RunBlockExchange(m)

	kbuf := object.NewKernelBuf(sectorSize)
	work := NewFileWork(FileRequest{Op: FileOpRead, Buf: kbuf.Obj().Handle()})
	m.Queue.Push(work)

	if resp := waitForResponse(t, work); resp.Status != kernel.ErrNoMemory {
		t.Fatalf("expected the device's failure status to propagate, got %v", resp.Status)
	}
	if xchg.sector != 1 {
		t.Fatalf("expected the sector cursor to advance even after a device failure, got %d", xchg.sector)
	}
}

func TestDispatchIOOperationsRoutesCommandThroughModuleQueue(t *testing.T) {
	withFakeRuntime(t)

	m, err := Register("ctl0", KindChar, 4)
	if err != nil {
		t.Fatalf("unexpected error registering a module: %v", err)
	}

	go RunLoop(m, func(req FileRequest) FileResponse {
		if req.Op != FileOpCommand || req.Command != 9 {
			t.Errorf("unexpected request reaching the handler: %+v", req)
		}
		return FileResponse{Status: kernel.ErrNone}
	})

	op := ioOperation{moduleHandle: m.Queue.Obj().Handle(), command: 9}
	if err := DispatchIOOperations(uintptr(unsafe.Pointer(&op)), 1); err != nil {
		t.Fatalf("unexpected error dispatching an io operation: %v", err)
	}
}
