package object

import (
	"testing"
	"unsafe"
)

// fakeBlocker is a no-op scheduler stand-in: BlockOn returns immediately
// rather than actually suspending, which is enough for tests that only care
// about whether Notify/BlockOn were invoked, not about real preemption
// (kernel/sched has its own tests for the real scheduling behavior).
type fakeBlocker struct {
	blockCalls  int
	notifyCalls int
}

func (f *fakeBlocker) BlockOn(uintptr) { f.blockCalls++ }
func (f *fakeBlocker) Notify(uintptr)  { f.notifyCalls++ }

func withFakeRuntime(t *testing.T) *fakeBlocker {
	t.Helper()
	prev := Runtime
	fb := &fakeBlocker{}
	Runtime = fb
	t.Cleanup(func() { Runtime = prev })
	return fb
}

func TestObjectRefCounting(t *testing.T) {
	o := NewObject(KindEvent)
	if o.RefCount() != 1 {
		t.Fatalf("expected a fresh object to start with refcount 1, got %d", o.RefCount())
	}

	o.Retain()
	if o.RefCount() != 2 {
		t.Fatalf("expected refcount 2 after Retain, got %d", o.RefCount())
	}

	if o.Release() {
		t.Fatalf("Release should not report zero while a reference remains")
	}
	if !o.Release() {
		t.Fatalf("Release should report zero once the last reference drops")
	}
}

func TestObjectHandleIsStableAddress(t *testing.T) {
	o := NewObject(KindQueue)
	if o.Handle() != o.Handle() {
		t.Fatalf("Handle() should be stable across calls")
	}
}

func TestEventSetClearWait(t *testing.T) {
	fb := withFakeRuntime(t)

	e := NewEvent()
	if e.IsSet() {
		t.Fatalf("a fresh event should not be signaled")
	}

	e.Set()
	if !e.IsSet() {
		t.Fatalf("expected the event to be signaled after Set")
	}
	if fb.notifyCalls != 1 {
		t.Fatalf("expected Set to notify the runtime once, got %d calls", fb.notifyCalls)
	}

	e.Wait() // already signaled, must not block
	if fb.blockCalls != 0 {
		t.Fatalf("Wait on an already-signaled event should not block")
	}

	e.Clear()
	if e.IsSet() {
		t.Fatalf("expected the event to be cleared")
	}
}

func TestMutexTryLockExcludesConcurrentHolder(t *testing.T) {
	withFakeRuntime(t)

	m := NewMutex(0)

	guard, ok := m.TryLock()
	if !ok {
		t.Fatalf("expected the first TryLock to succeed")
	}
	if _, ok := m.TryLock(); ok {
		t.Fatalf("expected a second TryLock to fail while the mutex is held")
	}

	*guard.Value() = 42
	guard.Unlock()

	guard2, ok := m.TryLock()
	if !ok {
		t.Fatalf("expected TryLock to succeed again after Unlock")
	}
	if *guard2.Value() != 42 {
		t.Fatalf("expected the stored value to survive the lock/unlock cycle, got %d", *guard2.Value())
	}
}

func TestQueueTryPushTryPop(t *testing.T) {
	withFakeRuntime(t)

	q := NewBoundedQueue[int](2)

	if err := q.TryPush(1); err != nil {
		t.Fatalf("unexpected error pushing into a non-full queue: %v", err)
	}
	if err := q.TryPush(2); err != nil {
		t.Fatalf("unexpected error pushing into a non-full queue: %v", err)
	}
	if err := q.TryPush(3); err == nil {
		t.Fatalf("expected an error pushing past capacity")
	}

	v, ok := q.TryPop()
	if !ok || v != 1 {
		t.Fatalf("expected TryPop to return the oldest value 1, got (%d, %v)", v, ok)
	}
	if q.Len() != 1 {
		t.Fatalf("expected queue length 1 after one pop, got %d", q.Len())
	}
}

func TestKernelBufUsesBufSourceWhenWired(t *testing.T) {
	backing := make([]byte, 64)
	for i := range backing {
		backing[i] = 0xAA
	}
	base := uintptr(unsafe.Pointer(&backing[0]))

	prev := BufSource
	BufSource = func(size int) uintptr { return base }
	t.Cleanup(func() { BufSource = prev })

	b := NewKernelBuf(32)
	if b.Len() != 32 {
		t.Fatalf("expected a 32-byte buffer, got %d", b.Len())
	}
	if b.Addr() != base {
		t.Fatalf("expected the buffer to be backed by BufSource's address")
	}
	for i, v := range b.Bytes() {
		if v != 0 {
			t.Fatalf("expected NewKernelBuf to zero BufSource-backed memory, byte %d was %d", i, v)
		}
	}
}

func TestKernelBufAddrMatchesBackingSlice(t *testing.T) {
	b := NewKernelBuf(16)
	if b.Len() != 16 {
		t.Fatalf("expected a 16-byte buffer, got %d", b.Len())
	}
	if b.Addr() == 0 {
		t.Fatalf("expected a non-zero backing address for a non-empty buffer")
	}

	empty := NewKernelBuf(0)
	if empty.Addr() != 0 {
		t.Fatalf("expected a zero address for an empty buffer")
	}
}
