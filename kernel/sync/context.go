package sync

import "sync/atomic"

// irqDepth tracks IRQ-handler nesting. irq.Chain.Dispatch increments it
// before running callbacks and decrements it on return; nested interrupts
// are never permitted (the dispatcher always runs with interrupts disabled)
// so the depth is either 0 or 1, but a counter keeps EnterIRQ/LeaveIRQ
// symmetric and easy to assert against.
var irqDepth int32

// EnterIRQ marks the current CPU as executing inside an interrupt handler.
func EnterIRQ() { atomic.AddInt32(&irqDepth, 1) }

// LeaveIRQ clears the IRQ-context marker set by EnterIRQ.
func LeaveIRQ() { atomic.AddInt32(&irqDepth, -1) }

// InIRQContext reports whether the caller is running inside an interrupt
// handler.
func InIRQContext() bool { return atomic.LoadInt32(&irqDepth) > 0 }

// Blocker is the minimal scheduler surface a ContextLock needs: a way to
// suspend the current task until notified. sched.Scheduler implements it.
type Blocker interface {
	BlockOn(handle uintptr)
	Notify(handle uintptr)
}

// ContextLock is shared data touched from both IRQ and kernel (task)
// context. From IRQ context it behaves like a plain Spinlock (blocking is
// never safe there); from kernel context it suspends the calling task via
// the scheduler instead of burning CPU, which is what prevents the deadlock
// spec.md §5 calls out: an IRQ handler must never wait on a lock a blocked
// task is holding.
type ContextLock struct {
	spin    Spinlock
	blocker Blocker
	handle  uintptr
}

// NewContextLock creates a lock whose kernel-context waiters suspend via
// blocker, identified by handle (an object.Event's handle, typically).
func NewContextLock(blocker Blocker, handle uintptr) *ContextLock {
	return &ContextLock{blocker: blocker, handle: handle}
}

// Acquire blocks until the lock is held, choosing the spin path in IRQ
// context and the scheduler-blocking path otherwise.
func (l *ContextLock) Acquire() {
	if InIRQContext() {
		l.spin.Acquire()
		return
	}

	for !l.spin.TryToAcquire() {
		l.blocker.BlockOn(l.handle)
	}
}

// Release relinquishes the lock and, in kernel context, wakes one waiter
// blocked on the associated handle.
func (l *ContextLock) Release() {
	l.spin.Release()
	if !InIRQContext() {
		l.blocker.Notify(l.handle)
	}
}
