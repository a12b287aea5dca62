// Package sync provides the synchronization primitives used below the
// scheduler: a pure spinlock for IRQ-context-safe data, and a context-aware
// lock that picks between spinning and blocking depending on whether the
// caller is inside an interrupt handler. Grounded on
// src/gopheros/kernel/sync/spinlock.go.
package sync

import "sync/atomic"

// Spinlock is a lock where each caller busy-waits until it becomes
// available. Safe to use from IRQ context; re-acquiring a lock already held
// by the current task deadlocks, by design (there is no re-entrant variant).
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired.
func (l *Spinlock) Acquire() {
	for !l.TryToAcquire() {
	}
}

// TryToAcquire attempts to acquire the lock without blocking.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.SwapUint32(&l.state, 1) == 0
}

// Release relinquishes a held lock. Calling Release on a free lock has no
// effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}
