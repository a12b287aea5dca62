package object

import "sync/atomic"

// Event is a one-bit latch kernel tasks can wait on and signal, the
// building block queues and mutexes are both implemented on top of.
// Grounded on the notify/block_on pairing used throughout
// original_source/kernel/src/object and task/mutex.rs.
type Event struct {
	header Object
	signal uint32
}

// NewEvent returns an unsignaled Event.
func NewEvent() *Event {
	return &Event{header: NewObject(KindEvent)}
}

// Obj implements Container.
func (e *Event) Obj() *Object { return &e.header }

// Set signals the event and wakes every task blocked on it.
func (e *Event) Set() {
	atomic.StoreUint32(&e.signal, 1)
	Runtime.Notify(e.header.Handle())
}

// Clear resets the event to unsignaled, for events reused across multiple
// wait cycles (e.g. a queue's "non-empty" event, cleared once drained).
func (e *Event) Clear() {
	atomic.StoreUint32(&e.signal, 0)
}

// IsSet reports whether the event is currently signaled.
func (e *Event) IsSet() bool {
	return atomic.LoadUint32(&e.signal) != 0
}

// Wait blocks the calling task until the event is signaled.
func (e *Event) Wait() {
	for !e.IsSet() {
		Runtime.BlockOn(e.header.Handle())
	}
}
