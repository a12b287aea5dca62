package object

import (
	"petos/kernel"
	"petos/kernel/sync"
)

type queueNode[T any] struct {
	value T
	next  *queueNode[T]
}

// Queue is a FIFO of kernel objects, optionally capacity-bounded. Grounded
// on original_source/kernel/src/user/queue/mod.rs's push/blocking_pop
// shape, with try_push (left as todo!() there) filled in: a bounded queue
// rejects a push over capacity with ErrBusyResource instead of blocking
// forever, which is what module runtimes (kernel/module) need when
// deciding whether to apply backpressure or queue more work.
type Queue[T any] struct {
	header   Object
	mu       sync.Spinlock
	notEmpty *Event

	head, tail *queueNode[T]
	length     int
	capacity   int // 0 means unbounded
}

// NewUnboundedQueue returns a queue with no capacity limit.
func NewUnboundedQueue[T any]() *Queue[T] {
	return &Queue[T]{header: NewObject(KindQueue), notEmpty: NewEvent()}
}

// NewBoundedQueue returns a queue that rejects pushes once length reaches
// capacity.
func NewBoundedQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{header: NewObject(KindQueue), notEmpty: NewEvent(), capacity: capacity}
}

// Obj implements Container.
func (q *Queue[T]) Obj() *Object { return &q.header }

// Push enqueues v, blocking while a bounded queue is at capacity.
func (q *Queue[T]) Push(v T) {
	for {
		if err := q.TryPush(v); err == nil {
			return
		}
		Runtime.BlockOn(q.header.Handle())
	}
}

// TryPush enqueues v without blocking, returning ErrBusyResource if a
// bounded queue is already full.
func (q *Queue[T]) TryPush(v T) *kernel.Error {
	q.mu.Acquire()
	defer q.mu.Release()

	if q.capacity != 0 && q.length >= q.capacity {
		return &kernel.Error{Module: "object", Message: "queue at capacity", Kind: kernel.ErrBusyResource}
	}

	node := &queueNode[T]{value: v}
	if q.tail != nil {
		q.tail.next = node
	} else {
		q.head = node
	}
	q.tail = node
	q.length++

	q.notEmpty.Set()
	return nil
}

// TryPop dequeues the oldest item without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Acquire()
	defer q.mu.Release()

	if q.head == nil {
		var zero T
		return zero, false
	}

	node := q.head
	q.head = node.next
	if q.head == nil {
		q.tail = nil
		q.notEmpty.Clear()
	}
	q.length--

	Runtime.Notify(q.header.Handle())
	return node.value, true
}

// BlockingPop dequeues the oldest item, suspending the caller until one is
// available.
func (q *Queue[T]) BlockingPop() T {
	for {
		if v, ok := q.TryPop(); ok {
			return v
		}
		q.notEmpty.Wait()
	}
}

// Len reports the number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Acquire()
	defer q.mu.Release()
	return q.length
}
