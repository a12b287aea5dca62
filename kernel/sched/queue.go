package sched

// TaskQueue is an intrusive, priority-ordered singly linked list of tasks:
// Push threads a task in so the list stays sorted highest-priority-first,
// with FIFO order preserved among equal priorities. Using the task's own
// next field (rather than a boxed node) avoids any allocation on the
// scheduling hot path, matching the intrusive-list idiom the original
// TaskQueue/LinkedList types use throughout task/scheduler.
type TaskQueue struct {
	head *Task
}

// Push inserts task in priority order.
func (q *TaskQueue) Push(task *Task) {
	task.next = nil

	if q.head == nil || task.Priority > q.head.Priority {
		task.next = q.head
		q.head = task
		return
	}

	cur := q.head
	for cur.next != nil && cur.next.Priority >= task.Priority {
		cur = cur.next
	}
	task.next = cur.next
	cur.next = task
}

// TakeNext removes and returns the highest-priority task, or nil if the
// queue is empty.
func (q *TaskQueue) TakeNext() *Task {
	if q.head == nil {
		return nil
	}
	task := q.head
	q.head = task.next
	task.next = nil
	return task
}

// ProbeNext returns the highest-priority task without removing it, or nil
// if the queue is empty.
func (q *TaskQueue) ProbeNext() *Task {
	return q.head
}

// IsEmpty reports whether the queue holds no tasks.
func (q *TaskQueue) IsEmpty() bool {
	return q.head == nil
}
