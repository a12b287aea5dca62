// Package sched implements the preemptive priority scheduler described in
// SPEC_FULL.md §4.6. Grounded directly on
// original_source/kernel/src/task/scheduler/mod.rs: the three priority
// bands (idle/user/module/kernel), the delayed/running/sleeping/blocked
// task sets, and the three-phase OnTick algorithm (wake sleepers, consider
// preemption by a higher-priority runnable task, rotate the current task
// once its slice is spent) are a direct translation of TaskScheduler.
package sched

// Priority orders tasks for scheduling purposes. Tasks compare by raw
// integer value; higher always preempts lower.
type Priority int32

// Priority bands, lowest to highest. A band leaves room for per-task
// priority within it (e.g. PriorityUser(3) outranks PriorityUser(1) but
// never PriorityModule(0)).
const (
	bandIdle   Priority = 0
	bandUser   Priority = 1_000
	bandModule Priority = 2_000
	bandKernel Priority = 3_000
)

// PriorityIdle is the sole priority idle tasks run at.
const PriorityIdle = bandIdle

// PriorityUser returns the priority of a user task at level n (0 is
// lowest).
func PriorityUser(n int32) Priority { return bandUser + Priority(n) }

// PriorityModule returns the priority of a module kernel task at level n.
func PriorityModule(n int32) Priority { return bandModule + Priority(n) }

// PriorityKernel is the priority reserved for core kernel tasks, which
// always preempt module and user tasks.
const PriorityKernel = bandKernel

// staticDuration returns the tick allotment a task of this priority
// receives before OnTick considers rotating it out, in the absence of
// preemption. Kernel and module tasks get shorter, more frequent slices so
// driver work stays responsive; user tasks get a longer slice to amortize
// context-switch overhead.
func (p Priority) staticDuration() uint64 {
	switch {
	case p >= bandKernel:
		return 2
	case p >= bandModule:
		return 4
	case p >= bandUser:
		return 20
	default:
		return 1
	}
}

// Status is a task's current scheduling state.
type Status uint8

const (
	StatusEmbryo Status = iota
	StatusRunning
	StatusSleeping
	StatusBlocked
	StatusKilled
)

func (s Status) String() string {
	switch s {
	case StatusEmbryo:
		return "embryo"
	case StatusRunning:
		return "running"
	case StatusSleeping:
		return "sleeping"
	case StatusBlocked:
		return "blocked"
	case StatusKilled:
		return "killed"
	default:
		return "unknown"
	}
}

// Metrics tracks a task's consumption of its current time slice.
type Metrics struct {
	Elapsed      uint64
	BaseDuration uint64
}

// Task is one schedulable unit of execution: a kernel task backing a
// module, or a user task backing a process. The architecture-specific
// register/stack context a real context switch needs is out of scope per
// SPEC_FULL.md §1; Context is an opaque slot a caller-supplied context
// switch routine may use however it needs to.
type Task struct {
	ID       uint64
	Priority Priority
	Status   Status
	Metrics  Metrics
	Context  interface{}

	// wakeAtTick is valid only while Status == StatusSleeping.
	wakeAtTick uint64

	// blockedOn is valid only while Status == StatusBlocked: the handle
	// of the object (event, queue, mutex) the task is waiting on.
	blockedOn uintptr

	next *Task
}

// NewTask constructs an embryonic task at the given priority. The
// scheduler assigns its initial metrics when it is first pushed.
func NewTask(id uint64, priority Priority) *Task {
	return &Task{ID: id, Priority: priority, Status: StatusEmbryo}
}
