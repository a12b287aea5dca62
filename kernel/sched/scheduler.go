package sched

import "petos/kernel"

// tickSize is the number of ticks OnTick advances the current task's
// elapsed counter by on each call, mirroring the ticks_size! macro the
// original scheduler drives its accounting with.
const tickSize = 1

// Scheduler holds every task set a single CPU's scheduling decisions draw
// from: the queue about to run (running), the queue that will replace it
// once running drains (delayed), tasks asleep until a tick deadline,
// tasks blocked on an object handle, and the task presently executing.
type Scheduler struct {
	running  TaskQueue
	delayed  TaskQueue
	sleeping []*Task
	blocked  map[uintptr]*Task
	idle     TaskQueue

	current *Task
	ticks   uint64
}

// NewScheduler constructs a scheduler whose first current task is idleTask,
// matching the teacher's requirement that a scheduler never starts without
// some task already running (there is always at least one idle task).
func NewScheduler(idleTask *Task) *Scheduler {
	idleTask.Status = StatusRunning
	return &Scheduler{
		blocked: make(map[uintptr]*Task),
		current: idleTask,
	}
}

// PushTask admits a new or previously-descheduled task. Idle tasks join a
// dedicated FIFO that OnTick only draws from when every other queue is
// empty; every other task is pushed into delayed, where it waits for the
// next reschedule pass.
func (s *Scheduler) PushTask(task *Task) {
	task.Metrics.Elapsed = 0
	task.Metrics.BaseDuration = task.Priority.staticDuration()
	task.Status = StatusRunning

	if task.Priority == PriorityIdle {
		s.idle.Push(task)
		return
	}
	s.delayed.Push(task)
}

// BlockOn suspends the current task against handle, installing the next
// runnable task (rescheduling if necessary) as current.
func (s *Scheduler) BlockOn(handle uintptr) {
	next := s.nextTask()

	blocked := s.current
	blocked.Status = StatusBlocked
	blocked.blockedOn = handle
	s.blocked[handle] = blocked

	s.current = next
}

// Notify wakes the task blocked on handle, if any. A task whose priority
// exceeds the current task's displaces it immediately; otherwise the
// woken task simply rejoins its priority queue.
func (s *Scheduler) Notify(handle uintptr) {
	task, ok := s.blocked[handle]
	if !ok {
		return
	}
	delete(s.blocked, handle)
	task.blockedOn = 0

	if task.Priority > s.current.Priority {
		displaced := s.current
		s.current = task
		task.Status = StatusRunning
		s.running.Push(displaced)
		return
	}

	s.PushTask(task)
}

// Sleep suspends the current task until tick deadline s.ticks+periodTicks.
func (s *Scheduler) Sleep(periodTicks uint64) {
	next := s.nextTask()

	sleeping := s.current
	sleeping.Status = StatusSleeping
	sleeping.wakeAtTick = s.ticks + periodTicks
	s.sleeping = append(s.sleeping, sleeping)

	s.current = next
}

// OnTick advances the clock by one tick and runs the scheduler's three
// phases: wake any sleeper whose deadline has passed, consider preempting
// the current task with a higher-priority runnable one, and rotate the
// current task out once its time slice is spent.
func (s *Scheduler) OnTick() {
	s.ticks += tickSize
	s.wakeSleepers()

	s.current.Metrics.Elapsed += tickSize

	if candidate := s.running.ProbeNext(); candidate != nil && candidate.Priority > s.current.Priority {
		task := s.running.TakeNext()
		displaced := s.current
		s.current = task
		task.Status = StatusRunning

		switch {
		case displaced.Priority == PriorityIdle:
			displaced.Metrics.Elapsed = 0
			s.idle.Push(displaced)
		case displaced.Metrics.Elapsed > displaced.Metrics.BaseDuration:
			s.delayed.Push(displaced)
		default:
			s.running.Push(displaced)
		}
	}

	if s.current.Metrics.Elapsed > s.current.Metrics.BaseDuration {
		s.current.Metrics.Elapsed = 0

		if task := s.running.TakeNext(); task != nil {
			displaced := s.current
			s.current = task
			task.Status = StatusRunning
			s.PushTask(displaced)
		} else if s.running.IsEmpty() && !s.delayed.IsEmpty() {
			task := s.reschedule()
			displaced := s.current
			s.current = task
			task.Status = StatusRunning
			s.PushTask(displaced)
		}
	}
}

func (s *Scheduler) wakeSleepers() {
	remaining := s.sleeping[:0]
	for _, task := range s.sleeping {
		if task.wakeAtTick <= s.ticks {
			task.Metrics.Elapsed = 0
			if task.Priority == PriorityIdle {
				s.idle.Push(task)
			} else {
				s.running.Push(task)
			}
			continue
		}
		remaining = append(remaining, task)
	}
	s.sleeping = remaining
}

// Terminate kills the current task, installs the next runnable task as
// current, and returns the killed task so its caller can release any
// resources (handles, mappings) it owned.
func (s *Scheduler) Terminate() *Task {
	next := s.nextTask()

	killed := s.current
	killed.Status = StatusKilled

	s.current = next
	return killed
}

// CurrentTask returns the task presently executing.
func (s *Scheduler) CurrentTask() *Task {
	return s.current
}

// nextTask draws the next task to run: from running if non-empty,
// otherwise via reschedule.
func (s *Scheduler) nextTask() *Task {
	if task := s.running.TakeNext(); task != nil {
		return task
	}
	return s.reschedule()
}

// reschedule swaps delayed into running and draws from it, falling back to
// an idle task if delayed was also empty. Panics if no idle task exists,
// since a scheduler is never constructed without one.
func (s *Scheduler) reschedule() *Task {
	s.running, s.delayed = s.delayed, s.running

	if task := s.running.TakeNext(); task != nil {
		return task
	}

	task := s.idle.TakeNext()
	if task == nil {
		kernel.Panic("sched: no idle task available")
		return nil
	}
	return task
}
