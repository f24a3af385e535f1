package worker

import (
	"sync"
	"time"
)

// Scheduler defers a task by a delay. The ledger uses it to model the
// simulated consensus latency between a mutation and the block seal;
// tests substitute a manual implementation and drain it synchronously.
type Scheduler interface {
	Schedule(delay time.Duration, task func())
}

// TimerScheduler runs tasks on real timers.
type TimerScheduler struct{}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

func (s *TimerScheduler) Schedule(delay time.Duration, task func()) {
	time.AfterFunc(delay, task)
}

// ManualScheduler queues tasks until Drain is called. Tasks run in the
// order they were scheduled.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Schedule(delay time.Duration, task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

// Pending reports how many tasks are queued.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Drain runs every queued task, including tasks scheduled while
// draining.
func (s *ManualScheduler) Drain() {
	for {
		s.mu.Lock()
		if len(s.tasks) == 0 {
			s.mu.Unlock()
			return
		}
		task := s.tasks[0]
		s.tasks = s.tasks[1:]
		s.mu.Unlock()

		task()
	}
}
