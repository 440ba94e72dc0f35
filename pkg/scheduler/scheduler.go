// Package scheduler runs keyed one-shot tasks after a delay. Scheduling a key
// that is already pending replaces the earlier task.
package scheduler

import (
	"sync"
	"time"
)

type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func New() *Scheduler {
	return &Scheduler{timers: make(map[string]*time.Timer)}
}

// Schedule runs fn once after delay. A non-positive delay runs fn as soon as
// possible on its own goroutine.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// A replacement may have been scheduled after this timer fired.
		if s.timers[key] != timer {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
	s.timers[key] = timer
}

// Cancel stops a pending task. Returns false when nothing was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, key)
	return true
}

func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending task and rejects new ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
