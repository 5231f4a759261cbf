// Package schedule owns the single proactive-refresh timer of a session.
//
// At most one timer is pending. Arm replaces any pending timer; a timer that
// fires after being replaced or cancelled does nothing.
package schedule

import (
	"sync"
	"time"
)

// Timer is the handle returned by an [AfterFunc].
type Timer interface {
	Stop() bool
}

// AfterFunc arms f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc wraps time.AfterFunc.
func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Delay returns max(expiresAt-now-lead, floor).
func Delay(expiresAt, now time.Time, lead, floor time.Duration) time.Duration {
	d := expiresAt.Sub(now) - lead
	if d < floor {
		return floor
	}
	return d
}

// Scheduler holds the current timer handle.
type Scheduler struct {
	mu        sync.Mutex
	afterFunc AfterFunc
	timer     Timer
	gen       uint64
	delay     time.Duration
}

// New returns a scheduler using after, or time.AfterFunc when nil.
func New(after AfterFunc) *Scheduler {
	if after == nil {
		after = RealAfterFunc
	}
	return &Scheduler{afterFunc: after}
}

// Arm cancels any pending timer and arms fn to run after d.
func (s *Scheduler) Arm(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	gen := s.gen
	s.delay = d
	s.timer = s.afterFunc(d, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

// Cancel stops the pending timer, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
}

// Pending reports whether a timer is armed and has not fired.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// NextDelay returns the delay of the pending timer.
func (s *Scheduler) NextDelay() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay, s.timer != nil
}

func (s *Scheduler) stopLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
