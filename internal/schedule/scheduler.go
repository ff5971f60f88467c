// Package schedule owns the check-in countdown. A Scheduler fires a callback every
// interval while running and keeps the remaining time across manual and popup pauses.
package schedule

import (
	"context"
	"sync"
	"time"
)

// Mode is the scheduler's externally visible state.
type Mode int

const (
	Running Mode = iota
	PausedManual
	PausedForPopup
)

func (m Mode) String() string {
	switch m {
	case Running:
		return "running"
	case PausedManual:
		return "paused"
	case PausedForPopup:
		return "paused for popup"
	default:
		return "unknown"
	}
}

// Clock abstracts time so tests can drive the countdown deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Observer receives best-effort state notifications. Alive is checked before every
// emission; a dead observer is skipped silently.
type Observer interface {
	Alive() bool
	NextFireUpdated(at time.Time)
	Paused()
}

// State is a read-only copy of the scheduler's state.
type State struct {
	Mode      Mode
	NextFire  time.Time     // zero unless Running
	Remaining time.Duration // zero when Running
	Interval  time.Duration
}

// Option configures a Scheduler in New.
type Option func(*Scheduler)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option { return func(s *Scheduler) { s.clock = c } }

// WithTick sets how often Run checks whether the next fire is due.
func WithTick(d time.Duration) Option { return func(s *Scheduler) { s.tick = d } }

// WithObserver registers the observer at construction; see Observe.
func WithObserver(o Observer) Option { return func(s *Scheduler) { s.observer = o } }

// Scheduler is the check-in countdown. It is safe for concurrent use.
type Scheduler struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	tick     time.Duration
	onFire   func()
	observer Observer

	started   bool
	next      time.Time
	manual    bool
	popup     bool
	remaining time.Duration
}

// New builds a scheduler in the Running state. Nothing fires until Start or Run.
func New(interval time.Duration, onFire func(), opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:    SystemClock,
		interval: interval,
		tick:     time.Second,
		onFire:   onFire,
	}
	for _, o := range opts {
		o(s)
	}
	if s.tick <= 0 || s.tick > interval {
		s.tick = interval
	}
	s.next = s.clock.Now().Add(interval)
	return s
}

// Observe replaces the registered observer.
func (s *Scheduler) Observe(o Observer) {
	s.mu.Lock()
	s.observer = o
	s.mu.Unlock()
}

// Start sets the first deadline and invokes the callback immediately. Later calls are no-ops.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	next := s.advanceLocked()
	s.mu.Unlock()

	s.emitUpdated(next)
	s.fire()
}

// Tick runs one periodic check: while running and due, it advances the deadline and fires.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	if s.manual || s.popup || s.clock.Now().Before(s.next) {
		s.mu.Unlock()
		return
	}
	next := s.advanceLocked()
	s.mu.Unlock()

	s.emitUpdated(next)
	s.fire()
}

// Run starts the scheduler and checks every tick until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	s.Start()
	t := time.NewTicker(s.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Tick()
		}
	}
}

// PauseManual holds the countdown until ResumeManual. It returns false when any
// pause is already active.
func (s *Scheduler) PauseManual() bool {
	s.mu.Lock()
	if s.manual || s.popup {
		s.mu.Unlock()
		return false
	}
	s.manual = true
	s.remaining = s.next.Sub(s.clock.Now())
	s.mu.Unlock()

	s.emitPaused()
	return true
}

// ResumeManual clears a manual pause and sets the deadline to now plus the remaining
// time, without looking at the popup flag. An open popup still gates Tick, and
// ResumeAfterPopup later restarts from the same remaining time.
func (s *Scheduler) ResumeManual() bool {
	s.mu.Lock()
	if !s.manual {
		s.mu.Unlock()
		return false
	}
	s.manual = false
	next := s.clock.Now().Add(s.remaining)
	s.next = next
	if !s.popup {
		s.remaining = 0
	}
	s.mu.Unlock()

	s.emitUpdated(next)
	return true
}

// PauseForPopup freezes the countdown while a popup is open. If a manual pause is
// already holding the remaining time it is kept as is.
func (s *Scheduler) PauseForPopup() bool {
	s.mu.Lock()
	if s.popup {
		s.mu.Unlock()
		return false
	}
	s.popup = true
	if !s.manual {
		s.remaining = s.next.Sub(s.clock.Now())
	}
	s.mu.Unlock()

	s.emitPaused()
	return true
}

// ResumeAfterPopup clears the popup pause. A manual pause takes precedence and keeps
// the scheduler paused.
func (s *Scheduler) ResumeAfterPopup() bool {
	s.mu.Lock()
	if !s.popup {
		s.mu.Unlock()
		return false
	}
	s.popup = false
	if s.manual {
		s.mu.Unlock()
		return true
	}
	next := s.resumeLocked()
	s.mu.Unlock()

	s.emitUpdated(next)
	return true
}

// NextFireTime reports the next deadline; ok is false while paused.
func (s *Scheduler) NextFireTime() (at time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manual || s.popup {
		return time.Time{}, false
	}
	return s.next, true
}

// IsPaused reports whether either pause is active.
func (s *Scheduler) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manual || s.popup
}

// Mode derives the single mode from the two flags; a manual pause wins.
func (s *Scheduler) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modeLocked()
}

// Interval is the configured time between check-ins.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Snapshot returns a copy of the current state for display.
func (s *Scheduler) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{Mode: s.modeLocked(), Interval: s.interval}
	if st.Mode == Running {
		st.NextFire = s.next
	} else {
		st.Remaining = s.remaining
	}
	return st
}

func (s *Scheduler) modeLocked() Mode {
	switch {
	case s.manual:
		return PausedManual
	case s.popup:
		return PausedForPopup
	default:
		return Running
	}
}

func (s *Scheduler) advanceLocked() time.Time {
	s.next = s.clock.Now().Add(s.interval)
	return s.next
}

func (s *Scheduler) resumeLocked() time.Time {
	s.next = s.clock.Now().Add(s.remaining)
	s.remaining = 0
	return s.next
}

func (s *Scheduler) currentObserver() Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observer == nil || !s.observer.Alive() {
		return nil
	}
	return s.observer
}

func (s *Scheduler) emitUpdated(at time.Time) {
	if o := s.currentObserver(); o != nil {
		o.NextFireUpdated(at)
	}
}

func (s *Scheduler) emitPaused() {
	if o := s.currentObserver(); o != nil {
		o.Paused()
	}
}

func (s *Scheduler) fire() {
	if s.onFire != nil {
		s.onFire()
	}
}
