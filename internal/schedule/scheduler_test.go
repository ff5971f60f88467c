package schedule

import (
	"bytes"
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu      sync.Mutex
	dead    bool
	updates []time.Time
	pauses  int
}

func (r *recorder) Alive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.dead
}

func (r *recorder) NextFireUpdated(at time.Time) {
	r.mu.Lock()
	r.updates = append(r.updates, at)
	r.mu.Unlock()
}

func (r *recorder) Paused() {
	r.mu.Lock()
	r.pauses++
	r.mu.Unlock()
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates), r.pauses
}

type harness struct {
	clock *fakeClock
	obs   *recorder
	fires int
	s     *Scheduler
}

func newHarness(t *testing.T, interval time.Duration) *harness {
	t.Helper()
	h := &harness{clock: newFakeClock(), obs: &recorder{}}
	h.s = New(interval, func() { h.fires++ }, WithClock(h.clock), WithObserver(h.obs))
	return h
}

func TestStartFiresOnceImmediately(t *testing.T) {
	h := newHarness(t, 15*time.Minute)
	h.s.Start()
	if h.fires != 1 {
		t.Fatalf("fires after Start = %d, want 1", h.fires)
	}
	h.s.Start()
	h.s.Tick()
	if h.fires != 1 {
		t.Fatalf("fires before interval elapsed = %d, want 1", h.fires)
	}
	at, ok := h.s.NextFireTime()
	if !ok || !at.Equal(h.clock.Now().Add(15*time.Minute)) {
		t.Fatalf("NextFireTime = %v, %v", at, ok)
	}
}

func TestTickFiresWhenDue(t *testing.T) {
	h := newHarness(t, 15*time.Minute)
	h.s.Start()

	h.clock.Advance(14 * time.Minute)
	h.s.Tick()
	if h.fires != 1 {
		t.Fatalf("fired early: %d", h.fires)
	}

	h.clock.Advance(time.Minute)
	h.s.Tick()
	if h.fires != 2 {
		t.Fatalf("fires = %d, want 2", h.fires)
	}
	at, _ := h.s.NextFireTime()
	if want := h.clock.Now().Add(15 * time.Minute); !at.Equal(want) {
		t.Fatalf("next = %v, want %v", at, want)
	}
}

func TestTickSuppressedWhilePaused(t *testing.T) {
	h := newHarness(t, 15*time.Minute)
	h.s.Start()
	h.s.PauseManual()
	h.clock.Advance(time.Hour)
	h.s.Tick()
	if h.fires != 1 {
		t.Fatalf("fired while paused: %d", h.fires)
	}
	h.s.ResumeManual()
	h.s.PauseForPopup()
	h.clock.Advance(time.Hour)
	h.s.Tick()
	if h.fires != 1 {
		t.Fatalf("fired while popup paused: %d", h.fires)
	}
}

func TestPopupScenario(t *testing.T) {
	h := newHarness(t, 15*time.Minute)
	t0 := h.clock.Now()
	h.s.Start()

	h.clock.Advance(5 * time.Minute)
	if !h.s.PauseForPopup() {
		t.Fatalf("PauseForPopup returned false")
	}
	if got := h.s.Snapshot().Remaining; got != 10*time.Minute {
		t.Fatalf("remaining = %v, want 10m", got)
	}
	if _, ok := h.s.NextFireTime(); ok {
		t.Fatalf("NextFireTime should be unknown while popup paused")
	}

	h.clock.Advance(2 * time.Minute)
	if !h.s.ResumeAfterPopup() {
		t.Fatalf("ResumeAfterPopup returned false")
	}
	at, ok := h.s.NextFireTime()
	if !ok || !at.Equal(t0.Add(17*time.Minute)) {
		t.Fatalf("next = %v (%v), want t0+17m", at, ok)
	}
}

func TestManualPausePreservesRemaining(t *testing.T) {
	for _, d := range []time.Duration{0, time.Second, 3 * time.Minute, 26 * time.Hour} {
		h := newHarness(t, 15*time.Minute)
		h.s.Start()
		h.clock.Advance(4 * time.Minute)
		h.s.PauseManual()

		h.clock.Advance(d)
		resumeAt := h.clock.Now()
		if !h.s.ResumeManual() {
			t.Fatalf("pause %v: ResumeManual returned false", d)
		}
		at, _ := h.s.NextFireTime()
		if want := resumeAt.Add(11 * time.Minute); !at.Equal(want) {
			t.Fatalf("pause %v: next = %v, want %v", d, at, want)
		}
		if h.s.Snapshot().Remaining != 0 {
			t.Fatalf("pause %v: remaining not cleared", d)
		}
	}
}

func TestTransitionsDoNotLog(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	h := newHarness(t, 15*time.Minute)
	h.s.Start()
	h.s.PauseManual()
	h.s.PauseForPopup()
	h.s.ResumeManual()
	h.s.ResumeAfterPopup()
	if buf.Len() != 0 {
		t.Fatalf("scheduler wrote to the log: %q", buf.String())
	}
}

func TestPauseManualTwiceIsNoop(t *testing.T) {
	h := newHarness(t, 15*time.Minute)
	h.s.Start()
	h.clock.Advance(time.Minute)
	if !h.s.PauseManual() {
		t.Fatalf("first PauseManual returned false")
	}
	before := h.s.Snapshot()
	_, pauses := h.obs.counts()

	h.clock.Advance(time.Minute)
	if h.s.PauseManual() {
		t.Fatalf("second PauseManual returned true")
	}
	if after := h.s.Snapshot(); after != before {
		t.Fatalf("state changed: %+v -> %+v", before, after)
	}
	if _, p := h.obs.counts(); p != pauses {
		t.Fatalf("second pause emitted a notification")
	}
}

func TestNoopTransitions(t *testing.T) {
	h := newHarness(t, 15*time.Minute)
	h.s.Start()
	if h.s.ResumeManual() {
		t.Fatalf("ResumeManual while running returned true")
	}
	if h.s.ResumeAfterPopup() {
		t.Fatalf("ResumeAfterPopup while running returned true")
	}
	h.s.PauseForPopup()
	if h.s.PauseForPopup() {
		t.Fatalf("second PauseForPopup returned true")
	}
	if h.s.PauseManual() {
		t.Fatalf("PauseManual while popup paused returned true")
	}
	if h.s.Mode() != PausedForPopup {
		t.Fatalf("mode = %v", h.s.Mode())
	}
}

func TestManualPauseTakesPrecedenceOverPopupResume(t *testing.T) {
	h := newHarness(t, 15*time.Minute)
	h.s.Start()
	h.clock.Advance(5 * time.Minute)
	h.s.PauseManual()
	h.clock.Advance(time.Minute)
	if !h.s.PauseForPopup() {
		t.Fatalf("PauseForPopup while manually paused returned false")
	}
	if got := h.s.Snapshot().Remaining; got != 10*time.Minute {
		t.Fatalf("remaining = %v, want the manual pause's 10m", got)
	}

	if !h.s.ResumeAfterPopup() {
		t.Fatalf("ResumeAfterPopup returned false")
	}
	if !h.s.IsPaused() || h.s.Mode() != PausedManual {
		t.Fatalf("mode = %v, want paused", h.s.Mode())
	}
	if _, ok := h.s.NextFireTime(); ok {
		t.Fatalf("NextFireTime known while manually paused")
	}

	h.clock.Advance(time.Minute)
	resumeAt := h.clock.Now()
	if !h.s.ResumeManual() {
		t.Fatalf("ResumeManual returned false")
	}
	at, ok := h.s.NextFireTime()
	if !ok || !at.Equal(resumeAt.Add(10*time.Minute)) {
		t.Fatalf("next = %v, want resume+10m", at)
	}
}

func TestResumeManualWithPopupOpenRestartsDeadline(t *testing.T) {
	h := newHarness(t, 15*time.Minute)
	h.s.Start()
	h.clock.Advance(5 * time.Minute)
	h.s.PauseManual()
	h.clock.Advance(20 * time.Minute)
	h.s.PauseForPopup()
	updatesBefore, _ := h.obs.counts()

	resumeAt := h.clock.Now()
	if !h.s.ResumeManual() {
		t.Fatalf("ResumeManual returned false")
	}
	if h.s.Mode() != PausedForPopup {
		t.Fatalf("mode = %v, want popup pause", h.s.Mode())
	}
	updates, _ := h.obs.counts()
	if updates != updatesBefore+1 {
		t.Fatalf("updates = %d, want one more than %d", updates, updatesBefore)
	}
	h.obs.mu.Lock()
	last := h.obs.updates[len(h.obs.updates)-1]
	h.obs.mu.Unlock()
	if !last.Equal(resumeAt.Add(10 * time.Minute)) {
		t.Fatalf("updated to %v, want resume+10m", last)
	}

	// the open popup still holds the countdown
	h.clock.Advance(30 * time.Minute)
	h.s.Tick()
	if h.fires != 1 {
		t.Fatalf("fired while the popup was open")
	}

	h.s.ResumeAfterPopup()
	at, ok := h.s.NextFireTime()
	if !ok || !at.Equal(h.clock.Now().Add(10*time.Minute)) {
		t.Fatalf("next = %v, want now+10m", at)
	}
}

// Running holds exactly when neither pause flag is set.
func TestModeExclusivityOverSequences(t *testing.T) {
	ops := []func(*Scheduler) bool{
		(*Scheduler).PauseManual,
		(*Scheduler).ResumeManual,
		(*Scheduler).PauseForPopup,
		(*Scheduler).ResumeAfterPopup,
	}
	// every sequence of length 5 over the four operations
	total := 1
	for i := 0; i < 5; i++ {
		total *= len(ops)
	}
	for n := 0; n < total; n++ {
		h := newHarness(t, 15*time.Minute)
		h.s.Start()
		code := n
		for i := 0; i < 5; i++ {
			ops[code%len(ops)](h.s)
			code /= len(ops)
			h.clock.Advance(time.Minute)

			h.s.mu.Lock()
			manual, popup := h.s.manual, h.s.popup
			h.s.mu.Unlock()
			st := h.s.Snapshot()
			running := !manual && !popup
			if (st.Mode == Running) != running {
				t.Fatalf("sequence %d step %d: mode %v with manual=%v popup=%v", n, i, st.Mode, manual, popup)
			}
			if _, ok := h.s.NextFireTime(); ok != running {
				t.Fatalf("sequence %d step %d: NextFireTime ok=%v running=%v", n, i, ok, running)
			}
		}
	}
}

func TestNotifications(t *testing.T) {
	h := newHarness(t, 15*time.Minute)
	h.s.Start()
	if u, p := h.obs.counts(); u != 1 || p != 0 {
		t.Fatalf("after start updates=%d pauses=%d", u, p)
	}
	h.s.PauseForPopup()
	h.s.ResumeAfterPopup()
	h.s.PauseManual()
	h.s.ResumeManual()
	if u, p := h.obs.counts(); u != 3 || p != 2 {
		t.Fatalf("updates=%d pauses=%d, want 3 and 2", u, p)
	}
}

func TestDeadObserverIsSkipped(t *testing.T) {
	h := newHarness(t, 15*time.Minute)
	h.obs.dead = true
	h.s.Start()
	h.s.PauseManual()
	h.s.ResumeManual()
	if u, p := h.obs.counts(); u != 0 || p != 0 {
		t.Fatalf("dead observer received updates=%d pauses=%d", u, p)
	}
	if h.fires != 1 {
		t.Fatalf("fires = %d", h.fires)
	}

	fresh := &recorder{}
	h.s.Observe(fresh)
	h.s.PauseManual()
	if u, p := fresh.counts(); u != 0 || p != 1 {
		t.Fatalf("replacement observer updates=%d pauses=%d", u, p)
	}
}

func TestCallbackMayCallBack(t *testing.T) {
	clock := newFakeClock()
	var s *Scheduler
	s = New(15*time.Minute, func() { s.PauseForPopup() }, WithClock(clock))
	s.Start()
	if s.Mode() != PausedForPopup {
		t.Fatalf("mode = %v, want popup pause from callback", s.Mode())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	clock := newFakeClock()
	fired := make(chan struct{}, 8)
	s := New(time.Hour, func() { fired <- struct{}{} }, WithClock(clock), WithTick(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not fire on start")
	}
	time.Sleep(20 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("fired again before the deadline")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
