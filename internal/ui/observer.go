package ui

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// programObserver forwards scheduler notifications into a running tea.Program.
// Sends happen on their own goroutine: the scheduler may emit from inside Update,
// and a blocking Send there would wait on the loop that is calling it.
type programObserver struct {
	mu   sync.Mutex
	p    *tea.Program
	done atomic.Bool
}

func (o *programObserver) attach(p *tea.Program) {
	o.mu.Lock()
	o.p = p
	o.mu.Unlock()
}

// detach marks the program gone; later emissions are skipped.
func (o *programObserver) detach() {
	o.done.Store(true)
}

func (o *programObserver) Alive() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.p != nil && !o.done.Load()
}

func (o *programObserver) NextFireUpdated(time.Time) { o.send(scheduleChangedMsg{}) }

func (o *programObserver) Paused() { o.send(scheduleChangedMsg{}) }

func (o *programObserver) send(msg tea.Msg) {
	if !o.Alive() {
		return
	}
	o.mu.Lock()
	p := o.p
	o.mu.Unlock()
	go p.Send(msg)
}
