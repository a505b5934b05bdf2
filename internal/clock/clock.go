// Package clock abstracts timers so debounce and retry logic can be driven
// deterministically in tests and marshalled onto the UI goroutine in the app.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped it.
	Stop() bool
}

// Scheduler runs callbacks later. Defer runs f on the next frame/turn.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Defer(f func())
}

// Real schedules on the Go runtime timers. Callbacks run on their own
// goroutine; wrap it (see ui.mainThreadScheduler) to deliver on the UI thread.
type Real struct{}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (Real) Defer(f func()) {
	time.AfterFunc(0, f)
}

// Manual is a deterministic Scheduler for tests. Nothing fires until Advance
// or RunDeferred is called, and callbacks run on the caller's goroutine.
type Manual struct {
	mu       sync.Mutex
	now      time.Duration
	seq      int
	timers   []*manualTimer
	deferred []func()
}

type manualTimer struct {
	m       *Manual
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

func (m *Manual) Defer(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deferred = append(m.deferred, f)
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the fake clock forward and fires due timers in order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		next.fired = true
		m.mu.Unlock()
		next.f()
	}
}

func (m *Manual) nextDueLocked(limit time.Duration) *manualTimer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.timers = live
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at != m.timers[j].at {
			return m.timers[i].at < m.timers[j].at
		}
		return m.timers[i].seq < m.timers[j].seq
	})
	if len(m.timers) == 0 || m.timers[0].at > limit {
		return nil
	}
	return m.timers[0]
}

// RunDeferred runs callbacks queued with Defer, including ones queued while
// running, and returns how many ran.
func (m *Manual) RunDeferred() int {
	n := 0
	for {
		m.mu.Lock()
		if len(m.deferred) == 0 {
			m.mu.Unlock()
			return n
		}
		batch := m.deferred
		m.deferred = nil
		m.mu.Unlock()
		for _, f := range batch {
			f()
			n++
		}
	}
}

// Pending reports timers that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
