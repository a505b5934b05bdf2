package termui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AkatukiSora/gamelog-lines/internal/clock"
)

// callMsg carries a scheduler callback into the bubbletea update loop, where
// the chart session lives.
type callMsg func()

// programScheduler hands debounce and retry callbacks to the update loop
// through calls. Callbacks posted after done closes are dropped.
type programScheduler struct {
	base  clock.Scheduler
	calls chan func()
	done  <-chan struct{}
}

func newProgramScheduler(done <-chan struct{}) programScheduler {
	return programScheduler{base: clock.Real{}, calls: make(chan func(), 64), done: done}
}

func (s programScheduler) post(f func()) {
	select {
	case s.calls <- f:
	case <-s.done:
	}
}

func (s programScheduler) AfterFunc(d time.Duration, f func()) clock.Timer {
	return s.base.AfterFunc(d, func() { s.post(f) })
}

func (s programScheduler) Defer(f func()) {
	s.base.Defer(func() { s.post(f) })
}

// wait is the command that delivers the next posted callback.
func (s programScheduler) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case f := <-s.calls:
			return callMsg(f)
		case <-s.done:
			return nil
		}
	}
}
