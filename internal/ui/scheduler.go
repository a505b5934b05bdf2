package ui

import (
	"time"

	"fyne.io/fyne/v2"

	"github.com/AkatukiSora/gamelog-lines/internal/clock"
)

// mainThreadScheduler delivers debounce and retry callbacks on the Fyne
// main thread, where the chart session lives.
type mainThreadScheduler struct {
	base clock.Scheduler
	do   func(func())
}

func newMainThreadScheduler() mainThreadScheduler {
	return mainThreadScheduler{base: clock.Real{}, do: fyne.Do}
}

func (s mainThreadScheduler) AfterFunc(d time.Duration, f func()) clock.Timer {
	return s.base.AfterFunc(d, func() { s.do(f) })
}

// Defer runs f on a later main-thread turn, after the current event handler.
func (s mainThreadScheduler) Defer(f func()) {
	s.base.Defer(func() { s.do(f) })
}
