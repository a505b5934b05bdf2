package ui

import (
	"testing"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/clock"
)

func TestMainThreadSchedulerMarshalsCallbacks(t *testing.T) {
	t.Parallel()

	base := clock.NewManual()
	var hops int
	s := mainThreadScheduler{base: base, do: func(f func()) {
		hops++
		f()
	}}

	var fired []string
	s.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "timer") })
	s.Defer(func() { fired = append(fired, "deferred") })
	stopped := s.AfterFunc(50*time.Millisecond, func() { fired = append(fired, "stopped") })
	stopped.Stop()

	base.RunDeferred()
	base.Advance(100 * time.Millisecond)

	if len(fired) != 2 || fired[0] != "deferred" || fired[1] != "timer" {
		t.Fatalf("fired = %v, want [deferred timer]", fired)
	}
	if hops != 2 {
		t.Fatalf("main-thread hops = %d, want 2", hops)
	}
}
