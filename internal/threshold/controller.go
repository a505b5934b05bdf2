// Package threshold owns the chart threshold in its two forms: the
// committed value every declarative consumer reads, and the transient value
// produced by in-flight pointer or keyboard input.
package threshold

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/clock"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

// DefaultDebounce is the quiet period before a transient value commits.
const DefaultDebounce = 300 * time.Millisecond

// Mutator receives every accepted value synchronously, before the input
// handler returns.
type Mutator interface {
	Apply(value float64)
}

// MutatorFunc adapts a function to Mutator.
type MutatorFunc func(float64)

func (f MutatorFunc) Apply(v float64) { f(v) }

// State is a snapshot of the threshold. Transient is nil when no edit is in
// flight.
type State struct {
	Committed float64
	Transient *float64
}

// Effective is the value the user currently sees.
func (s State) Effective() float64 {
	if s.Transient != nil {
		return *s.Transient
	}
	return s.Committed
}

type Config struct {
	Scheduler clock.Scheduler
	Debounce  time.Duration
	Mutator   Mutator
	// OnCommit runs after committed changes, outside the controller lock.
	OnCommit func(State)
}

// Controller is single-owner: exactly one debounce timer exists at a time and
// every new input replaces it, so the last input always wins.
type Controller struct {
	mu        sync.Mutex
	sched     clock.Scheduler
	debounce  time.Duration
	mutator   Mutator
	onCommit  func(State)
	metric    series.MetricID
	signed    bool
	committed float64
	transient *float64
	manual    map[series.MetricID]bool
	timer     clock.Timer
	gen       uint64
	closed    bool
}

func New(cfg Config) *Controller {
	sched := cfg.Scheduler
	if sched == nil {
		sched = clock.Real{}
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Controller{
		sched:    sched,
		debounce: debounce,
		mutator:  cfg.Mutator,
		onCommit: cfg.OnCommit,
		manual:   make(map[series.MetricID]bool),
	}
}

// SetMutator swaps the mutation target, e.g. when the chart remounts.
func (c *Controller) SetMutator(m Mutator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mutator = m
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	s := State{Committed: c.committed}
	if c.transient != nil {
		v := *c.transient
		s.Transient = &v
	}
	return s
}

func (c *Controller) Metric() series.MetricID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metric
}

// IsManual reports whether the user has overridden the threshold for id
// since the last subject or metric change.
func (c *Controller) IsManual(id series.MetricID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manual[id]
}

// SelectMetric switches the active metric and seeds committed with initial.
// Pending input is dropped and the manual-edit flags are cleared.
func (c *Controller) SelectMetric(id series.MetricID, initial float64) {
	if !finite(initial) {
		initial = 0
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.cancelLocked()
	c.metric = id
	c.signed = series.ClassOf(id).Signed()
	c.manual = make(map[series.MetricID]bool)
	c.committed = initial
	c.transient = nil
	state := c.stateLocked()
	onCommit := c.onCommit
	c.mu.Unlock()

	if onCommit != nil {
		onCommit(state)
	}
}

// ResetSubject clears all manual-edit flags and any in-flight edit.
func (c *Controller) ResetSubject() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.manual = make(map[series.MetricID]bool)
	c.transient = nil
}

// OnTransientInput handles one pointer or keystroke update. Invalid values
// are ignored and leave the state untouched.
func (c *Controller) OnTransientInput(v float64) bool {
	c.mu.Lock()
	if c.closed || !c.acceptLocked(v) {
		c.mu.Unlock()
		return false
	}
	c.cancelLocked()
	val := v
	c.transient = &val
	c.manual[c.metric] = true
	gen := c.gen
	c.timer = c.sched.AfterFunc(c.debounce, func() { c.fire(gen) })
	mutator := c.mutator
	c.mu.Unlock()

	if mutator != nil {
		mutator.Apply(v)
	}
	return true
}

// OnTransientText parses free-form entry text. Unparseable text is a no-op.
func (c *Controller) OnTransientText(s string) bool {
	v, ok := parseValue(s)
	if !ok {
		return false
	}
	return c.OnTransientInput(v)
}

// OnCommit commits v immediately, e.g. on blur or Enter.
func (c *Controller) OnCommit(v float64) bool {
	c.mu.Lock()
	if c.closed || !c.acceptLocked(v) {
		c.mu.Unlock()
		return false
	}
	c.cancelLocked()
	c.committed = v
	c.transient = nil
	c.manual[c.metric] = true
	state := c.stateLocked()
	mutator, onCommit := c.mutator, c.onCommit
	c.mu.Unlock()

	if mutator != nil {
		mutator.Apply(v)
	}
	if onCommit != nil {
		onCommit(state)
	}
	return true
}

// OnCommitText is OnCommit for entry text.
func (c *Controller) OnCommitText(s string) bool {
	v, ok := parseValue(s)
	if !ok {
		return false
	}
	return c.OnCommit(v)
}

// Flush commits the in-flight transient value now, if any.
func (c *Controller) Flush() bool {
	c.mu.Lock()
	if c.transient == nil {
		c.mu.Unlock()
		return false
	}
	v := *c.transient
	c.mu.Unlock()
	return c.OnCommit(v)
}

// OnAutoSuggest commits an externally observed best line and pushes it to
// the mutator, unless the user already overrode the threshold for this
// metric. It leaves no transient value behind.
func (c *Controller) OnAutoSuggest(best float64) bool {
	c.mu.Lock()
	if c.closed || !finite(best) || c.manual[c.metric] {
		c.mu.Unlock()
		return false
	}
	c.cancelLocked()
	c.committed = best
	c.transient = nil
	state := c.stateLocked()
	mutator, onCommit := c.mutator, c.onCommit
	c.mu.Unlock()

	if mutator != nil {
		mutator.Apply(best)
	}
	if onCommit != nil {
		onCommit(state)
	}
	return true
}

// Close cancels any pending commit. Later input is ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.closed = true
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.closed || c.transient == nil {
		c.mu.Unlock()
		return
	}
	c.committed = *c.transient
	c.transient = nil
	c.timer = nil
	state := c.stateLocked()
	metric, onCommit := c.metric, c.onCommit
	c.mu.Unlock()

	slog.Debug("threshold committed", "metric", metric, "value", state.Committed)
	if onCommit != nil {
		onCommit(state)
	}
}

// cancelLocked invalidates the pending timer. Bumping gen also neutralises a
// timer whose callback is already queued behind the lock.
func (c *Controller) cancelLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) acceptLocked(v float64) bool {
	if !finite(v) {
		return false
	}
	if v < 0 && !c.signed {
		return false
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func parseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
