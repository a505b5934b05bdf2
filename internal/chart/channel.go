package chart

import (
	"log/slog"
	"sync"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/clock"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

// DefaultRetryDelay is the timeout retry after the next-frame retry failed.
const DefaultRetryDelay = 40 * time.Millisecond

// Channel applies threshold values straight onto mounted nodes. Writes are
// synchronous and cached per node, so re-applying the same value is free and
// duplicate retries are harmless.
type Channel struct {
	mu         sync.Mutex
	handle     Handle
	sched      clock.Scheduler
	retryDelay time.Duration

	values        []float64
	domain        *series.Domain
	lowerIsBetter bool

	barStates []BarState
	line      float64
	hasLine   bool
	text      string
	tier      Tier
	hasText   bool

	gen   uint64
	retry clock.Timer
}

func NewChannel(h Handle, sched clock.Scheduler, retryDelay time.Duration) *Channel {
	if sched == nil {
		sched = clock.Real{}
	}
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Channel{handle: h, sched: sched, retryDelay: retryDelay}
}

// Bind points the channel at a freshly rendered structure. The per-node cache
// is reset because the nodes are new.
func (c *Channel) Bind(values []float64, domain *series.Domain, lowerIsBetter bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.values = append(c.values[:0:0], values...)
	c.domain = domain
	c.lowerIsBetter = lowerIsBetter
	c.barStates = make([]BarState, len(values))
	c.hasLine = false
	c.hasText = false
}

// Apply runs the three direct writes for value: line position, bar colours
// and aggregate pills. A write that hits an unmounted node is retried once on
// the next frame and once more after the retry delay.
func (c *Channel) Apply(value float64) Aggregate {
	c.mu.Lock()
	c.cancelLocked()
	agg, complete := c.writeLocked(value)
	gen := c.gen
	c.mu.Unlock()

	// Defer may run inline on the UI thread, so it is called unlocked.
	if !complete {
		c.sched.Defer(func() { c.retryFrame(gen, value) })
	}
	return agg
}

// Cancel drops pending retries, e.g. on unmount.
func (c *Channel) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

// BarStates returns the last states successfully written.
func (c *Channel) BarStates() []BarState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]BarState(nil), c.barStates...)
}

func (c *Channel) retryFrame(gen uint64, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	if _, complete := c.writeLocked(value); complete {
		return
	}
	c.retry = c.sched.AfterFunc(c.retryDelay, func() { c.retryTimeout(gen, value) })
}

func (c *Channel) retryTimeout(gen uint64, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.retry = nil
	if _, complete := c.writeLocked(value); !complete {
		slog.Debug("chart write dropped after retries", "value", value)
	}
}

func (c *Channel) cancelLocked() {
	c.gen++
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
}

func (c *Channel) writeLocked(value float64) (Aggregate, bool) {
	agg := ComputeAggregate(c.values, value, c.lowerIsBetter)
	if c.handle == nil {
		return agg, true
	}
	complete := true

	lo, hi := c.effectiveBoundsLocked()
	pct := LineOffsetPercent(value, lo, hi)
	if !c.hasLine || c.line != pct {
		if c.handle.SetReferenceLinePosition(pct) {
			c.line, c.hasLine = pct, true
		} else {
			complete = false
		}
	}

	mounted := c.handle.BarCount()
	for i, v := range c.values {
		state := Compare(v, value, c.lowerIsBetter)
		if c.barStates[i] == state {
			continue
		}
		if i >= mounted || !c.handle.SetBarState(i, state) {
			complete = false
			continue
		}
		c.barStates[i] = state
	}

	if !c.hasText || c.text != agg.Text || c.tier != agg.Tier {
		if c.handle.SetAggregateText(agg.Text, agg.Tier) {
			c.text, c.tier, c.hasText = agg.Text, agg.Tier, true
		} else {
			complete = false
		}
	}
	return agg, complete
}

// effectiveBoundsLocked prefers the drawn bar range on narrow viewports so
// the line sits flush with bar tops instead of the padded axis.
func (c *Channel) effectiveBoundsLocked() (float64, float64) {
	if c.handle.Narrow() {
		if lo, hi, ok := c.handle.RenderedBounds(); ok && hi > lo {
			return lo, hi
		}
	}
	if c.domain != nil {
		return c.domain.Min, c.domain.Max
	}
	return 0, 1
}
