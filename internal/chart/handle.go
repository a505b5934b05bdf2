// Package chart is the dual-speed update engine. A structural render builds
// the bar nodes; threshold changes then write straight into those retained
// nodes through Handle, without rebuilding anything.
package chart

import (
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

// BarState is the colouring of a single bar relative to the threshold.
type BarState int

const (
	BarUnknown BarState = iota
	BarOver
	BarUnder
	BarPush
)

func (s BarState) String() string {
	switch s {
	case BarOver:
		return "over"
	case BarUnder:
		return "under"
	case BarPush:
		return "push"
	default:
		return "unknown"
	}
}

// Tier is the colour class of the aggregate pill.
type Tier int

const (
	TierRed Tier = iota
	TierYellow
	TierGreen
)

func (t Tier) String() string {
	switch t {
	case TierGreen:
		return "green"
	case TierYellow:
		return "yellow"
	default:
		return "red"
	}
}

// Handle is the imperative side of a rendered chart. Every setter reports
// whether the target node was mounted; false means the write was dropped
// and should be retried.
type Handle interface {
	BarCount() int
	SetBarState(index int, state BarState) bool
	SetReferenceLinePosition(percent float64) bool
	// SetAggregateText updates every mounted aggregate pill.
	SetAggregateText(text string, tier Tier) bool
	// RenderedBounds is the value range of the bars actually drawn.
	RenderedBounds() (min, max float64, ok bool)
	// Narrow reports a compact viewport where the line tracks bar tops.
	Narrow() bool
}

// StructuralView is everything the expensive layer renders from. It carries
// no threshold on purpose.
type StructuralView struct {
	Points []series.Point
	Domain *series.Domain
	Metric series.MetricDefinition
	Theme  string
}

// Empty reports the explicit no-data state.
func (v StructuralView) Empty() bool {
	return len(v.Points) == 0
}

// Surface is a Handle that can also rebuild its node tree.
type Surface interface {
	Handle
	RenderStructure(view StructuralView)
}
