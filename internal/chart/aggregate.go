package chart

import (
	"fmt"
	"math"

	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

const (
	greenTierPercent  = 60
	yellowTierPercent = 40
)

// Compare classifies one bar. Equality is a push; lower-is-better metrics
// count values under the threshold as over.
func Compare(value, threshold float64, lowerIsBetter bool) BarState {
	if value == threshold {
		return BarPush
	}
	if lowerIsBetter {
		if value < threshold {
			return BarOver
		}
		return BarUnder
	}
	if value > threshold {
		return BarOver
	}
	return BarUnder
}

// Aggregate is the over-rate of a series against one threshold. Pushes count
// toward Total but not Over.
type Aggregate struct {
	Over    int
	Under   int
	Push    int
	Total   int
	Percent float64
	Text    string
	Tier    Tier
}

func ComputeAggregate(values []float64, threshold float64, lowerIsBetter bool) Aggregate {
	a := Aggregate{Total: len(values)}
	for _, v := range values {
		switch Compare(v, threshold, lowerIsBetter) {
		case BarOver:
			a.Over++
		case BarUnder:
			a.Under++
		case BarPush:
			a.Push++
		}
	}
	if a.Total == 0 {
		a.Text = series.Placeholder
		a.Tier = TierRed
		return a
	}
	a.Percent = float64(a.Over) / float64(a.Total) * 100
	a.Text = fmt.Sprintf("%d/%d (%.1f%%)", a.Over, a.Total, a.Percent)
	a.Tier = TierFor(a.Percent)
	return a
}

func TierFor(percent float64) Tier {
	switch {
	case percent >= greenTierPercent:
		return TierGreen
	case percent >= yellowTierPercent:
		return TierYellow
	default:
		return TierRed
	}
}

// LineOffsetPercent places value on [lo, hi] as a clamped percentage.
func LineOffsetPercent(value, lo, hi float64) float64 {
	if hi <= lo {
		switch {
		case value > lo:
			return 100
		case value < lo:
			return 0
		default:
			return 50
		}
	}
	ratio := (value - lo) / (hi - lo)
	return math.Max(0, math.Min(1, ratio)) * 100
}

// Summary is the only state the surrounding app reads from a chart session.
type Summary struct {
	CommittedThreshold float64
	SeriesLength       int
	OverCount          int
	OverRatePercent    float64
}
