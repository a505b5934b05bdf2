package series

import (
	"math"
)

// Domain is the Y axis of one chart. Scale returns a fresh pointer per call;
// callers compare pointers to detect a structural change.
type Domain struct {
	Min     float64
	Max     float64
	Ticks   []float64
	DataMin float64
	DataMax float64
}

// Span is Max-Min, never zero.
func (d *Domain) Span() float64 {
	if d == nil || d.Max <= d.Min {
		return 1
	}
	return d.Max - d.Min
}

const (
	smallIntLimit = 20
	signedMinPad  = 5
	tickStep      = 5
	// 21 keeps the 0..100 percentage grid at step 5.
	maxTicks = 21
)

// Scale computes the axis for values under the given class. It depends only
// on the values and the class, never on the threshold.
func Scale(values []float64, class MetricClass) *Domain {
	lo, hi := bounds(values)
	d := &Domain{DataMin: lo, DataMax: hi}

	if class == ClassCount {
		class = ClassLargeInt
		if math.Max(math.Abs(lo), math.Abs(hi)) <= smallIntLimit {
			class = ClassSmallInt
		}
	}

	switch class {
	case ClassPercentage:
		d.Min, d.Max = 0, 100
		d.Ticks = stepTicks(0, 100, tickStep)
	case ClassBinary:
		d.Min, d.Max = 0, 1.5
		d.Ticks = []float64{0, 1}
	case ClassSigned:
		// epsilon keeps 0.15*100 from ceiling to 16
		pad := math.Max(signedMinPad, math.Ceil(0.15*(hi-lo)-1e-9))
		d.Min = math.Floor((lo-pad)/tickStep) * tickStep
		d.Max = math.Ceil((hi+pad)/tickStep) * tickStep
		d.Ticks = stepTicks(math.Ceil(lo/tickStep)*tickStep, math.Floor(hi/tickStep)*tickStep, tickStep)
		if len(d.Ticks) == 0 && d.Min <= 0 && d.Max >= 0 {
			d.Ticks = []float64{0}
		}
	case ClassSmallInt:
		d.Min = 0
		if lo < 0 {
			d.Min = math.Floor(lo) - 1
		}
		d.Max = math.Ceil(hi) + 1
		d.Ticks = stepTicks(d.Min, d.Max, 1)
	default:
		d.Min = 0
		if lo < 0 {
			d.Min = math.Floor(lo/tickStep) * tickStep
		}
		d.Max = math.Ceil((hi+1)/tickStep) * tickStep
		d.Ticks = stepTicks(d.Min, d.Max, tickStep)
	}
	return d
}

func bounds(values []float64) (lo, hi float64) {
	first := true
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// stepTicks lists the multiples of step in [from, to]. Wide ranges get a
// coarser step so there are never more than maxTicks.
func stepTicks(from, to, step float64) []float64 {
	span := to - from
	if span < 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		return nil
	}
	for span/step+1 > maxTicks+1e-9 {
		step = widerStep(step)
		from, to = math.Ceil(from/step)*step, math.Floor(to/step)*step
		span = to - from
	}
	n := int(math.Round(span/step)) + 1
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, from+float64(i)*step)
	}
	return out
}

// widerStep returns the next step above step in 5, 10, 25, 50, 100, 250, ...
func widerStep(step float64) float64 {
	for mag := 1.0; ; mag *= 10 {
		for _, k := range []float64{1, 2, 5} {
			if next := k * tickStep * mag; next > step {
				return next
			}
		}
	}
}
