package ui

import (
	"math"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"github.com/AkatukiSora/gamelog-lines/internal/chart"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

func pointsOf(values ...float64) []series.Point {
	out := make([]series.Point, len(values))
	for i, v := range values {
		out[i] = series.Point{GameID: string(rune('a' + i)), Date: time.Date(2025, 11, 1+i, 0, 0, 0, 0, time.UTC), TickLabel: "LAL", Value: v}
	}
	return out
}

func pointsView(values ...float64) chart.StructuralView {
	def, _ := series.LookupMetric(series.MetricPoints)
	return chart.StructuralView{
		Points: pointsOf(values...),
		Domain: series.Scale(values, def.Class),
		Metric: def,
	}
}

func TestBarChartUnmountedSettersReportFalse(t *testing.T) {
	b := newBarChart(0)
	b.RenderStructure(pointsView(10, 20))

	if b.BarCount() != 0 {
		t.Fatalf("BarCount() = %d before mount, want 0", b.BarCount())
	}
	if b.SetBarState(0, chart.BarOver) {
		t.Fatalf("SetBarState on unmounted chart = true, want false")
	}
	if b.SetReferenceLinePosition(50) {
		t.Fatalf("SetReferenceLinePosition on unmounted chart = true, want false")
	}
	if b.SetAggregateText("1/2 (50.0%)", chart.TierYellow) {
		t.Fatalf("SetAggregateText without mounted pills = true, want false")
	}
	if _, _, ok := b.RenderedBounds(); ok {
		t.Fatalf("RenderedBounds on unmounted chart reported ok")
	}
}

func TestBarChartMountedWritesNodes(t *testing.T) {
	test.NewTempApp(t)

	b := newBarChart(0)
	b.RenderStructure(pointsView(12, 31, 24))
	test.TempWidgetRenderer(t, b)
	b.Resize(fyne.NewSize(800, 300))

	if b.BarCount() != 3 {
		t.Fatalf("BarCount() = %d, want 3", b.BarCount())
	}
	if !b.SetBarState(1, chart.BarOver) {
		t.Fatalf("SetBarState on mounted chart = false")
	}
	if b.SetBarState(3, chart.BarOver) {
		t.Fatalf("SetBarState out of range = true, want false")
	}
	if !b.SetReferenceLinePosition(40) {
		t.Fatalf("SetReferenceLinePosition on mounted chart = false")
	}
	lo, hi, ok := b.RenderedBounds()
	if !ok || lo != 0 || hi != 31 {
		t.Fatalf("RenderedBounds() = %v %v %v, want 0 31 true", lo, hi, ok)
	}
	if b.Narrow() {
		t.Fatalf("Narrow() = true at 800px")
	}
	b.Resize(fyne.NewSize(320, 300))
	if !b.Narrow() {
		t.Fatalf("Narrow() = false at 320px")
	}
}

func TestBarChartAggregateReachesAttachedPill(t *testing.T) {
	test.NewTempApp(t)

	b := newBarChart(0)
	pill := newAggregatePill()
	b.attachPill(pill)
	if pill.set("x", chart.TierRed) {
		t.Fatalf("pill without renderer reported mounted")
	}
	test.TempWidgetRenderer(t, pill)

	if !b.SetAggregateText("2/3 (66.7%)", chart.TierGreen) {
		t.Fatalf("SetAggregateText with mounted pill = false")
	}
	if pill.Text() != "2/3 (66.7%)" {
		t.Fatalf("pill text = %q, want 2/3 (66.7%%)", pill.Text())
	}

	late := newAggregatePill()
	b.attachPill(late)
	if late.Text() != "2/3 (66.7%)" {
		t.Fatalf("late pill text = %q, want latest aggregate", late.Text())
	}
}

func TestBarChartDrawsOldestGameLeftmost(t *testing.T) {
	test.NewTempApp(t)

	b := newBarChart(0)
	// pointsOf dates ascend, index 0 is the oldest game
	b.RenderStructure(pointsView(10, 30, 20))
	test.TempWidgetRenderer(t, b)
	b.Resize(fyne.NewSize(800, 300))

	if b.BarCount() != 3 {
		t.Fatalf("BarCount() = %d, want 3", b.BarCount())
	}
	for i := 1; i < len(b.r.bars); i++ {
		prev, cur := b.r.bars[i-1].Position().X, b.r.bars[i].Position().X
		if cur <= prev {
			t.Fatalf("bar %d at x=%v, bar %d at x=%v; want ascending left to right", i-1, prev, i, cur)
		}
		if lp, lc := b.r.barLabels[i-1].Position().X, b.r.barLabels[i].Position().X; lc <= lp {
			t.Fatalf("label %d at x=%v, label %d at x=%v; want ascending", i-1, lp, i, lc)
		}
	}
}

func TestBarChartEmptyView(t *testing.T) {
	test.NewTempApp(t)

	b := newBarChart(0)
	r := test.TempWidgetRenderer(t, b)
	b.RenderStructure(chart.StructuralView{})
	if b.BarCount() != 0 {
		t.Fatalf("BarCount() = %d for empty view", b.BarCount())
	}
	if _, _, ok := b.RenderedBounds(); ok {
		t.Fatalf("RenderedBounds on empty chart reported ok")
	}
	if len(r.Objects()) == 0 {
		t.Fatalf("empty chart has no objects")
	}
}

func TestFormatTick(t *testing.T) {
	t.Parallel()

	pct, _ := series.LookupMetric(series.MetricFGPct)
	win, _ := series.LookupMetric(series.MetricWin)
	pts, _ := series.LookupMetric(series.MetricPoints)

	tests := []struct {
		v    float64
		m    series.MetricDefinition
		want string
	}{
		{45, pct, "45%"},
		{1, win, "W"},
		{0, win, "L"},
		{20, pts, "20"},
		{2.5, pts, "2.5"},
	}
	for _, tt := range tests {
		if got := formatTick(tt.v, tt.m); got != tt.want {
			t.Fatalf("formatTick(%v, %s) = %q, want %q", tt.v, tt.m.ID, got, tt.want)
		}
	}
}

func TestDividerPixelFadesEdges(t *testing.T) {
	t.Parallel()

	if a := toNRGBA(dividerPixel(0, 100)).A; a != 0 {
		t.Fatalf("edge alpha = %d, want 0", a)
	}
	if a := toNRGBA(dividerPixel(50, 100)).A; a != dividerBaseColor.A {
		t.Fatalf("centre alpha = %d, want %d", a, dividerBaseColor.A)
	}
	mid := toNRGBA(dividerPixel(20, 101)).A
	if mid == 0 || mid == dividerBaseColor.A {
		t.Fatalf("fade alpha = %d, want partial", mid)
	}
}

func TestSliderRangeFitsLine(t *testing.T) {
	t.Parallel()

	pts, _ := series.LookupMetric(series.MetricPoints)
	lo, hi := sliderRange(&series.Domain{Min: 0, Max: 30}, pts, 42.3)
	if lo != 0 || hi != 42.5 {
		t.Fatalf("sliderRange = %v..%v, want 0..42.5", lo, hi)
	}
	pct, _ := series.LookupMetric(series.MetricFGPct)
	lo, hi = sliderRange(nil, pct, 45)
	if lo != 0 || hi != 100 {
		t.Fatalf("sliderRange(nil pct) = %v..%v, want 0..100", lo, hi)
	}
	if got := formatLine(19.5); got != "19.5" {
		t.Fatalf("formatLine(19.5) = %q", got)
	}
	if math.IsNaN(lo) {
		t.Fatalf("NaN bound")
	}
}
