package ui

import (
	"image/color"
	"math"
	"strconv"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/AkatukiSora/gamelog-lines/internal/chart"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

const (
	defaultNarrowWidth = 640
	chartAxisGutter    = 44
	chartLabelBand     = 20
	chartBarGapRatio   = 0.25
)

var (
	barUnknownColor = color.NRGBA{R: 0x90, G: 0xA4, B: 0xAE, A: 0xB0}
	barPushColor    = color.NRGBA{R: 0xFF, G: 0xC1, B: 0x07, A: 0xE0}
	gridLineColor   = color.NRGBA{R: 0x8A, G: 0x92, B: 0x9C, A: 0x30}
	refLineColor    = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xE6}
)

func barColor(s chart.BarState) color.Color {
	switch s {
	case chart.BarOver:
		return uiSuccessAccent
	case chart.BarUnder:
		return uiDangerAccent
	case chart.BarPush:
		return barPushColor
	default:
		return barUnknownColor
	}
}

func tierColor(t chart.Tier) color.Color {
	switch t {
	case chart.TierGreen:
		return uiSuccessAccent
	case chart.TierYellow:
		return uiWarningColor
	default:
		return uiDangerAccent
	}
}

// barChart is the retained fyne rendition of chart.Surface. RenderStructure
// rebuilds the bar nodes; every other setter mutates existing nodes in place.
// Nodes count as mounted while the widget has a live renderer.
type barChart struct {
	widget.BaseWidget

	narrowWidth float32

	mu    sync.Mutex
	view  chart.StructuralView
	r     *barChartRenderer
	pills []*aggregatePill
	text  string
	tier  chart.Tier
}

var _ chart.Surface = (*barChart)(nil)

func newBarChart(narrowWidth float32) *barChart {
	if narrowWidth <= 0 {
		narrowWidth = defaultNarrowWidth
	}
	b := &barChart{narrowWidth: narrowWidth}
	b.ExtendBaseWidget(b)
	return b
}

// attachPill registers an extra aggregate pill, e.g. the one in the
// threshold bar. It starts with the latest text.
func (b *barChart) attachPill(p *aggregatePill) {
	b.mu.Lock()
	b.pills = append(b.pills, p)
	text, tier := b.text, b.tier
	b.mu.Unlock()
	p.set(text, tier)
}

func (b *barChart) CreateRenderer() fyne.WidgetRenderer {
	r := &barChartRenderer{chart: b}
	r.background = canvas.NewRectangle(color.Transparent)
	r.line = canvas.NewLine(refLineColor)
	r.line.StrokeWidth = 2
	r.pill = newPillNodes()
	r.empty = canvas.NewText(lang.X("chart.empty", "No games match the current filters"), uiMutedTextColor)
	r.empty.Alignment = fyne.TextAlignCenter

	b.mu.Lock()
	b.r = r
	r.rebuildLocked(b.view)
	r.pill.set(b.text, b.tier)
	b.mu.Unlock()
	return r
}

func (b *barChart) RenderStructure(view chart.StructuralView) {
	b.mu.Lock()
	b.view = view
	if b.r != nil {
		b.r.rebuildLocked(view)
	}
	b.mu.Unlock()
	b.Refresh()
}

func (b *barChart) BarCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.r == nil {
		return 0
	}
	return len(b.r.bars)
}

func (b *barChart) SetBarState(index int, state chart.BarState) bool {
	b.mu.Lock()
	if b.r == nil || index < 0 || index >= len(b.r.bars) {
		b.mu.Unlock()
		return false
	}
	rect := b.r.bars[index]
	b.r.states[index] = state
	rect.FillColor = barColor(state)
	b.mu.Unlock()
	rect.Refresh()
	return true
}

func (b *barChart) SetReferenceLinePosition(percent float64) bool {
	b.mu.Lock()
	if b.r == nil {
		b.mu.Unlock()
		return false
	}
	r := b.r
	r.linePercent = percent
	r.hasLine = true
	r.placeLineLocked()
	line := r.line
	b.mu.Unlock()
	line.Refresh()
	return true
}

func (b *barChart) SetAggregateText(text string, tier chart.Tier) bool {
	b.mu.Lock()
	b.text, b.tier = text, tier
	var own *pillNodes
	if b.r != nil {
		own = b.r.pill
	}
	pills := append([]*aggregatePill(nil), b.pills...)
	b.mu.Unlock()

	mounted := 0
	if own != nil {
		own.set(text, tier)
		mounted++
	}
	for _, p := range pills {
		if p.set(text, tier) {
			mounted++
		}
	}
	return mounted > 0
}

func (b *barChart) RenderedBounds() (float64, float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.r == nil || len(b.r.values) == 0 {
		return 0, 0, false
	}
	lo, hi := b.r.base, b.r.base
	for _, v := range b.r.values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, true
}

func (b *barChart) Narrow() bool {
	return b.Size().Width > 0 && b.Size().Width < b.narrowWidth
}

type barChartRenderer struct {
	chart *barChart

	background *canvas.Rectangle
	grid       []*canvas.Line
	tickLabels []*canvas.Text
	bars       []*canvas.Rectangle
	states     []chart.BarState
	barLabels  []*canvas.Text
	line       *canvas.Line
	pill       *pillNodes
	empty      *canvas.Text

	values      []float64
	ticks       []float64
	domainMin   float64
	domainMax   float64
	base        float64
	linePercent float64
	hasLine     bool
	size        fyne.Size
}

// rebuildLocked recreates the nodes for view. Caller holds chart.mu.
func (r *barChartRenderer) rebuildLocked(view chart.StructuralView) {
	r.values = r.values[:0]
	r.bars = nil
	r.states = nil
	r.barLabels = nil
	r.grid = nil
	r.tickLabels = nil
	r.hasLine = false

	if view.Domain != nil {
		r.domainMin, r.domainMax = view.Domain.Min, view.Domain.Max
		r.ticks = append(r.ticks[:0], view.Domain.Ticks...)
	} else {
		r.domainMin, r.domainMax = 0, 1
		r.ticks = r.ticks[:0]
	}
	r.base = math.Max(r.domainMin, math.Min(0, r.domainMax))

	for _, t := range r.ticks {
		gl := canvas.NewLine(gridLineColor)
		gl.StrokeWidth = 1
		r.grid = append(r.grid, gl)
		lbl := canvas.NewText(formatTick(t, view.Metric), uiMutedTextColor)
		lbl.TextSize = theme.TextSize() * 0.8
		lbl.Alignment = fyne.TextAlignTrailing
		r.tickLabels = append(r.tickLabels, lbl)
	}

	for _, p := range view.Points {
		r.values = append(r.values, p.Value)
		rect := canvas.NewRectangle(barUnknownColor)
		rect.CornerRadius = 2
		r.bars = append(r.bars, rect)
		r.states = append(r.states, chart.BarUnknown)
		lbl := canvas.NewText(p.TickLabel, uiMutedTextColor)
		lbl.TextSize = theme.TextSize() * 0.75
		lbl.Alignment = fyne.TextAlignCenter
		r.barLabels = append(r.barLabels, lbl)
	}
	if view.Empty() {
		r.empty.Show()
		r.line.Hide()
	} else {
		r.empty.Hide()
		r.line.Show()
	}
	r.layoutLocked(r.size)
}

func formatTick(v float64, m series.MetricDefinition) string {
	switch m.Class {
	case series.ClassPercentage:
		return strconv.FormatFloat(v, 'f', 0, 64) + "%"
	case series.ClassBinary:
		if v >= 1 {
			return lang.X("chart.tick.win", "W")
		}
		if v <= 0 {
			return lang.X("chart.tick.loss", "L")
		}
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func (r *barChartRenderer) plotRect(size fyne.Size) (x, y, w, h float32) {
	x = chartAxisGutter
	y = theme.Padding()
	w = size.Width - chartAxisGutter - theme.Padding()
	h = size.Height - chartLabelBand - 2*theme.Padding()
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return
}

// yFor maps a value onto the plot in pixels from the top.
func (r *barChartRenderer) yFor(v float64, top, height float32) float32 {
	span := r.domainMax - r.domainMin
	if span <= 0 {
		span = 1
	}
	ratio := (v - r.domainMin) / span
	ratio = math.Max(0, math.Min(1, ratio))
	return top + height - float32(ratio)*height
}

func (r *barChartRenderer) layoutLocked(size fyne.Size) {
	r.size = size
	r.background.Resize(size)
	px, py, pw, ph := r.plotRect(size)

	for i, t := range r.ticks {
		y := r.yFor(t, py, ph)
		r.grid[i].Position1 = fyne.NewPos(px, y)
		r.grid[i].Position2 = fyne.NewPos(px+pw, y)
		lbl := r.tickLabels[i]
		ls := lbl.MinSize()
		lbl.Move(fyne.NewPos(px-ls.Width-4, y-ls.Height/2))
		lbl.Resize(ls)
	}

	n := len(r.bars)
	if n > 0 {
		slot := pw / float32(n)
		barW := slot * (1 - chartBarGapRatio)
		baseY := r.yFor(r.base, py, ph)
		for i, rect := range r.bars {
			// oldest game on the left
			x := px + slot*float32(i) + (slot-barW)/2
			topY := r.yFor(r.values[i], py, ph)
			y0, y1 := topY, baseY
			if y0 > y1 {
				y0, y1 = y1, y0
			}
			if y1-y0 < 1 {
				y1 = y0 + 1
			}
			rect.Move(fyne.NewPos(x, y0))
			rect.Resize(fyne.NewSize(barW, y1-y0))

			lbl := r.barLabels[i]
			ls := lbl.MinSize()
			lbl.Move(fyne.NewPos(x+barW/2-ls.Width/2, py+ph+2))
			lbl.Resize(ls)
		}
	}

	r.placeLineLocked()
	r.pill.layout(fyne.NewPos(px+pw, py))
	es := r.empty.MinSize()
	r.empty.Move(fyne.NewPos(size.Width/2-es.Width/2, size.Height/2-es.Height/2))
	r.empty.Resize(es)
}

func (r *barChartRenderer) placeLineLocked() {
	px, py, pw, ph := r.plotRect(r.size)
	if !r.hasLine {
		r.line.Position1 = fyne.NewPos(px, py+ph)
		r.line.Position2 = fyne.NewPos(px, py+ph)
		return
	}
	// the percentage is measured against the channel's bounds, which equal
	// the axis domain unless the chart is narrow
	lo, hi := r.domainMin, r.domainMax
	if r.chart.Narrow() && len(r.values) > 0 {
		lo, hi = r.base, r.base
		for _, v := range r.values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	v := lo + (hi-lo)*r.linePercent/100
	y := r.yFor(v, py, ph)
	r.line.Position1 = fyne.NewPos(px, y)
	r.line.Position2 = fyne.NewPos(px+pw, y)
}

func (r *barChartRenderer) Layout(size fyne.Size) {
	r.chart.mu.Lock()
	r.layoutLocked(size)
	r.chart.mu.Unlock()
}

func (r *barChartRenderer) MinSize() fyne.Size {
	return fyne.NewSize(240, 160)
}

func (r *barChartRenderer) Objects() []fyne.CanvasObject {
	r.chart.mu.Lock()
	defer r.chart.mu.Unlock()
	objs := make([]fyne.CanvasObject, 0, 4+len(r.grid)*2+len(r.bars)*2)
	objs = append(objs, r.background)
	for i := range r.grid {
		objs = append(objs, r.grid[i], r.tickLabels[i])
	}
	for i := range r.bars {
		objs = append(objs, r.bars[i], r.barLabels[i])
	}
	objs = append(objs, r.line, r.empty)
	objs = append(objs, r.pill.objects()...)
	return objs
}

func (r *barChartRenderer) Refresh() {
	r.chart.mu.Lock()
	r.layoutLocked(r.chart.Size())
	r.chart.mu.Unlock()
	canvas.Refresh(r.chart)
}

func (r *barChartRenderer) Destroy() {
	r.chart.mu.Lock()
	if r.chart.r == r {
		r.chart.r = nil
	}
	r.chart.mu.Unlock()
}
