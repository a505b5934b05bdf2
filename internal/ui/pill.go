package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/AkatukiSora/gamelog-lines/internal/chart"
)

// pillNodes is the over-rate pill drawn inside a renderer.
type pillNodes struct {
	bg   *canvas.Rectangle
	text *canvas.Text
}

func newPillNodes() *pillNodes {
	bg := canvas.NewRectangle(color.Transparent)
	bg.CornerRadius = pillRadius
	bg.StrokeWidth = 1
	text := canvas.NewText("", color.White)
	text.TextStyle = fyne.TextStyle{Bold: true}
	text.TextSize = theme.TextSize() * 0.9
	return &pillNodes{bg: bg, text: text}
}

func (p *pillNodes) set(text string, tier chart.Tier) {
	accent := tierColor(tier)
	p.text.Text = text
	p.bg.FillColor = withAlpha(accent, 0x2E)
	p.bg.StrokeColor = withAlpha(accent, 0x8A)
	if text == "" {
		p.bg.Hide()
		p.text.Hide()
	} else {
		p.bg.Show()
		p.text.Show()
	}
	p.bg.Refresh()
	p.text.Refresh()
}

func (p *pillNodes) size() fyne.Size {
	ts := p.text.MinSize()
	return fyne.NewSize(ts.Width+2*theme.Padding()+4, ts.Height+theme.Padding())
}

// layout pins the pill to topRight.
func (p *pillNodes) layout(topRight fyne.Position) {
	s := p.size()
	pos := fyne.NewPos(topRight.X-s.Width, topRight.Y)
	p.bg.Move(pos)
	p.bg.Resize(s)
	ts := p.text.MinSize()
	p.text.Move(fyne.NewPos(pos.X+(s.Width-ts.Width)/2, pos.Y+(s.Height-ts.Height)/2))
	p.text.Resize(ts)
}

func (p *pillNodes) objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{p.bg, p.text}
}

// aggregatePill is a standalone pill widget that mirrors the chart's
// over-rate text.
type aggregatePill struct {
	widget.BaseWidget

	mu    sync.Mutex
	nodes *pillNodes
	text  string
	tier  chart.Tier
}

func newAggregatePill() *aggregatePill {
	p := &aggregatePill{}
	p.ExtendBaseWidget(p)
	return p
}

// set reports whether the pill was mounted.
func (p *aggregatePill) set(text string, tier chart.Tier) bool {
	p.mu.Lock()
	p.text, p.tier = text, tier
	nodes := p.nodes
	p.mu.Unlock()
	if nodes == nil {
		return false
	}
	nodes.set(text, tier)
	p.Refresh()
	return true
}

func (p *aggregatePill) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

func (p *aggregatePill) CreateRenderer() fyne.WidgetRenderer {
	nodes := newPillNodes()
	p.mu.Lock()
	p.nodes = nodes
	nodes.set(p.text, p.tier)
	p.mu.Unlock()
	return &pillRenderer{pill: p, nodes: nodes}
}

type pillRenderer struct {
	pill  *aggregatePill
	nodes *pillNodes
}

func (r *pillRenderer) Layout(size fyne.Size) {
	r.nodes.layout(fyne.NewPos(size.Width, (size.Height-r.nodes.size().Height)/2))
}

func (r *pillRenderer) MinSize() fyne.Size {
	s := r.nodes.size()
	if s.Width < 96 {
		s.Width = 96
	}
	return s
}

func (r *pillRenderer) Objects() []fyne.CanvasObject { return r.nodes.objects() }

func (r *pillRenderer) Refresh() { r.Layout(r.pill.Size()) }

func (r *pillRenderer) Destroy() {
	r.pill.mu.Lock()
	if r.pill.nodes == r.nodes {
		r.pill.nodes = nil
	}
	r.pill.mu.Unlock()
}
