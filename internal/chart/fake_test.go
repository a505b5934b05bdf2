package chart

import "sync"

// fakeSurface records every write. Setting mounted=false makes writes fail
// the way a not-yet-attached node would.
type fakeSurface struct {
	mu sync.Mutex

	mounted bool
	narrow  bool
	bars    []BarState
	line    float64
	text    string
	tier    Tier
	pills   int

	structureRenders int
	barWrites        int
	lineWrites       int
	textWrites       int
	lastView         StructuralView
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{mounted: true, pills: 2}
}

func (f *fakeSurface) setMounted(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mounted = v
}

func (f *fakeSurface) RenderStructure(view StructuralView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.structureRenders++
	f.lastView = view
	f.bars = make([]BarState, len(view.Points))
}

func (f *fakeSurface) BarCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.mounted {
		return 0
	}
	return len(f.bars)
}

func (f *fakeSurface) SetBarState(i int, s BarState) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.mounted || i < 0 || i >= len(f.bars) {
		return false
	}
	f.bars[i] = s
	f.barWrites++
	return true
}

func (f *fakeSurface) SetReferenceLinePosition(pct float64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.mounted {
		return false
	}
	f.line = pct
	f.lineWrites++
	return true
}

func (f *fakeSurface) SetAggregateText(text string, tier Tier) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.mounted || f.pills == 0 {
		return false
	}
	f.text, f.tier = text, tier
	f.textWrites += f.pills
	return true
}

func (f *fakeSurface) RenderedBounds() (float64, float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lastView.Points) == 0 {
		return 0, 0, false
	}
	lo, hi := f.lastView.Points[0].Value, f.lastView.Points[0].Value
	for _, p := range f.lastView.Points {
		if p.Value < lo {
			lo = p.Value
		}
		if p.Value > hi {
			hi = p.Value
		}
	}
	return lo, hi, true
}

func (f *fakeSurface) Narrow() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.narrow
}

// barHandle is a bare Handle for channel tests without a structural layer.
type barHandle struct {
	*fakeSurface
}

func newBarHandle(n int) barHandle {
	f := newFakeSurface()
	f.bars = make([]BarState, n)
	return barHandle{f}
}
