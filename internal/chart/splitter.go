package chart

import (
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

// StructuralKey lists every input the structural layer depends on. The
// threshold is deliberately absent.
type StructuralKey struct {
	SeriesID uint64
	Domain   *series.Domain
	Metric   series.MetricID
	Theme    string
}

// OverlayKey lists the inputs of the overlay layer.
type OverlayKey struct {
	Committed    float64
	Transient    float64
	HasTransient bool
	Domain       *series.Domain
}

// Splitter memoises the two layers against their own keys and re-renders a
// layer only when its key changed.
type Splitter struct {
	renderStructural func(StructuralKey)
	renderOverlay    func(OverlayKey)

	structural    StructuralKey
	hasStructural bool
	overlay       OverlayKey
	hasOverlay    bool

	structuralRenders int
	overlayRenders    int
}

func NewSplitter(structural func(StructuralKey), overlay func(OverlayKey)) *Splitter {
	return &Splitter{renderStructural: structural, renderOverlay: overlay}
}

// Update renders whichever layers are stale, structural first so the overlay
// always lands on current nodes.
func (s *Splitter) Update(sk StructuralKey, ok OverlayKey) (structural, overlay bool) {
	if !s.hasStructural || sk != s.structural {
		s.structural, s.hasStructural = sk, true
		s.structuralRenders++
		if s.renderStructural != nil {
			s.renderStructural(sk)
		}
		structural = true
		// fresh nodes need the overlay re-applied
		s.hasOverlay = false
	}
	if !s.hasOverlay || ok != s.overlay {
		s.overlay, s.hasOverlay = ok, true
		s.overlayRenders++
		if s.renderOverlay != nil {
			s.renderOverlay(ok)
		}
		overlay = true
	}
	return structural, overlay
}

// Invalidate forces both layers to render on the next Update.
func (s *Splitter) Invalidate() {
	s.hasStructural = false
	s.hasOverlay = false
}

func (s *Splitter) StructuralKey() StructuralKey { return s.structural }

func (s *Splitter) OverlayKey() OverlayKey { return s.overlay }

func (s *Splitter) StructuralRenders() int { return s.structuralRenders }

func (s *Splitter) OverlayRenders() int { return s.overlayRenders }
