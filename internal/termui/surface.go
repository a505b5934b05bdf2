package termui

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/AkatukiSora/gamelog-lines/internal/chart"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

const (
	defaultNarrowWidth = 80
	axisGutter         = 7
	barWidth           = 2
	barGap             = 1
)

var (
	overStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	underStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	pushStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	lineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	axisStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555", Dark: "#888"})
	pillStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
)

func barStyle(s chart.BarState) lipgloss.Style {
	switch s {
	case chart.BarOver:
		return overStyle
	case chart.BarUnder:
		return underStyle
	case chart.BarPush:
		return pushStyle
	default:
		return unknownStyle
	}
}

func tierStyle(t chart.Tier) lipgloss.Style {
	switch t {
	case chart.TierGreen:
		return pillStyle.BorderForeground(lipgloss.Color("10")).Foreground(lipgloss.Color("10"))
	case chart.TierYellow:
		return pillStyle.BorderForeground(lipgloss.Color("11")).Foreground(lipgloss.Color("11"))
	default:
		return pillStyle.BorderForeground(lipgloss.Color("9")).Foreground(lipgloss.Color("9"))
	}
}

// Surface is an immediate-mode chart.Surface. Setters only record state; the
// bubbletea View draws it. It counts as mounted once the terminal size is
// known.
type Surface struct {
	narrowWidth int

	mu      sync.Mutex
	mounted bool
	width   int
	view    chart.StructuralView
	states  []chart.BarState
	linePct float64
	hasLine bool
	text    string
	tier    chart.Tier
}

var _ chart.Surface = (*Surface)(nil)

func NewSurface(narrowWidth int) *Surface {
	if narrowWidth <= 0 {
		narrowWidth = defaultNarrowWidth
	}
	return &Surface{narrowWidth: narrowWidth}
}

// Mount marks the surface drawable at the given terminal width.
func (s *Surface) Mount(width int) {
	s.mu.Lock()
	s.mounted = true
	s.width = width
	s.mu.Unlock()
}

func (s *Surface) Unmount() {
	s.mu.Lock()
	s.mounted = false
	s.mu.Unlock()
}

func (s *Surface) RenderStructure(view chart.StructuralView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	s.states = make([]chart.BarState, len(view.Points))
	s.hasLine = false
}

func (s *Surface) BarCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return 0
	}
	return len(s.states)
}

func (s *Surface) SetBarState(index int, state chart.BarState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted || index < 0 || index >= len(s.states) {
		return false
	}
	s.states[index] = state
	return true
}

func (s *Surface) SetReferenceLinePosition(percent float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return false
	}
	s.linePct = percent
	s.hasLine = true
	return true
}

func (s *Surface) SetAggregateText(text string, tier chart.Tier) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text, s.tier = text, tier
	return s.mounted
}

func (s *Surface) RenderedBounds() (float64, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted || len(s.view.Points) == 0 {
		return 0, 0, false
	}
	lo, hi := s.boundsLocked()
	return lo, hi, true
}

func (s *Surface) Narrow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width > 0 && s.width < s.narrowWidth
}

func (s *Surface) domainLocked() (float64, float64) {
	if s.view.Domain == nil {
		return 0, 1
	}
	return s.view.Domain.Min, s.view.Domain.Max
}

func (s *Surface) baseLocked() float64 {
	lo, hi := s.domainLocked()
	return math.Max(lo, math.Min(0, hi))
}

func (s *Surface) boundsLocked() (float64, float64) {
	lo := s.baseLocked()
	hi := lo
	for _, p := range s.view.Points {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	return lo, hi
}

// Pill renders the aggregate text, or "" before the first write.
func (s *Surface) Pill() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.text == "" {
		return ""
	}
	return tierStyle(s.tier).Render(s.text)
}

// Render draws the bars into rows lines, oldest game on the left.
func (s *Surface) Render(rows int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rows < 2 {
		rows = 2
	}
	if len(s.view.Points) == 0 {
		return axisStyle.Render("No games match the current filters")
	}

	dlo, dhi := s.domainLocked()
	span := dhi - dlo
	if span <= 0 {
		span = 1
	}
	// row r covers (top(r+1), top(r)]
	top := func(r int) float64 { return dhi - span*float64(r)/float64(rows) }
	base := s.baseLocked()
	baseRow := max(0, min(rows-1, int((dhi-base)/span*float64(rows))))

	lineRow := -1
	if s.hasLine {
		lo, hi := dlo, dhi
		if s.width > 0 && s.width < s.narrowWidth {
			lo, hi = s.boundsLocked()
		}
		v := lo + (hi-lo)*s.linePct/100
		lineRow = int(math.Round((dhi - v) / span * float64(rows)))
		lineRow = max(0, min(rows-1, lineRow))
	}

	labels := map[int]string{0: formatValue(dhi, s.view.Metric), rows - 1: formatValue(dlo, s.view.Metric)}
	if lineRow >= 0 {
		labels[lineRow] = formatValue(dlo+span*(float64(rows-lineRow)/float64(rows)), s.view.Metric)
	}

	n := len(s.view.Points)
	var b strings.Builder
	for r := 0; r < rows; r++ {
		label := labels[r]
		b.WriteString(axisStyle.Render(padLeft(label, axisGutter-1) + "│"))
		hiCell, loCell := top(r), top(r+1)
		for col := 0; col < n; col++ {
			i := col
			v := s.view.Points[i].Value
			barLo, barHi := math.Min(v, base), math.Max(v, base)
			filled := barHi > loCell && barLo < hiCell
			var cell string
			switch {
			case filled:
				cell = barStyle(s.states[i]).Render(strings.Repeat("█", barWidth))
			case barLo == barHi && r == baseRow:
				cell = barStyle(s.states[i]).Render(strings.Repeat("▁", barWidth))
			case r == lineRow:
				cell = lineStyle.Render(strings.Repeat("━", barWidth))
			default:
				cell = strings.Repeat(" ", barWidth)
			}
			b.WriteString(cell)
			if col < n-1 {
				if r == lineRow {
					b.WriteString(lineStyle.Render(strings.Repeat("━", barGap)))
				} else {
					b.WriteString(strings.Repeat(" ", barGap))
				}
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(axisStyle.Render(strings.Repeat(" ", axisGutter-1) + "└" + strings.Repeat("─", n*(barWidth+barGap))))
	return b.String()
}

func formatValue(v float64, m series.MetricDefinition) string {
	switch m.Class {
	case series.ClassPercentage:
		return strconv.FormatFloat(v, 'f', 0, 64) + "%"
	case series.ClassBinary:
		if v >= 1 {
			return "W"
		}
		if v <= 0 {
			return "L"
		}
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func padLeft(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}
