package ui

import (
	"math"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/AkatukiSora/gamelog-lines/internal/chart"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

const thresholdStep = 0.5

// thresholdBar holds the line inputs under the chart. Slider drags and
// keystrokes go to the session's transient path; releases, Enter and focus
// loss commit.
type thresholdBar struct {
	session *chart.Session

	slider  *widget.Slider
	entry   *commitEntry
	pill    *aggregatePill
	summary *widget.Label
	warn    fyne.CanvasObject
	best    *widget.Button

	// syncing suppresses input callbacks while the bar writes its own widgets
	syncing bool
	detach  func()
	root    fyne.CanvasObject
}

func newThresholdBar(session *chart.Session, surface *barChart, onSuggest func()) *thresholdBar {
	tb := &thresholdBar{session: session}

	tb.slider = widget.NewSlider(0, 1)
	tb.slider.Step = thresholdStep
	tb.slider.OnChanged = func(v float64) {
		if tb.syncing {
			return
		}
		if tb.session.OnTransientInput(v) {
			tb.setEntryText(formatLine(v))
		}
	}
	tb.slider.OnChangeEnded = func(v float64) {
		if tb.syncing {
			return
		}
		tb.session.OnCommit(v)
	}

	tb.entry = newCommitEntry()
	tb.entry.OnChanged = func(s string) {
		if tb.syncing {
			return
		}
		if tb.session.OnTransientText(s) {
			tb.setSliderValue(tb.session.Threshold().Effective())
		}
	}
	commit := func(s string) {
		if tb.syncing {
			return
		}
		if !tb.session.OnCommitText(s) {
			// invalid text snaps back to the committed line
			tb.sync()
		}
	}
	tb.entry.onCommit = commit
	tb.entry.OnSubmitted = commit

	tb.pill = newAggregatePill()
	if surface != nil {
		surface.attachPill(tb.pill)
	}

	tb.summary = widget.NewLabel("")
	warnIcon, warnOverlay := newHoverHint(lang.X("chart.low_sample", "Few games in this window"), HintSideRight)
	tb.warn = container.NewStack(container.NewCenter(warnIcon), warnOverlay)
	tb.warn.Hide()

	tb.best = widget.NewButtonWithIcon(lang.X("chart.best_line", "Best line"), theme.SearchIcon(), onSuggest)
	tb.best.Importance = widget.LowImportance

	tb.detach = session.AddListener(func(chart.Summary) { tb.sync() })

	lineLabel := widget.NewLabelWithStyle(lang.X("chart.line_label", "Line"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	inputs := container.NewHBox(lineLabel, container.NewGridWrap(fyne.NewSize(80, tb.entry.MinSize().Height), tb.entry), tb.best)
	status := container.NewHBox(tb.warn, tb.summary, tb.pill)
	tb.root = newSectionCard(container.NewBorder(nil, nil, inputs, status, tb.slider))
	tb.sync()
	return tb
}

func (tb *thresholdBar) CanvasObject() fyne.CanvasObject { return tb.root }

// sync mirrors the session's domain, committed line and summary into the
// widgets.
func (tb *thresholdBar) sync() {
	st := tb.session.Threshold()
	domain := tb.session.Domain()
	metric := tb.session.Metric()

	tb.syncing = true
	lo, hi := sliderRange(domain, metric, st.Effective())
	tb.slider.Min, tb.slider.Max = lo, hi
	tb.slider.SetValue(st.Effective())
	tb.slider.Refresh()
	// keep what the user is typing as long as it reads as the same value
	if v, err := strconv.ParseFloat(tb.entry.Text, 64); err != nil || v != st.Effective() {
		tb.entry.SetText(formatLine(st.Effective()))
	}
	tb.syncing = false

	sum := tb.session.Summary()
	if sum.SeriesLength == 0 {
		tb.summary.SetText(lang.X("chart.summary.empty", "No games"))
	} else {
		tb.summary.SetText(lang.X("chart.summary", "{{.Over}} of {{.Total}} over {{.Line}}", map[string]any{
			"Over":  sum.OverCount,
			"Total": sum.SeriesLength,
			"Line":  formatLine(sum.CommittedThreshold),
		}))
	}
	if isLowSample(metric.ID, sum.SeriesLength) {
		tb.warn.Show()
	} else {
		tb.warn.Hide()
	}
}

func (tb *thresholdBar) setEntryText(s string) {
	tb.syncing = true
	tb.entry.SetText(s)
	tb.syncing = false
}

func (tb *thresholdBar) setSliderValue(v float64) {
	tb.syncing = true
	if v < tb.slider.Min {
		tb.slider.Min = v
	}
	if v > tb.slider.Max {
		tb.slider.Max = v
	}
	tb.slider.SetValue(v)
	tb.syncing = false
}

func (tb *thresholdBar) Destroy() {
	if tb.detach != nil {
		tb.detach()
		tb.detach = nil
	}
}

// sliderRange widens the axis domain so the current line always fits.
func sliderRange(d *series.Domain, metric series.MetricDefinition, line float64) (float64, float64) {
	lo, hi := 0.0, 1.0
	if d != nil {
		lo, hi = d.Min, d.Max
	} else if metric.Class == series.ClassPercentage {
		hi = 100
	}
	lo = math.Min(lo, line)
	hi = math.Max(hi, line)
	if hi-lo < thresholdStep {
		hi = lo + thresholdStep
	}
	return math.Floor(lo/thresholdStep) * thresholdStep, math.Ceil(hi/thresholdStep) * thresholdStep
}

func formatLine(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
