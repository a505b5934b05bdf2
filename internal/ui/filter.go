package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/widget"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

// chartFilterState is the chart tab's filter and metric selection.
type chartFilterState struct {
	Filter series.FilterConfig
	Metric series.MetricID
	Scope  series.MetricScope
}

// commitEntry is a widget.Entry that fires onCommit when the user confirms
// the value with Enter or by moving focus away. Keystrokes still reach
// OnChanged.
type commitEntry struct {
	widget.Entry
	onCommit func(string)
}

func newCommitEntry() *commitEntry {
	e := &commitEntry{}
	e.ExtendBaseWidget(e)
	return e
}

// FocusLost fires onCommit when keyboard focus leaves the entry.
func (e *commitEntry) FocusLost() {
	e.Entry.FocusLost()
	if e.onCommit != nil {
		e.onCommit(e.Text)
	}
}

var timeframeOrder = []series.Timeframe{
	series.TimeframeLastN,
	series.TimeframeH2H,
	series.TimeframeThisSeason,
	series.TimeframeLastSeason,
	series.TimeframeAllTime,
}

// timeframeLabel returns a short display label for a timeframe.
func timeframeLabel(tf series.Timeframe) string {
	switch tf {
	case series.TimeframeLastN:
		return lang.X("filter.timeframe.last_n", "Last N Games")
	case series.TimeframeH2H:
		return lang.X("filter.timeframe.h2h", "Head to Head")
	case series.TimeframeThisSeason:
		return lang.X("filter.timeframe.this_season", "This Season")
	case series.TimeframeLastSeason:
		return lang.X("filter.timeframe.last_season", "Last Season")
	default:
		return lang.X("filter.timeframe.all_time", "All Time")
	}
}

func homeAwayLabel(h series.HomeAway) string {
	switch h {
	case series.HomeAwayHome:
		return lang.X("filter.venue.home", "Home")
	case series.HomeAwayAway:
		return lang.X("filter.venue.away", "Away")
	default:
		return lang.X("filter.venue.all", "Home & Away")
	}
}

// metricOptionLabel prefixes the metric with its category so the select
// groups related metrics together.
func metricOptionLabel(def series.MetricDefinition) string {
	return metricCategoryLabel(metricCatalogEntryForID(def.ID).Category) + " · " + def.Label
}

func opponentOptions() []string {
	teams := gamelog.Teams()
	out := make([]string, 0, len(teams)+1)
	out = append(out, series.OpponentAll)
	for _, t := range teams {
		out = append(out, t.Abbr)
	}
	return out
}

// buildFilterBar constructs the chart filter row. onChange fires after the
// filter changed, onMetric after the metric changed.
func buildFilterBar(state *chartFilterState, onChange func(), onMetric func()) fyne.CanvasObject {
	if state == nil {
		return container.NewHBox()
	}

	// Option labels do NOT embed N so the select stays stable while the
	// user types a new value.
	tfOptions := make([]string, len(timeframeOrder))
	for i, tf := range timeframeOrder {
		tfOptions[i] = timeframeLabel(tf)
	}
	tfSelect := widget.NewSelect(tfOptions, nil)
	tfSelect.Selected = timeframeLabel(state.Filter.Timeframe)

	nLabel := widget.NewLabel(lang.X("filter.last_n.games_label", "Games:"))
	nEntry := newCommitEntry()
	nEntry.SetText(strconv.Itoa(state.Filter.N))
	commitN := func(s string) {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			nEntry.SetText(strconv.Itoa(state.Filter.N)) // reset to last valid
			return
		}
		nEntry.SetText(strconv.Itoa(v)) // normalize (e.g. strip leading zeros)
		if v == state.Filter.N {
			return
		}
		state.Filter.N = v
		onChange()
	}
	nEntry.onCommit = commitN
	nEntry.OnSubmitted = commitN
	nBox := container.NewHBox(nLabel, container.NewGridWrap(fyne.NewSize(64, nEntry.MinSize().Height), nEntry))
	if state.Filter.Timeframe != series.TimeframeLastN {
		nBox.Hide()
	}

	oppSelect := widget.NewSelect(opponentOptions(), nil)
	oppSelect.Selected = state.Filter.OpponentOverride
	if oppSelect.Selected == "" {
		oppSelect.Selected = series.OpponentAll
	}

	venueOrder := []series.HomeAway{series.HomeAwayAll, series.HomeAwayHome, series.HomeAwayAway}
	venueOptions := make([]string, len(venueOrder))
	for i, h := range venueOrder {
		venueOptions[i] = homeAwayLabel(h)
	}
	venueSelect := widget.NewSelect(venueOptions, nil)
	venueSelect.Selected = homeAwayLabel(state.Filter.HomeAway)

	metrics := series.Metrics(state.Scope)
	metricOptions := make([]string, len(metrics))
	metricSelect := widget.NewSelect(nil, nil)
	for i, def := range metrics {
		metricOptions[i] = metricOptionLabel(def)
		if def.ID == state.Metric {
			metricSelect.Selected = metricOptions[i]
		}
	}
	metricSelect.Options = metricOptions

	// Wire up handlers after every widget exists so they can refresh each other.
	tfSelect.OnChanged = func(selected string) {
		for i, opt := range tfOptions {
			if opt == selected {
				state.Filter.Timeframe = timeframeOrder[i]
				break
			}
		}
		if state.Filter.Timeframe == series.TimeframeLastN {
			nBox.Show()
		} else {
			nBox.Hide()
		}
		onChange()
	}
	oppSelect.OnChanged = func(selected string) {
		state.Filter.OpponentOverride = selected
		onChange()
	}
	venueSelect.OnChanged = func(selected string) {
		for i, opt := range venueOptions {
			if opt == selected {
				state.Filter.HomeAway = venueOrder[i]
				break
			}
		}
		onChange()
	}
	metricSelect.OnChanged = func(selected string) {
		for i, opt := range metricOptions {
			if opt == selected {
				state.Metric = metrics[i].ID
				break
			}
		}
		if onMetric != nil {
			onMetric()
		}
	}

	return container.NewHBox(
		widget.NewLabel(lang.X("filter.metric.label", "Metric")), metricSelect,
		newSectionDividerVertical(),
		widget.NewLabel(lang.X("filter.timeframe.label", "Period")), tfSelect, nBox,
		newSectionDividerVertical(),
		widget.NewLabel(lang.X("filter.opponent.label", "Opponent")), oppSelect,
		venueSelect,
	)
}
