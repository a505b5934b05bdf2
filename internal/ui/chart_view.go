package ui

import (
	"context"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/widget"

	"github.com/AkatukiSora/gamelog-lines/internal/application"
	"github.com/AkatukiSora/gamelog-lines/internal/chart"
	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

// chartTabView is the main tab: subject picker, filters, the bar chart and
// the line controls. It owns the chart session; everything here runs on
// the Fyne main thread and service calls are pushed to goroutines.
type chartTabView struct {
	tabRoot
	ctx     context.Context
	service application.AppService

	state   chartFilterState
	store   *gamelog.Store
	surface *barChart
	session *chart.Session
	bar     *thresholdBar

	subjects      []gamelog.Subject
	subjectID     string
	subjectSelect *widget.Select
	filterHolder  *fyne.Container
	rankHolder    *fyne.Container

	// loadGen drops async results that belong to an older selection
	loadGen uint64
}

type chartViewConfig struct {
	Debounce    time.Duration
	RetryDelay  time.Duration
	NarrowWidth float32
	Filter      series.FilterConfig
}

func newChartTabView(ctx context.Context, service application.AppService, cfg chartViewConfig) *chartTabView {
	v := &chartTabView{
		tabRoot: newTabRoot(),
		ctx:     ctx,
		service: service,
		store:   gamelog.NewStore(),
		surface: newBarChart(cfg.NarrowWidth),
	}
	v.state.Filter = cfg.Filter
	v.session = chart.NewSession(chart.SessionConfig{
		Store:      v.store,
		Surface:    v.surface,
		Scheduler:  newMainThreadScheduler(),
		Debounce:   cfg.Debounce,
		RetryDelay: cfg.RetryDelay,
		Filter:     cfg.Filter,
		Theme:      "dark",
	})
	v.state.Metric = v.session.Metric().ID
	v.state.Scope = v.session.Metric().Scope

	v.bar = newThresholdBar(v.session, v.surface, v.applyBestLine)

	v.subjectSelect = widget.NewSelect(nil, func(label string) {
		for _, s := range v.subjects {
			if subjectLabel(s) == label {
				v.selectSubject(s.ID)
				return
			}
		}
	})
	v.subjectSelect.PlaceHolder = lang.X("chart.subject.placeholder", "Select a player or team")
	v.filterHolder = container.NewMax()
	v.rankHolder = container.NewHBox()
	v.rebuildFilterBar()

	header := newSectionCard(container.NewBorder(nil, nil,
		widget.NewLabelWithStyle(lang.X("chart.subject.label", "Subject"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		v.rankHolder,
		v.subjectSelect,
	))
	chartCard := newSectionCard(v.surface)
	body := container.NewBorder(
		container.NewVBox(header, newSectionCard(container.NewHScroll(v.filterHolder))),
		v.bar.CanvasObject(),
		nil, nil,
		chartCard,
	)
	v.root.Objects = []fyne.CanvasObject{withFixedLowSampleLegend(body)}
	return v
}

func subjectLabel(s gamelog.Subject) string {
	name := s.Name
	if name == "" {
		name = s.ID
	}
	if s.TeamAbbr != "" && s.Kind == gamelog.SubjectPlayer {
		return name + " (" + s.TeamAbbr + ")"
	}
	return name
}

func (v *chartTabView) rebuildFilterBar() {
	bar := buildFilterBar(&v.state, v.onFilterChanged, v.onMetricChanged)
	v.filterHolder.Objects = []fyne.CanvasObject{bar}
	v.filterHolder.Refresh()
}

func (v *chartTabView) onFilterChanged() {
	v.session.SetFilter(v.state.Filter)
	v.service.Tracker().SetOverride(v.state.Filter.OpponentOverride != series.OpponentAll)
	v.refreshRank()
	v.bar.sync()
}

func (v *chartTabView) onMetricChanged() {
	v.session.SetMetric(v.state.Metric)
	v.suggestBestLine()
	v.refreshRank()
	v.bar.sync()
}

// reloadSubjects refreshes the subject list and selects the first subject
// when nothing is shown yet.
func (v *chartTabView) reloadSubjects() {
	go func() {
		subjects, err := v.service.Subjects(v.ctx)
		if err != nil {
			slog.Warn("list subjects failed", "error", err)
			return
		}
		fyne.Do(func() {
			v.subjects = subjects
			options := make([]string, len(subjects))
			for i, s := range subjects {
				options[i] = subjectLabel(s)
			}
			v.subjectSelect.Options = options
			v.subjectSelect.Refresh()
			if v.subjectID == "" && len(subjects) > 0 {
				v.subjectSelect.SetSelected(options[0])
			}
		})
	}()
}

func (v *chartTabView) selectSubject(id string) {
	if id == v.subjectID {
		return
	}
	v.loadGen++
	gen := v.loadGen
	go func() {
		subject, records, err := v.service.GameLog(v.ctx, id)
		if err != nil {
			slog.Warn("load game log failed", "subject", id, "error", err)
			return
		}
		fyne.Do(func() {
			if gen != v.loadGen {
				return
			}
			v.showSubject(subject, records)
		})
	}()
}

// showSubject swaps the chart to a new subject. Threshold edits do not carry
// over between subjects.
func (v *chartTabView) showSubject(subject gamelog.Subject, records []gamelog.Record) {
	v.subjectID = subject.ID
	fc := application.FilterContextFor(subject, records, time.Time{})
	v.session.SetSubject(subject, records, fc)

	def := v.session.Metric()
	v.state.Metric, v.state.Scope = def.ID, def.Scope
	v.rebuildFilterBar()

	v.trackUpcoming(subject.ID, records)
	v.suggestBestLine()
	v.refreshRank()
	v.bar.sync()
	slog.Debug("chart subject shown", "subject", subject.ID, "games", len(records))
}

func (v *chartTabView) trackUpcoming(subjectID string, records []gamelog.Record) {
	if next, ok := application.UpcomingGame(records); ok {
		v.service.Tracker().Display(subjectID, next.GameID)
	}
}

// refresh reloads the current subject after an import. The threshold state
// is kept; only the store generation moves.
func (v *chartTabView) refresh() {
	v.reloadSubjects()
	id := v.subjectID
	if id == "" {
		return
	}
	gen := v.loadGen
	go func() {
		subject, records, err := v.service.GameLog(v.ctx, id)
		if err != nil {
			slog.Warn("reload game log failed", "subject", id, "error", err)
			return
		}
		fyne.Do(func() {
			if gen != v.loadGen || subject.ID != v.subjectID {
				return
			}
			v.store.Replace(subject, records)
			v.session.Rebuild()
			v.bar.sync()
		})
	}()
}

// followOpponent applies a tracker switch to the next opponent.
func (v *chartTabView) followOpponent(sw application.OpponentSwitch) {
	if sw.SubjectID != v.subjectID {
		return
	}
	fc := v.session.FilterContext()
	fc.CurrentOpponentID = sw.OpponentID
	fc.CurrentOpponentAbbr = sw.OpponentAbbr
	v.session.SetFilterContext(fc)
	v.service.Tracker().Display(sw.SubjectID, sw.NextGameID)
	v.refreshRank()
	v.bar.sync()
}

// suggestBestLine seeds the line from the best known line unless the user
// already moved it.
func (v *chartTabView) suggestBestLine() {
	v.lookupBestLine(func(best float64) { v.session.OnAutoSuggest(best) })
}

// applyBestLine is the explicit button: it always commits the best line.
func (v *chartTabView) applyBestLine() {
	v.lookupBestLine(func(best float64) { v.session.OnCommit(best) })
}

func (v *chartTabView) lookupBestLine(apply func(float64)) {
	id, metric, gen := v.subjectID, v.state.Metric, v.loadGen
	if id == "" {
		return
	}
	go func() {
		best, _ := v.service.BestLine(v.ctx, id, metric)
		fyne.Do(func() {
			if gen != v.loadGen || metric != v.session.Metric().ID {
				return
			}
			apply(best)
			v.bar.sync()
		})
	}()
}

func (v *chartTabView) currentOpponent() string {
	if o := v.state.Filter.OpponentOverride; o != "" && o != series.OpponentAll {
		return o
	}
	return v.session.FilterContext().CurrentOpponentAbbr
}

func (v *chartTabView) refreshRank() {
	opp := v.currentOpponent()
	if opp == "" || v.subjectID == "" {
		v.rankHolder.Objects = []fyne.CanvasObject{newSubtleText(lang.X("chart.rank.none", "No upcoming opponent"))}
		v.rankHolder.Refresh()
		return
	}
	metric := leagueMetricFor(v.state.Metric)
	gen := v.loadGen
	go func() {
		r, err := v.service.OpponentRank(v.ctx, opp, metric)
		if err != nil {
			slog.Warn("opponent rank failed", "opponent", opp, "metric", metric, "error", err)
			return
		}
		fyne.Do(func() {
			if gen != v.loadGen {
				return
			}
			text := lang.X("chart.rank", "vs {{.Team}}: #{{.Rank}} of {{.Size}} in {{.Metric}}", map[string]any{
				"Team":   r.Team,
				"Rank":   r.Rank,
				"Size":   r.Size,
				"Metric": leagueMetricLabel(r.Metric),
			})
			v.rankHolder.Objects = []fyne.CanvasObject{newMetricChip(text, rankTierColor(r.Tier))}
			v.rankHolder.Refresh()
		})
	}()
}

// unmount detaches the session; nothing renders afterwards.
func (v *chartTabView) unmount() {
	v.bar.Destroy()
	v.session.Unmount()
}
