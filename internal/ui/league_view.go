package ui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/widget"

	"github.com/AkatukiSora/gamelog-lines/internal/application"
	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/ranking"
)

func rankTierColor(t ranking.Tier) color.Color {
	switch t {
	case ranking.TierBest:
		return uiSuccessAccent
	case ranking.TierGood:
		return uiInfoAccent
	case ranking.TierMid:
		return uiNeutralChipAccent
	case ranking.TierPoor:
		return uiWarningColor
	default:
		return uiDangerAccent
	}
}

var dvpMetrics = []string{"pts", "reb", "ast", "fg3m", "stl", "blk"}

// leagueTabView shows the league reference table for one metric and the
// defense-vs-position breakdown for one team.
type leagueTabView struct {
	tabRoot
	ctx     context.Context
	service application.AppService

	metric    string
	dvpTeam   gamelog.Team
	dvpMetric string
	dvpGames  int

	table     *ranking.LeagueTable
	dvp       *ranking.DvPResult
	tableGen  uint64
	dvpGen    uint64
	// holders keep their scroll offset across re-renders
	rankHolder *fyne.Container
	dvpHolder  *fyne.Container
}

func newLeagueTabView(ctx context.Context, service application.AppService) *leagueTabView {
	teams := gamelog.Teams()
	v := &leagueTabView{
		tabRoot:   newTabRoot(),
		ctx:       ctx,
		service:   service,
		metric:    ranking.MetricPointsAllowed,
		dvpMetric: dvpMetrics[0],
		dvpGames:  ranking.DefaultDvPGames,
		rankHolder: container.NewMax(),
		dvpHolder:  container.NewMax(),
	}
	if len(teams) > 0 {
		v.dvpTeam = teams[0]
	}
	v.build()
	return v
}

func (v *leagueTabView) build() {
	rankCard := newSectionCard(container.NewBorder(
		container.NewVBox(widget.NewLabelWithStyle(lang.X("league.table.title", "League Table"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), newSectionDivider()),
		nil, nil, nil,
		v.rankHolder,
	))
	dvpCard := newSectionCard(container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle(lang.X("league.dvp.title", "Defense vs Position"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			v.buildDvPControls(),
			newSectionDivider(),
		),
		nil, nil, nil,
		v.dvpHolder,
	))
	split := container.NewHSplit(rankCard, dvpCard)
	split.Offset = 0.5
	v.root.Objects = []fyne.CanvasObject{container.NewPadded(split)}
	v.root.Refresh()
}

func (v *leagueTabView) buildDvPControls() fyne.CanvasObject {
	teams := gamelog.Teams()
	teamOptions := make([]string, len(teams))
	for i, t := range teams {
		teamOptions[i] = t.Abbr
	}
	teamSelect := widget.NewSelect(teamOptions, func(abbr string) {
		for _, t := range teams {
			if t.Abbr == abbr {
				v.dvpTeam = t
			}
		}
		v.loadDvP()
	})
	teamSelect.Selected = v.dvpTeam.Abbr

	metricSelect := widget.NewSelect(dvpMetrics, func(m string) {
		v.dvpMetric = m
		v.loadDvP()
	})
	metricSelect.Selected = v.dvpMetric

	gamesEntry := newCommitEntry()
	gamesEntry.SetText(strconv.Itoa(v.dvpGames))
	commit := func(s string) {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			gamesEntry.SetText(strconv.Itoa(v.dvpGames))
			return
		}
		n = ranking.ClampGames(n)
		gamesEntry.SetText(strconv.Itoa(n))
		if n == v.dvpGames {
			return
		}
		v.dvpGames = n
		v.loadDvP()
	}
	gamesEntry.onCommit = commit
	gamesEntry.OnSubmitted = commit

	return container.NewHBox(
		widget.NewLabel(lang.X("league.dvp.team", "Team")), teamSelect,
		widget.NewLabel(lang.X("league.dvp.metric", "Stat")), metricSelect,
		widget.NewLabel(lang.X("league.dvp.games", "Games")),
		container.NewGridWrap(fyne.NewSize(64, gamesEntry.MinSize().Height), gamesEntry),
	)
}

// refresh reloads both panels, e.g. after an import.
func (v *leagueTabView) refresh() {
	v.loadTable()
	v.loadDvP()
}

func (v *leagueTabView) loadTable() {
	v.tableGen++
	gen := v.tableGen
	go func() {
		table, err := v.service.LeagueTable(v.ctx)
		if err != nil {
			slog.Warn("load league table failed", "error", err)
		}
		fyne.Do(func() {
			if gen != v.tableGen {
				return
			}
			v.table = table
			v.renderTable()
		})
	}()
}

func (v *leagueTabView) renderTable() {
	if v.table == nil {
		replaceViewContentPreservingLayout(v.rankHolder, newCenteredEmptyState(lang.X("league.table.empty", "No league table imported yet.")))
		return
	}

	metrics := v.table.Metrics()
	labels := make([]string, len(metrics))
	for i, m := range metrics {
		labels[i] = leagueMetricLabel(m)
	}
	metricSelect := widget.NewSelect(labels, nil)
	for i, m := range metrics {
		if m == v.metric {
			metricSelect.Selected = labels[i]
		}
	}
	metricSelect.OnChanged = func(label string) {
		for i, l := range labels {
			if l == label {
				v.metric = metrics[i]
			}
		}
		v.renderTable()
	}

	rows := []fyne.CanvasObject{
		container.NewHBox(metricSelect, newSubtleText(lang.X("league.table.season", "Season {{.Season}}", map[string]any{"Season": gamelog.SeasonLabel(v.table.Season)}))),
	}
	inverted := ranking.IsOpponentFacing(v.metric)
	for _, e := range ranking.OrderedRanks(v.table, v.metric, ranking.PolarityFor(v.metric)) {
		tier := ranking.Classify(e.Rank, inverted)
		rank := newMetricChip(fmt.Sprintf("#%d", e.Rank), rankTierColor(tier))
		name := widget.NewLabel(e.Team)
		value := widget.NewLabel(strconv.FormatFloat(e.Value, 'f', 1, 64))
		value.Alignment = fyne.TextAlignTrailing
		rows = append(rows, container.NewBorder(nil, nil, container.NewHBox(rank, name), value))
	}
	replaceViewContentPreservingLayout(v.rankHolder, container.NewVScroll(container.NewVBox(rows...)))
}

func (v *leagueTabView) loadDvP() {
	if v.dvpTeam.ID == 0 {
		return
	}
	v.dvpGen++
	gen := v.dvpGen
	team, metric, games := v.dvpTeam, v.dvpMetric, v.dvpGames
	go func() {
		res, err := v.service.DvP(v.ctx, team.ID, metric, games)
		fyne.Do(func() {
			if gen != v.dvpGen {
				return
			}
			if err != nil {
				slog.Warn("dvp failed", "team", team.Abbr, "metric", metric, "error", err)
				v.dvp = nil
			} else {
				v.dvp = &res
			}
			v.renderDvP()
		})
	}()
}

func (v *leagueTabView) renderDvP() {
	if v.dvp == nil || v.dvp.SampleGames == 0 {
		replaceViewContentPreservingLayout(v.dvpHolder, newCenteredEmptyState(lang.X("league.dvp.empty", "No box scores for this team yet.")))
		return
	}
	res := v.dvp
	rows := []fyne.CanvasObject{
		newSubtleText(lang.X("league.dvp.sample", "{{.Team}} {{.Season}} · last {{.Games}} games", map[string]any{
			"Team": res.TeamAbbr, "Season": res.Season, "Games": res.SampleGames,
		})),
	}
	for _, pos := range ranking.Positions {
		label := widget.NewLabelWithStyle(string(pos), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
		value := widget.NewLabel(lang.X("league.dvp.per_game", "{{.Value}} per game", map[string]any{
			"Value": strconv.FormatFloat(res.PerGame[pos], 'f', 1, 64),
		}))
		value.Alignment = fyne.TextAlignTrailing
		rows = append(rows, container.NewBorder(nil, nil, label, value))
	}
	replaceViewContentPreservingLayout(v.dvpHolder, container.NewVScroll(container.NewVBox(rows...)))
}
