package series

import (
	"testing"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
)

func TestProjectOnePlayerMetrics(t *testing.T) {
	t.Parallel()

	rec := gamelog.Record{Stats: map[string]float64{
		"pts": 25, "reb": 10, "ast": 7, "stl": 2, "blk": 1, "fg_pct": 0.5,
	}}
	tests := []struct {
		id   MetricID
		want float64
	}{
		{MetricPoints, 25},
		{MetricPRA, 42},
		{MetricPR, 35},
		{MetricPA, 32},
		{MetricRA, 17},
		{MetricStocks, 3},
		{MetricFGPct, 50},
		{MetricThrees, 0},
		{MetricID("bogus"), 0},
	}
	for _, tt := range tests {
		if got := ProjectOne(rec, tt.id); got != tt.want {
			t.Fatalf("ProjectOne(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestProjectOneTeamOutcomes(t *testing.T) {
	t.Parallel()

	rec := gamelog.Record{
		Periods: []gamelog.PeriodScore{
			{Period: 1, TeamScore: 30, OpponentScore: 25},
			{Period: 2, TeamScore: 20, OpponentScore: 28},
			{Period: 3, TeamScore: 27, OpponentScore: 27},
			{Period: 4, TeamScore: 33, OpponentScore: 22},
		},
	}
	tests := []struct {
		id   MetricID
		want float64
	}{
		{MetricTeamPoints, 110},
		{MetricOppPoints, 102},
		{MetricTotalPoints, 212},
		{MetricPointDiff, 8},
		{MetricSpread, -8},
		{MetricWin, 1},
		{MetricQ1Win, 1},
		{MetricQ2Win, 0},
		{MetricQ3Win, 0},
		{MetricQ4Win, 1},
		{MetricFirstHalf, 0},
	}
	for _, tt := range tests {
		if got := ProjectOne(rec, tt.id); got != tt.want {
			t.Fatalf("ProjectOne(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}

	boxed := gamelog.Record{Stats: map[string]float64{"pts": 99, "opp_pts": 101}}
	if got := ProjectOne(boxed, MetricWin); got != 0 {
		t.Fatalf("win from box totals = %v, want 0", got)
	}
}

func TestProjectKeepsOrderAndLabels(t *testing.T) {
	t.Parallel()

	games := []Game{
		{Record: gamelog.Record{GameID: "a", Stats: map[string]float64{"pts": 10}}, TickLabel: "BOS", OpponentAbbr: "BOS"},
		{Record: gamelog.Record{GameID: "b", Stats: map[string]float64{"pts": 20}}, TickLabel: Placeholder},
	}
	points := Project(games, MetricPoints)
	if len(points) != 2 || points[0].GameID != "a" || points[1].TickLabel != Placeholder {
		t.Fatalf("points = %+v", points)
	}
	if vals := Values(points); vals[0] != 10 || vals[1] != 20 {
		t.Fatalf("values = %v, want [10 20]", vals)
	}
}

func TestMetricRegistryScopes(t *testing.T) {
	t.Parallel()

	for _, def := range Metrics(ScopeTeam) {
		if def.Scope != ScopeTeam {
			t.Fatalf("team metric %s has scope %v", def.ID, def.Scope)
		}
	}
	if !LowerIsBetter(MetricSpread) {
		t.Fatalf("spread should be lower-is-better")
	}
	if LowerIsBetter(MetricPoints) {
		t.Fatalf("points should be higher-is-better")
	}
	if ClassOf("bogus") != ClassCount {
		t.Fatalf("unknown metric class = %v, want count", ClassOf("bogus"))
	}
}
