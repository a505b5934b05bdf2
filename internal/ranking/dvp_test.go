package ranking

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
)

const bosID = 1610612738

type fakeBoxes map[int][]gamelog.BoxScore

func (f fakeBoxes) BoxScores(_ context.Context, _ int, season int) ([]gamelog.BoxScore, error) {
	return f[season], nil
}

type fakeDepth map[string]DepthChart

func (f fakeDepth) DepthChart(_ context.Context, team string) (DepthChart, error) {
	return f[team], nil
}

func row(team, name, start string, stats map[string]float64) gamelog.BoxRow {
	return gamelog.BoxRow{PlayerName: name, TeamAbbr: team, StartPosition: start, Stats: stats}
}

func box(id string, day int, rows ...gamelog.BoxRow) gamelog.BoxScore {
	return gamelog.BoxScore{GameID: id, Date: time.Date(2025, time.November, day, 0, 0, 0, 0, time.UTC), Rows: rows}
}

func TestPositionHeuristic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		start string
		stats map[string]float64
		want  Position
	}{
		{"G", map[string]float64{"ast": 5}, PG},
		{"G", map[string]float64{"tov": 4}, PG},
		{"G", map[string]float64{"ast": 4, "tov": 3}, SG},
		{"F", map[string]float64{"reb": 8}, PF},
		{"F", map[string]float64{"blk": 2}, PF},
		{"F", map[string]float64{"reb": 7}, SF},
		{"C", map[string]float64{}, C},
		{"", map[string]float64{"reb": 7}, PF},
		{"", map[string]float64{"reb": 3}, C},
	}
	for _, tt := range tests {
		got := positionFor(gamelog.BoxRow{StartPosition: tt.start, Stats: tt.stats}, nil)
		if got != tt.want {
			t.Fatalf("positionFor(%q, %v) = %s, want %s", tt.start, tt.stats, got, tt.want)
		}
	}
}

func TestComputeDvPUsesDepthChartAndSkipsZeros(t *testing.T) {
	t.Parallel()

	boxes := fakeBoxes{2025: {
		box("g1", 1,
			row("BOS", "Jayson Tatum", "F", map[string]float64{"pts": 30}),
			row("LAL", "Luka Doncic", "G", map[string]float64{"pts": 28, "ast": 9}),
			row("LAL", "Austin Reaves", "G", map[string]float64{"pts": 12, "ast": 2}),
			row("LAL", "Bench Guy", "", map[string]float64{"pts": 0, "reb": 9}),
		),
		box("g2", 3,
			row("BOS", "Jayson Tatum", "F", map[string]float64{"pts": 25}),
			row("DEN", "Nikola Jokic", "C", map[string]float64{"pts": 20}),
			row("DEN", "Michael Porter Jr.", "F", map[string]float64{"pts": 10, "reb": 4}),
		),
	}}
	depth := fakeDepth{"DEN": NewDepthChart(map[string][]string{"PF": {"Michael Porter"}})}

	res, err := ComputeDvP(context.Background(), boxes, depth, DvPRequest{TeamID: bosID, Metric: "pts", Games: 10, SeasonStartYear: 2025})
	if err != nil {
		t.Fatalf("ComputeDvP: %v", err)
	}
	if res.SampleGames != 2 {
		t.Fatalf("SampleGames = %d, want 2", res.SampleGames)
	}
	want := map[Position]float64{PG: 28, SG: 12, SF: 0, PF: 10, C: 20}
	for pos, v := range want {
		if res.Totals[pos] != v {
			t.Fatalf("Totals[%s] = %v, want %v", pos, res.Totals[pos], v)
		}
		if math.Abs(res.PerGame[pos]-v/2) > 1e-9 {
			t.Fatalf("PerGame[%s] = %v, want %v", pos, res.PerGame[pos], v/2)
		}
	}
	if res.Season != "2025-26" {
		t.Fatalf("Season = %q, want 2025-26", res.Season)
	}
}

func TestComputeDvPCapsNewestGames(t *testing.T) {
	t.Parallel()

	boxes := fakeBoxes{2025: {
		box("old", 1, row("BOS", "A", "G", nil), row("MIA", "X", "C", map[string]float64{"reb": 100})),
		box("new", 9, row("BOS", "A", "G", nil), row("MIA", "X", "C", map[string]float64{"reb": 5})),
	}}
	res, err := ComputeDvP(context.Background(), boxes, nil, DvPRequest{TeamID: bosID, Metric: "reb", Games: 1, SeasonStartYear: 2025})
	if err != nil {
		t.Fatalf("ComputeDvP: %v", err)
	}
	if res.SampleGames != 1 || res.Totals[C] != 5 {
		t.Fatalf("got games=%d C=%v, want 1 and 5", res.SampleGames, res.Totals[C])
	}
}

func TestComputeDvPFallsBackToPreviousSeason(t *testing.T) {
	t.Parallel()

	boxes := fakeBoxes{2024: {
		box("g", 2, row("BOS", "A", "G", nil), row("MIA", "X", "C", map[string]float64{"blk": 3})),
	}}
	res, err := ComputeDvP(context.Background(), boxes, nil, DvPRequest{TeamID: bosID, Metric: "blk", SeasonStartYear: 2025})
	if err != nil {
		t.Fatalf("ComputeDvP: %v", err)
	}
	if res.Season != "2024-25" || res.SampleGames != 1 {
		t.Fatalf("got season=%q games=%d, want 2024-25 and 1", res.Season, res.SampleGames)
	}
}

func TestComputeDvPUnknownTeam(t *testing.T) {
	t.Parallel()

	if _, err := ComputeDvP(context.Background(), fakeBoxes{}, nil, DvPRequest{TeamID: 42}); err == nil {
		t.Fatalf("expected error for unknown team")
	}
}

func TestClampGames(t *testing.T) {
	t.Parallel()

	for in, want := range map[int]int{-3: 1, 0: 1, 7: 7, 50: 50, 500: 50} {
		if got := ClampGames(in); got != want {
			t.Fatalf("ClampGames(%d) = %d, want %d", in, got, want)
		}
	}
}
