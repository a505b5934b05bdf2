package main

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/ranking"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

var testEnd = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func TestPlayerExportRoundTrips(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	teams := gamelog.Teams()
	f := playerExport(0, teams[0], teams, 12, testEnd, rng)

	dir := t.TempDir()
	if err := writeExport(dir, f.Subject.ID, f); err != nil {
		t.Fatalf("writeExport: %v", err)
	}
	got, err := gamelog.ReadFile(filepath.Join(dir, f.Subject.ID+".gamelog.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Subject.ID != "player-001" || got.Subject.Kind != gamelog.SubjectPlayer {
		t.Fatalf("subject = %+v", got.Subject)
	}
	if len(got.Games) != 12 {
		t.Fatalf("games = %d, want 12", len(got.Games))
	}
	next, ok := func() (gamelog.Record, bool) {
		for _, r := range got.Games {
			if r.Status == gamelog.StatusScheduled {
				return r, true
			}
		}
		return gamelog.Record{}, false
	}()
	if !ok || !next.Date.Equal(testEnd) || next.Stats != nil {
		t.Fatalf("scheduled game = %+v, ok=%v", next, ok)
	}
	for _, r := range got.Games {
		if r.Status != gamelog.StatusFinal {
			continue
		}
		if r.OpponentAbbr == r.TeamAbbr || r.Home == nil {
			t.Fatalf("game %s: opponent %s team %s home %v", r.GameID, r.OpponentAbbr, r.TeamAbbr, r.Home)
		}
		if pts, ok := r.Stat("pts"); !ok || pts < 0 {
			t.Fatalf("game %s pts = %v, %v", r.GameID, pts, ok)
		}
	}
	if len(got.Lines) != 4*len(bookmakers) {
		t.Fatalf("lines = %d, want %d", len(got.Lines), 4*len(bookmakers))
	}
	for _, l := range got.Lines {
		if frac := l.Value - float64(int(l.Value)); frac != 0.5 && frac != -0.5 {
			t.Fatalf("line %s/%s = %v, want a half point", l.Metric, l.Bookmaker, l.Value)
		}
	}
}

func TestTeamExportCarriesBoxScoresAndDepthCharts(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(11))
	teams := gamelog.Teams()
	f := teamExport(teams[3], teams, 8, testEnd, rng)

	if f.Subject.Kind != gamelog.SubjectTeam {
		t.Fatalf("kind = %v, want team", f.Subject.Kind)
	}
	if len(f.BoxScores) != 7 {
		t.Fatalf("box scores = %d, want 7 final games", len(f.BoxScores))
	}
	for _, box := range f.BoxScores {
		if len(box.Rows) != 2*len(starterSlots) {
			t.Fatalf("box %s rows = %d", box.GameID, len(box.Rows))
		}
	}
	for _, r := range f.Games {
		if r.Status != gamelog.StatusFinal {
			continue
		}
		team, opp := 0, 0
		for _, p := range r.Periods {
			team += p.TeamScore
			opp += p.OpponentScore
		}
		if team == opp || float64(team) != r.Stats["pts"] || float64(opp) != r.Stats["opp_pts"] {
			t.Fatalf("game %s score %d-%d, stats %v", r.GameID, team, opp, r.Stats)
		}
		if chart, ok := f.DepthCharts[r.OpponentAbbr]; !ok || len(chart["PG"]) != 1 {
			t.Fatalf("depth chart for %s = %v", r.OpponentAbbr, chart)
		}
	}
}

func TestLeagueFileCoversRankingMetrics(t *testing.T) {
	t.Parallel()

	teams := gamelog.Teams()
	lf := leagueFile(teams, 2024, rand.New(rand.NewSource(3)))
	table := ranking.FromFile(lf)
	if table.Size() != len(teams) {
		t.Fatalf("table size = %d, want %d", table.Size(), len(teams))
	}
	for _, m := range []string{ranking.MetricPointsAllowed, ranking.MetricDefRating, ranking.MetricPace} {
		if r := ranking.Rank(table, teams[0].Abbr, m, ranking.PolarityFor(m)); r < 1 || r > len(teams) {
			t.Fatalf("rank %s = %d", m, r)
		}
	}
}

func TestStatLineIsConsistent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(5))
	p := randomProfile(rng)
	for i := 0; i < 200; i++ {
		st := statLine(p, rng)
		if st["min"] == 0 {
			continue
		}
		if st["fg3m"] > st[string(series.MetricPoints)] {
			t.Fatalf("threes %v exceed points %v", st["fg3m"], st["pts"])
		}
		if pct, ok := st["fg3_pct"]; ok && (pct < 0 || pct > 100) {
			t.Fatalf("fg3_pct = %v", pct)
		}
	}
}
