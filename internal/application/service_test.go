package application

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/persistence"
	"github.com/AkatukiSora/gamelog-lines/internal/ranking"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

var tatum = gamelog.Subject{ID: "p1", Kind: gamelog.SubjectPlayer, Name: "Jayson Tatum", TeamID: 1610612738, TeamAbbr: "BOS"}

func day(d int) time.Time {
	return time.Date(2025, time.November, d, 0, 0, 0, 0, time.UTC)
}

func game(id string, d int, opp string, status gamelog.GameStatus, pts float64) gamelog.Record {
	r := gamelog.Record{GameID: id, Date: day(d), TeamAbbr: "BOS", OpponentAbbr: opp, Status: status}
	if status == gamelog.StatusFinal {
		r.Minutes = 35
		r.Stats = map[string]float64{"pts": pts}
	}
	return r
}

func writeExport(t *testing.T, path string, f *gamelog.File) {
	t.Helper()
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create export: %v", err)
	}
	if err := gamelog.Encode(out, f); err != nil {
		_ = out.Close()
		t.Fatalf("encode export: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close export: %v", err)
	}
}

func TestImportDirImportsEachFileOnce(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	oldPath := filepath.Join(tmp, "old.gamelog.json")
	newPath := filepath.Join(tmp, "new.gamelog.json")
	writeExport(t, oldPath, &gamelog.File{Subject: tatum, Games: []gamelog.Record{
		game("g1", 1, "LAL", gamelog.StatusScheduled, 0),
	}})
	writeExport(t, newPath, &gamelog.File{Subject: tatum, Games: []gamelog.Record{
		game("g1", 1, "LAL", gamelog.StatusFinal, 30),
		game("g2", 3, "MIA", gamelog.StatusFinal, 22),
	}})
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	svc := NewService(Config{Repo: persistence.NewMemoryRepository()})
	ctx := context.Background()

	sum, err := svc.ImportDir(ctx, tmp, nil)
	if err != nil {
		t.Fatalf("import dir: %v", err)
	}
	if sum.Imported != 2 || sum.Skipped != 0 || sum.Games != 3 {
		t.Fatalf("summary = %+v, want 2 imported, 0 skipped, 3 games", sum)
	}

	_, records, err := svc.GameLog(ctx, "p1")
	if err != nil {
		t.Fatalf("game log: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("game count = %d, want 2", len(records))
	}
	if records[1].GameID != "g1" || records[1].Status != gamelog.StatusFinal {
		t.Fatalf("g1 = %+v, want the newer export's final row", records[1])
	}

	sum, err = svc.ImportDir(ctx, tmp, nil)
	if err != nil {
		t.Fatalf("second import dir: %v", err)
	}
	if sum.Imported != 0 || sum.Skipped != 2 {
		t.Fatalf("second summary = %+v, want everything skipped", sum)
	}
}

func TestImportDirSkipsUndecodableFiles(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	writeExport(t, filepath.Join(tmp, "good.gamelog.json"), &gamelog.File{Subject: tatum, Games: []gamelog.Record{
		game("g1", 1, "LAL", gamelog.StatusFinal, 30),
	}})
	if err := os.WriteFile(filepath.Join(tmp, "bad.gamelog.json"), []byte("not json"), 0o600); err != nil {
		t.Fatalf("write bad export: %v", err)
	}

	var progress []ImportProgress
	svc := NewService(Config{Repo: persistence.NewMemoryRepository()})
	sum, err := svc.ImportDir(context.Background(), tmp, func(p ImportProgress) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("import dir: %v", err)
	}
	if sum.Imported != 1 {
		t.Fatalf("imported = %d, want 1", sum.Imported)
	}
	if len(progress) != 2 || progress[1].Current != 2 || progress[1].Total != 2 {
		t.Fatalf("progress = %+v, want two steps of 2", progress)
	}
}

func TestImportDirParallelManyFiles(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	const files = 9
	for i := 0; i < files; i++ {
		subj := gamelog.Subject{ID: "p" + string(rune('a'+i)), Kind: gamelog.SubjectPlayer, Name: "Player", TeamAbbr: "BOS"}
		writeExport(t, filepath.Join(tmp, subj.ID+".gamelog.json"), &gamelog.File{Subject: subj, Games: []gamelog.Record{
			game("g1", 1, "LAL", gamelog.StatusFinal, float64(i)),
		}})
	}

	svc := NewService(Config{Repo: persistence.NewMemoryRepository()})
	sum, err := svc.ImportDir(context.Background(), tmp, nil)
	if err != nil {
		t.Fatalf("import dir: %v", err)
	}
	if sum.Imported != files {
		t.Fatalf("imported = %d, want %d", sum.Imported, files)
	}
	subjects, err := svc.Subjects(context.Background())
	if err != nil {
		t.Fatalf("subjects: %v", err)
	}
	if len(subjects) != files {
		t.Fatalf("subjects = %d, want %d", len(subjects), files)
	}
}

func TestImportFileRefreshesGameLog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "p1.gamelog.json")
	writeExport(t, path, &gamelog.File{Subject: tatum, Games: []gamelog.Record{
		game("g1", 1, "LAL", gamelog.StatusFinal, 30),
	}})

	var imported []ImportResult
	svc := NewService(Config{
		Repo:       persistence.NewMemoryRepository(),
		OnImported: func(r ImportResult) { imported = append(imported, r) },
	})
	ctx := context.Background()

	res, err := svc.ImportFile(ctx, path)
	if err != nil {
		t.Fatalf("import file: %v", err)
	}
	if res.Skipped || res.BatchID == "" || res.Upsert.Inserted != 1 {
		t.Fatalf("result = %+v, want one inserted game and a batch id", res)
	}
	if _, records, _ := svc.GameLog(ctx, "p1"); len(records) != 1 {
		t.Fatalf("game count = %d, want 1", len(records))
	}

	res, err = svc.ImportFile(ctx, path)
	if err != nil || !res.Skipped {
		t.Fatalf("unchanged import = %+v, %v, want skipped", res, err)
	}

	writeExport(t, path, &gamelog.File{Subject: tatum, Games: []gamelog.Record{
		game("g1", 1, "LAL", gamelog.StatusFinal, 30),
		game("g2", 3, "MIA", gamelog.StatusFinal, 22),
	}})
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	res2, err := svc.ImportFile(ctx, path)
	if err != nil {
		t.Fatalf("reimport file: %v", err)
	}
	if res2.BatchID == res.BatchID || res2.Upsert.Inserted != 1 || res2.Upsert.Updated != 1 {
		t.Fatalf("reimport = %+v, want 1 inserted, 1 updated, new batch", res2)
	}
	_, records, err := svc.GameLog(ctx, "p1")
	if err != nil {
		t.Fatalf("game log: %v", err)
	}
	if len(records) != 2 || records[0].GameID != "g2" {
		t.Fatalf("records = %+v, want g2 first", records)
	}
	if len(imported) != 2 {
		t.Fatalf("OnImported calls = %d, want 2", len(imported))
	}
}

func TestGameLogUnknownSubject(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{})
	subj, records, err := svc.GameLog(context.Background(), "nobody")
	if err != nil || subj.ID != "" || records != nil {
		t.Fatalf("GameLog = %+v, %v, %v, want zero values", subj, records, err)
	}
}

func TestBestLineFromImportedSnapshots(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "p1.gamelog.json")
	writeExport(t, path, &gamelog.File{
		Subject: tatum,
		Games:   []gamelog.Record{game("g1", 1, "LAL", gamelog.StatusFinal, 30)},
		Lines: []gamelog.LineSnapshot{
			{Metric: "pts", Bookmaker: "fanduel", Value: 27.5},
			{Metric: "pts", Bookmaker: "draftkings", Value: 26.5},
		},
	})
	svc := NewService(Config{})
	ctx := context.Background()
	if _, err := svc.ImportFile(ctx, path); err != nil {
		t.Fatalf("import file: %v", err)
	}

	if v, ok := svc.BestLine(ctx, "p1", series.MetricPoints); !ok || v != 26.5 {
		t.Fatalf("BestLine(pts) = %v,%v, want 26.5,true", v, ok)
	}
	if v, ok := svc.BestLine(ctx, "p1", series.MetricWin); ok || v != 0.5 {
		t.Fatalf("BestLine(win) = %v,%v, want 0.5,false", v, ok)
	}
}

func TestOpponentRank(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(Config{})
	r, err := svc.OpponentRank(ctx, "LAL", "pts_allowed")
	if err != nil {
		t.Fatalf("rank without table: %v", err)
	}
	if r.Rank != gamelog.LeagueSize || r.HasValue {
		t.Fatalf("rank without table = %+v, want %d and no value", r, gamelog.LeagueSize)
	}

	path := filepath.Join(t.TempDir(), "league.gamelog.json")
	writeExport(t, path, &gamelog.File{
		Subject: tatum,
		League: &gamelog.LeagueFile{
			Season: 2025,
			Order:  []string{"BOS", "LAL", "MIA"},
			Metrics: map[string]map[string]float64{
				"pts_allowed": {"BOS": 108, "LAL": 115, "MIA": 111},
				"pace":        {"BOS": 97, "LAL": 101, "MIA": 99},
			},
		},
	})
	if _, err := svc.ImportFile(ctx, path); err != nil {
		t.Fatalf("import league: %v", err)
	}

	tests := []struct {
		team   string
		metric string
		rank   int
		tier   ranking.Tier
	}{
		{team: "BOS", metric: "pts_allowed", rank: 1, tier: ranking.TierWorst},
		{team: "lal", metric: "pts_allowed", rank: 3, tier: ranking.TierWorst},
		{team: "LAL", metric: "pace", rank: 1, tier: ranking.TierBest},
		{team: "DEN", metric: "pts_allowed", rank: 30, tier: ranking.TierBest},
	}
	for _, tt := range tests {
		got, err := svc.OpponentRank(ctx, tt.team, tt.metric)
		if err != nil {
			t.Fatalf("OpponentRank(%s, %s): %v", tt.team, tt.metric, err)
		}
		if got.Rank != tt.rank || got.Tier != tt.tier {
			t.Fatalf("OpponentRank(%s, %s) = rank %d tier %v, want %d %v", tt.team, tt.metric, got.Rank, got.Tier, tt.rank, tt.tier)
		}
		if got.Season != 2025 || got.Size != gamelog.LeagueSize {
			t.Fatalf("season/size = %d/%d, want 2025/%d", got.Season, got.Size, gamelog.LeagueSize)
		}
	}
}

func TestDvPUsesStoredBoxScoresAndDepthCharts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "box.gamelog.json")
	writeExport(t, path, &gamelog.File{
		Subject: tatum,
		BoxScores: []gamelog.BoxScore{
			{GameID: "g1", Date: day(1), Rows: []gamelog.BoxRow{
				{PlayerName: "Jayson Tatum", TeamAbbr: "BOS", StartPosition: "F", Stats: map[string]float64{"pts": 31}},
				{PlayerName: "Luka Doncic Jr.", TeamAbbr: "LAL", StartPosition: "G", Stats: map[string]float64{"pts": 30, "ast": 8}},
				{PlayerName: "Deandre Ayton", TeamAbbr: "LAL", StartPosition: "C", Stats: map[string]float64{"pts": 12}},
			}},
		},
		DepthCharts: map[string]map[string][]string{"LAL": {"SG": {"Luka Doncic"}}},
	})

	svc := NewService(Config{Now: func() time.Time { return day(20) }})
	ctx := context.Background()
	if _, err := svc.ImportFile(ctx, path); err != nil {
		t.Fatalf("import file: %v", err)
	}

	bos, _ := gamelog.TeamByAbbr("BOS")
	res, err := svc.DvP(ctx, bos.ID, "pts", 0)
	if err != nil {
		t.Fatalf("DvP: %v", err)
	}
	if res.SampleGames != 1 || res.Season != "2025-26" {
		t.Fatalf("sample/season = %d/%s, want 1/2025-26", res.SampleGames, res.Season)
	}
	if res.PerGame[ranking.SG] != 30 || res.PerGame[ranking.C] != 12 || res.PerGame[ranking.SF] != 0 {
		t.Fatalf("per game = %v, want SG 30, C 12", res.PerGame)
	}
}

func TestOpponentTrackerFiresOnce(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		switches []OpponentSwitch
	)
	tr := NewOpponentTracker(func(sw OpponentSwitch) {
		mu.Lock()
		switches = append(switches, sw)
		mu.Unlock()
	})
	tr.Display("p1", "g2")

	pending := []gamelog.Record{
		game("g1", 1, "LAL", gamelog.StatusFinal, 30),
		game("g2", 3, "MIA", gamelog.StatusLive, 0),
		game("g3", 5, "DEN", gamelog.StatusScheduled, 0),
	}
	if tr.Observe(tatum, pending) {
		t.Fatalf("switch fired while displayed game is live")
	}

	final := []gamelog.Record{
		game("g1", 1, "LAL", gamelog.StatusFinal, 30),
		game("g2", 3, "MIA", gamelog.StatusFinal, 25),
		{GameID: "g3", Date: day(5), HomeTeamAbbr: "DEN", AwayTeamAbbr: "BOS", Status: gamelog.StatusScheduled},
	}
	if !tr.Observe(tatum, final) {
		t.Fatalf("switch did not fire when displayed game went final")
	}
	if tr.Observe(tatum, final) {
		t.Fatalf("switch fired twice for the same game")
	}
	if len(switches) != 1 {
		t.Fatalf("switches = %d, want 1", len(switches))
	}
	sw := switches[0]
	if sw.FromGameID != "g2" || sw.NextGameID != "g3" || sw.OpponentAbbr != "DEN" || sw.OpponentID == 0 {
		t.Fatalf("switch = %+v, want g2 -> g3 against DEN", sw)
	}
}

func TestOpponentTrackerRespectsOverride(t *testing.T) {
	t.Parallel()

	fired := 0
	tr := NewOpponentTracker(func(OpponentSwitch) { fired++ })
	tr.Display("p1", "g1")
	tr.SetOverride(true)

	records := []gamelog.Record{
		game("g1", 1, "LAL", gamelog.StatusFinal, 30),
		game("g2", 3, "MIA", gamelog.StatusScheduled, 0),
	}
	if tr.Observe(tatum, records) {
		t.Fatalf("switch fired under a manual override")
	}
	tr.SetOverride(false)
	if tr.Observe(gamelog.Subject{ID: "p2"}, records) {
		t.Fatalf("switch fired for another subject")
	}
	if !tr.Observe(tatum, records) || fired != 1 {
		t.Fatalf("switch fired %d times after clearing override, want 1", fired)
	}
}

func TestImportFeedsOpponentTracker(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "p1.gamelog.json")
	writeExport(t, path, &gamelog.File{Subject: tatum, Games: []gamelog.Record{
		game("g1", 1, "LAL", gamelog.StatusFinal, 30),
		game("g2", 3, "MIA", gamelog.StatusFinal, 25),
		game("g3", 5, "DEN", gamelog.StatusScheduled, 0),
	}})

	got := make(chan OpponentSwitch, 1)
	svc := NewService(Config{OnOpponentSwitch: func(sw OpponentSwitch) { got <- sw }})
	svc.Tracker().Display("p1", "g2")
	if _, err := svc.ImportFile(context.Background(), path); err != nil {
		t.Fatalf("import file: %v", err)
	}
	select {
	case sw := <-got:
		if sw.OpponentAbbr != "DEN" {
			t.Fatalf("opponent = %q, want DEN", sw.OpponentAbbr)
		}
	default:
		t.Fatalf("import did not trigger the opponent switch")
	}
}

func TestFilterContextFor(t *testing.T) {
	t.Parallel()

	now := day(4)
	records := []gamelog.Record{
		game("g1", 1, "LAL", gamelog.StatusFinal, 30),
		game("g3", 9, "DEN", gamelog.StatusScheduled, 0),
		game("g2", 5, "MIA", gamelog.StatusScheduled, 0),
		{GameID: "g0", Status: gamelog.StatusScheduled, OpponentAbbr: "NYK"},
	}
	fc := FilterContextFor(tatum, records, now)
	if fc.CurrentOpponentAbbr != "MIA" || fc.SubjectTeamAbbr != "BOS" || !fc.Now.Equal(now) || fc.TeamMode {
		t.Fatalf("filter context = %+v, want next opponent MIA", fc)
	}

	team := gamelog.Subject{ID: "BOS", Kind: gamelog.SubjectTeam, TeamAbbr: "BOS"}
	if fc := FilterContextFor(team, nil, now); !fc.TeamMode || fc.CurrentOpponentAbbr != "" {
		t.Fatalf("team filter context = %+v", fc)
	}
}
