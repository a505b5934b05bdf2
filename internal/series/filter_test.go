package series

import (
	"fmt"
	"testing"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func game(id string, date time.Time, minutes float64, pts float64) gamelog.Record {
	return gamelog.Record{
		GameID:   id,
		Date:     date,
		TeamAbbr: "MIL",
		Minutes:  minutes,
		Status:   gamelog.StatusFinal,
		Stats:    map[string]float64{"pts": pts},
	}
}

func assertUniqueAndAscending(t *testing.T, games []Game) {
	t.Helper()
	seen := map[string]bool{}
	for i, g := range games {
		if seen[g.Record.GameID] {
			t.Fatalf("duplicate game id %q in series", g.Record.GameID)
		}
		seen[g.Record.GameID] = true
		if i > 0 && games[i-1].Record.Date.After(g.Record.Date) {
			t.Fatalf("series not ascending at %d: %v after %v", i, games[i-1].Record.Date, g.Record.Date)
		}
	}
}

func TestFilterLastNTakesMostRecent(t *testing.T) {
	t.Parallel()

	var recs []gamelog.Record
	for i := 0; i < 20; i++ {
		recs = append(recs, game(fmt.Sprintf("g%02d", i), day(2025, 11, 1).AddDate(0, 0, i), 30, float64(i)))
	}
	// Native order is newest-first in some providers; shuffle a bit.
	recs[0], recs[19] = recs[19], recs[0]

	cfg := DefaultFilterConfig()
	cfg.N = 5
	got := Filter(recs, cfg, FilterContext{})
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	for i, g := range got {
		want := fmt.Sprintf("g%02d", 15+i)
		if g.Record.GameID != want {
			t.Fatalf("game[%d] = %q, want %q", i, g.Record.GameID, want)
		}
	}
	assertUniqueAndAscending(t, got)
}

func TestFilterDropsZeroMinutesAndDuplicates(t *testing.T) {
	t.Parallel()

	recs := []gamelog.Record{
		game("a", day(2024, 1, 1), 30, 10),
		game("b", day(2024, 1, 3), 0, 0),
		game("c", day(2024, 1, 5), 28, 20),
		game("c", day(2024, 1, 5), 28, 99),
	}
	got := Filter(recs, DefaultFilterConfig(), FilterContext{})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Record.GameID != "a" || got[1].Record.GameID != "c" {
		t.Fatalf("order = %s,%s, want a,c", got[0].Record.GameID, got[1].Record.GameID)
	}
	if v, _ := got[1].Record.Stat("pts"); v != 20 {
		t.Fatalf("duplicate kept value %v, want first occurrence 20", v)
	}
}

func TestFilterDuplicatesDoNotConsumeLastNSlots(t *testing.T) {
	t.Parallel()

	recs := []gamelog.Record{
		game("g1", day(2025, 1, 1), 30, 1),
		game("g2", day(2025, 1, 2), 30, 2),
		game("g3", day(2025, 1, 3), 30, 3),
		game("g3", day(2025, 1, 3), 30, 3),
	}
	cfg := DefaultFilterConfig()
	cfg.N = 2
	got := Filter(recs, cfg, FilterContext{})
	if len(got) != 2 || got[0].Record.GameID != "g2" || got[1].Record.GameID != "g3" {
		t.Fatalf("got %+v, want g2,g3", got)
	}
}

func TestFilterLastNNonPositiveIsEmpty(t *testing.T) {
	t.Parallel()

	cfg := DefaultFilterConfig()
	cfg.N = 0
	if got := Filter([]gamelog.Record{game("a", day(2025, 1, 1), 30, 1)}, cfg, FilterContext{}); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestFilterH2HCapsAtSix(t *testing.T) {
	t.Parallel()

	var recs []gamelog.Record
	for i := 0; i < 10; i++ {
		r := game(fmt.Sprintf("bos%d", i), day(2020+i, 1, 10), 30, 1)
		r.OpponentAbbr = "BOS"
		recs = append(recs, r)
		other := game(fmt.Sprintf("nyk%d", i), day(2020+i, 2, 10), 30, 1)
		other.OpponentAbbr = "NY"
		recs = append(recs, other)
	}
	cfg := FilterConfig{Timeframe: TimeframeH2H, OpponentOverride: OpponentAll}
	got := Filter(recs, cfg, FilterContext{CurrentOpponentAbbr: "BOS"})
	if len(got) != H2HMaxGames {
		t.Fatalf("len = %d, want %d", len(got), H2HMaxGames)
	}
	for _, g := range got {
		if g.OpponentAbbr != "BOS" {
			t.Fatalf("opponent = %q, want BOS", g.OpponentAbbr)
		}
	}
	if got[len(got)-1].Record.GameID != "bos9" {
		t.Fatalf("newest = %q, want bos9", got[len(got)-1].Record.GameID)
	}
	assertUniqueAndAscending(t, got)
}

func TestFilterH2HUnresolvedOpponentDisablesOpponentFilter(t *testing.T) {
	t.Parallel()

	var recs []gamelog.Record
	for i := 0; i < 8; i++ {
		r := game(fmt.Sprintf("g%d", i), day(2025, 1, 1+i), 30, 1)
		r.OpponentAbbr = "BOS"
		if i%2 == 0 {
			r.OpponentAbbr = "CHI"
		}
		recs = append(recs, r)
	}
	got := Filter(recs, FilterConfig{Timeframe: TimeframeH2H}, FilterContext{})
	if len(got) != H2HMaxGames {
		t.Fatalf("len = %d, want %d", len(got), H2HMaxGames)
	}
}

func TestFilterOpponentOverrideUsesAliases(t *testing.T) {
	t.Parallel()

	a := game("a", day(2025, 1, 1), 30, 1)
	a.OpponentID = 1610612744
	b := game("b", day(2025, 1, 2), 30, 1)
	b.OpponentAbbr = "GS"
	c := game("c", day(2025, 1, 3), 30, 1)
	c.OpponentAbbr = "LAL"

	cfg := FilterConfig{Timeframe: TimeframeAllTime, OpponentOverride: "gsw"}
	got := Filter([]gamelog.Record{a, b, c}, cfg, FilterContext{})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestFilterSeasonYear(t *testing.T) {
	t.Parallel()

	recs := []gamelog.Record{
		game("oct24", day(2024, 10, 25), 30, 1),
		game("mar25", day(2025, 3, 1), 30, 1),
		game("oct25", day(2025, 10, 22), 30, 1),
		game("mar26", day(2026, 3, 1), 30, 1),
		game("nodate", time.Time{}, 30, 1),
	}
	now := day(2026, 1, 15)

	this := Filter(recs, FilterConfig{Timeframe: TimeframeThisSeason, SeasonStartMonth: time.October}, FilterContext{Now: now})
	if len(this) != 2 || this[0].Record.GameID != "oct25" || this[1].Record.GameID != "mar26" {
		t.Fatalf("this season = %+v", this)
	}
	last := Filter(recs, FilterConfig{Timeframe: TimeframeLastSeason, SeasonStartMonth: time.October}, FilterContext{Now: now})
	if len(last) != 2 || last[0].Record.GameID != "oct24" || last[1].Record.GameID != "mar25" {
		t.Fatalf("last season = %+v", last)
	}
}

func TestFilterHomeAway(t *testing.T) {
	t.Parallel()

	home := game("home", day(2025, 1, 1), 30, 1)
	home.HomeTeamAbbr, home.AwayTeamAbbr = "MIL", "BOS"
	away := game("away", day(2025, 1, 2), 30, 1)
	away.HomeTeamID, away.AwayTeamID = 1610612738, 1610612749
	away.TeamAbbr = ""
	flag := game("flag", day(2025, 1, 3), 30, 1)
	yes := true
	flag.Home = &yes
	unknown := game("unknown", day(2025, 1, 4), 30, 1)

	recs := []gamelog.Record{home, away, flag, unknown}
	fc := FilterContext{SubjectTeamID: 1610612749, SubjectTeamAbbr: "MIL"}

	gotHome := Filter(recs, FilterConfig{Timeframe: TimeframeAllTime, HomeAway: HomeAwayHome}, fc)
	if len(gotHome) != 2 || gotHome[0].Record.GameID != "home" || gotHome[1].Record.GameID != "flag" {
		t.Fatalf("home = %+v", gotHome)
	}
	gotAway := Filter(recs, FilterConfig{Timeframe: TimeframeAllTime, HomeAway: HomeAwayAway}, fc)
	if len(gotAway) != 1 || gotAway[0].Record.GameID != "away" {
		t.Fatalf("away = %+v", gotAway)
	}
	if gotAway[0].OpponentAbbr != "BOS" {
		t.Fatalf("derived opponent = %q, want BOS", gotAway[0].OpponentAbbr)
	}
}

func TestFilterUnresolvedOpponentGetsPlaceholder(t *testing.T) {
	t.Parallel()

	r := game("a", day(2025, 1, 1), 30, 1)
	r.TeamAbbr = ""
	got := Filter([]gamelog.Record{r}, FilterConfig{Timeframe: TimeframeAllTime}, FilterContext{})
	if len(got) != 1 || got[0].TickLabel != Placeholder {
		t.Fatalf("tick label = %+v, want placeholder", got)
	}
}

func TestFilterTeamModeKeepsFinalGamesOnly(t *testing.T) {
	t.Parallel()

	final := game("final", day(2025, 1, 1), 240, 110)
	live := game("live", day(2025, 1, 2), 240, 50)
	live.Status = gamelog.StatusLive
	sched := game("sched", day(2025, 1, 3), 240, 0)
	sched.Status = gamelog.StatusScheduled

	got := Filter([]gamelog.Record{final, live, sched}, FilterConfig{Timeframe: TimeframeAllTime}, FilterContext{TeamMode: true})
	if len(got) != 1 || got[0].Record.GameID != "final" {
		t.Fatalf("team mode = %+v", got)
	}
}

func TestFilterEmptyInput(t *testing.T) {
	t.Parallel()

	if got := Filter(nil, DefaultFilterConfig(), FilterContext{}); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestFilterNeverEmitsDuplicateIDsAcrossConfigs(t *testing.T) {
	t.Parallel()

	var recs []gamelog.Record
	for i := 0; i < 30; i++ {
		r := game(fmt.Sprintf("g%d", i%12), day(2024, 9, 1).AddDate(0, 0, i*9), float64(i%4), 1)
		r.OpponentAbbr = []string{"BOS", "NYK", "GS"}[i%3]
		r.HomeTeamAbbr = []string{"MIL", "BOS"}[i%2]
		recs = append(recs, r)
	}
	configs := []FilterConfig{
		{Timeframe: TimeframeLastN, N: 10},
		{Timeframe: TimeframeH2H},
		{Timeframe: TimeframeThisSeason, SeasonStartMonth: time.October},
		{Timeframe: TimeframeLastSeason, SeasonStartMonth: time.October},
		{Timeframe: TimeframeAllTime, HomeAway: HomeAwayHome},
		{Timeframe: TimeframeAllTime, OpponentOverride: "BOS"},
	}
	fc := FilterContext{SubjectTeamAbbr: "MIL", CurrentOpponentAbbr: "NYK", Now: day(2025, 3, 1)}
	for _, cfg := range configs {
		assertUniqueAndAscending(t, Filter(recs, cfg, fc))
	}
}

func TestParseTimeframe(t *testing.T) {
	t.Parallel()

	for tf := TimeframeLastN; tf <= TimeframeAllTime; tf++ {
		if got := ParseTimeframe(tf.String()); got != tf {
			t.Fatalf("ParseTimeframe(%q) = %v, want %v", tf.String(), got, tf)
		}
	}
	if got := ParseTimeframe("bogus"); got != TimeframeLastN {
		t.Fatalf("ParseTimeframe(bogus) = %v, want last_n", got)
	}
}
