package ranking

import (
	"testing"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
)

func fullTable(metric string) *LeagueTable {
	var order []string
	for _, team := range gamelog.Teams() {
		order = append(order, team.Abbr)
	}
	t := NewLeagueTable(2025, order)
	for i, abbr := range order {
		t.Set(metric, abbr, float64(100+i))
	}
	return t
}

func TestRankIsBijectionForDistinctValues(t *testing.T) {
	t.Parallel()

	for _, p := range []Polarity{Descending, Ascending} {
		table := fullTable(MetricPace)
		seen := make(map[int]bool)
		for _, team := range table.Teams() {
			r := Rank(table, team, MetricPace, p)
			if r < 1 || r > gamelog.LeagueSize {
				t.Fatalf("rank %s = %d, out of range", team, r)
			}
			if seen[r] {
				t.Fatalf("rank %d assigned twice (polarity %d)", r, p)
			}
			seen[r] = true
		}
		if len(seen) != gamelog.LeagueSize {
			t.Fatalf("distinct ranks = %d, want %d", len(seen), gamelog.LeagueSize)
		}
	}
}

func TestRankPolarity(t *testing.T) {
	t.Parallel()

	table := NewLeagueTable(2025, []string{"BOS", "LAL", "DEN"})
	table.Set(MetricPointsAllowed, "BOS", 105)
	table.Set(MetricPointsAllowed, "LAL", 118)
	table.Set(MetricPointsAllowed, "DEN", 111)

	tests := []struct {
		team string
		p    Polarity
		want int
	}{
		{"BOS", Ascending, 1},
		{"DEN", Ascending, 2},
		{"LAL", Ascending, 3},
		{"LAL", Descending, 1},
		{"BOS", Descending, 3},
	}
	for _, tt := range tests {
		if got := Rank(table, tt.team, MetricPointsAllowed, tt.p); got != tt.want {
			t.Fatalf("Rank(%s, %d) = %d, want %d", tt.team, tt.p, got, tt.want)
		}
	}
}

func TestRankTiesShareAndAbsentIsWorst(t *testing.T) {
	t.Parallel()

	table := NewLeagueTable(2025, []string{"BOS", "LAL", "DEN"})
	table.Set(MetricOffRating, "BOS", 120)
	table.Set(MetricOffRating, "LAL", 120)
	table.Set(MetricOffRating, "DEN", 110)

	if a, b := Rank(table, "BOS", MetricOffRating, Descending), Rank(table, "LAL", MetricOffRating, Descending); a != 1 || b != 1 {
		t.Fatalf("tied ranks = %d,%d, want 1,1", a, b)
	}
	if got := Rank(table, "DEN", MetricOffRating, Descending); got != 3 {
		t.Fatalf("Rank(DEN) = %d, want 3", got)
	}
	if got := Rank(table, "MIA", MetricOffRating, Descending); got != gamelog.LeagueSize {
		t.Fatalf("Rank(absent) = %d, want %d", got, gamelog.LeagueSize)
	}
	if got := Rank(nil, "MIA", MetricOffRating, Descending); got != gamelog.LeagueSize {
		t.Fatalf("Rank(nil table) = %d, want %d", got, gamelog.LeagueSize)
	}
}

func TestOrderedRanksBreaksTiesByTableOrder(t *testing.T) {
	t.Parallel()

	table := NewLeagueTable(2025, []string{"LAL", "BOS", "DEN"})
	table.Set(MetricPace, "BOS", 99)
	table.Set(MetricPace, "LAL", 99)
	table.Set(MetricPace, "DEN", 101)

	got := OrderedRanks(table, MetricPace, Descending)
	want := []Entry{
		{Team: "DEN", Value: 101, Rank: 1},
		{Team: "LAL", Value: 99, Rank: 2},
		{Team: "BOS", Value: 99, Rank: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rank     int
		inverted bool
		want     Tier
	}{
		{1, false, TierBest},
		{6, false, TierBest},
		{7, false, TierGood},
		{12, false, TierGood},
		{13, false, TierMid},
		{19, false, TierPoor},
		{25, false, TierWorst},
		{30, false, TierWorst},
		{1, true, TierWorst},
		{30, true, TierBest},
		{15, true, TierMid},
		{0, false, TierBest},
		{99, false, TierWorst},
	}
	for _, tt := range tests {
		if got := Classify(tt.rank, tt.inverted); got != tt.want {
			t.Fatalf("Classify(%d, %v) = %v, want %v", tt.rank, tt.inverted, got, tt.want)
		}
	}
}

func TestClassifyBucketsHoldSix(t *testing.T) {
	t.Parallel()

	counts := make(map[Tier]int)
	for r := 1; r <= gamelog.LeagueSize; r++ {
		counts[Classify(r, false)]++
	}
	for tier := TierBest; tier <= TierWorst; tier++ {
		if counts[tier] != 6 {
			t.Fatalf("tier %v holds %d ranks, want 6", tier, counts[tier])
		}
	}
}

func TestPolarityFor(t *testing.T) {
	t.Parallel()

	if PolarityFor(MetricPointsAllowed) != Ascending || PolarityFor(MetricDefRating) != Ascending {
		t.Fatalf("allowed/def metrics should rank ascending")
	}
	if PolarityFor(MetricOffRating) != Descending || PolarityFor(MetricPace) != Descending {
		t.Fatalf("off_rating/pace should rank descending")
	}
}

func TestFromFileNormalizesAliases(t *testing.T) {
	t.Parallel()

	table := FromFile(&gamelog.LeagueFile{
		Season: 2025,
		Metrics: map[string]map[string]float64{
			MetricPointsAllowed: {"GS": 110, "NY": 108},
		},
	})
	if v, ok := table.Value(MetricPointsAllowed, "GSW"); !ok || v != 110 {
		t.Fatalf("Value(GSW) = %v,%v, want 110,true", v, ok)
	}
	if got := Rank(table, "NYK", MetricPointsAllowed, Ascending); got != 1 {
		t.Fatalf("Rank(NYK) = %d, want 1", got)
	}
	if got := len(table.Teams()); got != gamelog.LeagueSize {
		t.Fatalf("teams = %d, want %d", got, gamelog.LeagueSize)
	}
}

func TestCache(t *testing.T) {
	t.Parallel()

	table := fullTable(MetricPace)
	c := NewCache()
	first := c.Rank(table, "BOS", MetricPace, Descending)
	if first != Rank(table, "BOS", MetricPace, Descending) {
		t.Fatalf("cached rank = %d, want direct rank", first)
	}
	// mutate the table: the cache keeps serving the memoised rank until cleared
	table.Set(MetricPace, "BOS", 1000)
	if got := c.Rank(table, "BOS", MetricPace, Descending); got != first {
		t.Fatalf("cached rank after mutate = %d, want %d", got, first)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	c.Clear()
	if got := c.Rank(table, "BOS", MetricPace, Descending); got != 1 {
		t.Fatalf("rank after Clear = %d, want 1", got)
	}
}
