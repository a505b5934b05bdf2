// Package ranking ranks a team against the league on one reference metric
// and maps the rank onto a five-step colour scale.
package ranking

import (
	"sort"
	"strings"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
)

const (
	MetricPointsAllowed   = "pts_allowed"
	MetricReboundsAllowed = "reb_allowed"
	MetricAssistsAllowed  = "ast_allowed"
	MetricThreesAllowed   = "fg3m_allowed"
	MetricOffRating       = "off_rating"
	MetricDefRating       = "def_rating"
	MetricPace            = "pace"
	MetricReboundShare    = "reb_share"
)

// Polarity says which direction of a metric is better.
type Polarity int

const (
	// Descending: higher is better (offensive rating).
	Descending Polarity = iota
	// Ascending: lower is better (points allowed).
	Ascending
)

// PolarityFor returns the natural polarity of a league metric.
func PolarityFor(metric string) Polarity {
	if strings.HasSuffix(metric, "_allowed") || metric == MetricDefRating {
		return Ascending
	}
	return Descending
}

// IsOpponentFacing reports metrics that describe what a defence concedes.
// Those are classified inverted: a poor defence is a favourable matchup.
func IsOpponentFacing(metric string) bool {
	return strings.HasSuffix(metric, "_allowed") || metric == MetricDefRating
}

// LeagueTable is the static per-team reference table. Team order is the
// documented tie break.
type LeagueTable struct {
	Season int
	order  []string
	index  map[string]int
	values map[string]map[string]float64
}

func NewLeagueTable(season int, order []string) *LeagueTable {
	t := &LeagueTable{
		Season: season,
		index:  make(map[string]int),
		values: make(map[string]map[string]float64),
	}
	for _, team := range order {
		t.addTeam(team)
	}
	return t
}

// FromFile builds a table from the export format. Without an explicit order
// the static league order is used, followed by any unknown teams sorted.
func FromFile(lf *gamelog.LeagueFile) *LeagueTable {
	if lf == nil {
		return nil
	}
	order := lf.Order
	if len(order) == 0 {
		for _, team := range gamelog.Teams() {
			order = append(order, team.Abbr)
		}
	}
	t := NewLeagueTable(lf.Season, order)
	metrics := make([]string, 0, len(lf.Metrics))
	for m := range lf.Metrics {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)
	for _, m := range metrics {
		teams := make([]string, 0, len(lf.Metrics[m]))
		for team := range lf.Metrics[m] {
			teams = append(teams, team)
		}
		sort.Strings(teams)
		for _, team := range teams {
			t.Set(m, team, lf.Metrics[m][team])
		}
	}
	return t
}

func (t *LeagueTable) addTeam(team string) string {
	abbr := gamelog.NormalizeAbbr(team)
	if abbr == "" {
		return ""
	}
	if _, ok := t.index[abbr]; !ok {
		t.index[abbr] = len(t.order)
		t.order = append(t.order, abbr)
	}
	return abbr
}

// Set records a value, appending unknown teams to the order.
func (t *LeagueTable) Set(metric, team string, v float64) {
	abbr := t.addTeam(team)
	if abbr == "" {
		return
	}
	m := t.values[metric]
	if m == nil {
		m = make(map[string]float64)
		t.values[metric] = m
	}
	m[abbr] = v
}

func (t *LeagueTable) Value(metric, team string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	v, ok := t.values[metric][gamelog.NormalizeAbbr(team)]
	return v, ok
}

// Teams returns the table order.
func (t *LeagueTable) Teams() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

// Metrics lists the metrics present in the table.
func (t *LeagueTable) Metrics() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.values))
	for m := range t.values {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Size is the number of ranked peers, never below the league size so a
// missing team still lands on the worst rank of a full table.
func (t *LeagueTable) Size() int {
	if t == nil || len(t.order) < gamelog.LeagueSize {
		return gamelog.LeagueSize
	}
	return len(t.order)
}

func better(a, b float64, p Polarity) bool {
	if p == Ascending {
		return a < b
	}
	return a > b
}

// Rank is 1 + the number of peers strictly better than team. Tied teams
// share a rank. A team absent from the table gets the worst rank.
func Rank(t *LeagueTable, team, metric string, p Polarity) int {
	v, ok := t.Value(metric, team)
	if !ok {
		return t.Size()
	}
	rank := 1
	for _, peer := range t.values[metric] {
		if better(peer, v, p) {
			rank++
		}
	}
	return rank
}

// Entry is one row of an ordered ranking.
type Entry struct {
	Team  string
	Value float64
	Rank  int
}

// OrderedRanks returns a strict total order: ties keep table order, so the
// ranks are a bijection onto 1..n. Teams without a value are left out.
func OrderedRanks(t *LeagueTable, metric string, p Polarity) []Entry {
	if t == nil {
		return nil
	}
	vals := t.values[metric]
	out := make([]Entry, 0, len(vals))
	for _, team := range t.order {
		if v, ok := vals[team]; ok {
			out = append(out, Entry{Team: team, Value: v})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return better(out[i].Value, out[j].Value, p)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Tier is the five-step classification, TierBest most favourable.
type Tier int

const (
	TierBest Tier = iota + 1
	TierGood
	TierMid
	TierPoor
	TierWorst
)

const bucketSize = 6

// Classify splits ranks 1..30 into five buckets of six. inverted flips the
// scale so rank 30 is the favourable end.
func Classify(rank int, inverted bool) Tier {
	if rank < 1 {
		rank = 1
	}
	if rank > gamelog.LeagueSize {
		rank = gamelog.LeagueSize
	}
	bucket := (rank-1)/bucketSize + 1
	if inverted {
		bucket = int(TierWorst) + 1 - bucket
	}
	return Tier(bucket)
}

func (t Tier) String() string {
	switch t {
	case TierBest:
		return "best"
	case TierGood:
		return "good"
	case TierMid:
		return "mid"
	case TierPoor:
		return "poor"
	case TierWorst:
		return "worst"
	default:
		return "unknown"
	}
}
