package series

import (
	"sort"
	"strings"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
)

// Timeframe selects which slice of the game log feeds the chart.
type Timeframe int

const (
	TimeframeLastN Timeframe = iota
	TimeframeH2H
	TimeframeThisSeason
	TimeframeLastSeason
	TimeframeAllTime
)

var timeframeNames = map[Timeframe]string{
	TimeframeLastN:      "last_n",
	TimeframeH2H:        "h2h",
	TimeframeThisSeason: "this_season",
	TimeframeLastSeason: "last_season",
	TimeframeAllTime:    "all_time",
}

func (t Timeframe) String() string {
	if s, ok := timeframeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseTimeframe accepts the names produced by String. Unknown input falls
// back to TimeframeLastN.
func ParseTimeframe(s string) Timeframe {
	key := strings.ToLower(strings.TrimSpace(s))
	for tf, name := range timeframeNames {
		if name == key {
			return tf
		}
	}
	return TimeframeLastN
}

// HomeAway restricts the series by venue.
type HomeAway int

const (
	HomeAwayAll HomeAway = iota
	HomeAwayHome
	HomeAwayAway
)

const (
	// OpponentAll disables the opponent override.
	OpponentAll = "ALL"
	// H2HMaxGames caps head-to-head series to the most recent meetings.
	H2HMaxGames = 6
	// Placeholder labels a bar whose opponent could not be resolved.
	Placeholder = "—"

	DefaultLastN            = 10
	DefaultSeasonStartMonth = time.October
)

// FilterConfig is the user-facing filter selection.
type FilterConfig struct {
	Timeframe        Timeframe
	N                int
	OpponentOverride string
	HomeAway         HomeAway
	SeasonStartMonth time.Month
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		Timeframe:        TimeframeLastN,
		N:                DefaultLastN,
		OpponentOverride: OpponentAll,
		HomeAway:         HomeAwayAll,
		SeasonStartMonth: DefaultSeasonStartMonth,
	}
}

// FilterContext carries what the filter needs to know about the subject and
// the upcoming game. Zero values mean "unknown".
type FilterContext struct {
	SubjectTeamID       int
	SubjectTeamAbbr     string
	CurrentOpponentID   int
	CurrentOpponentAbbr string
	// Now anchors the season filters. Zero means time.Now().
	Now      time.Time
	TeamMode bool
}

// Game is a record that survived filtering, with its opponent resolved.
type Game struct {
	Record       gamelog.Record
	OpponentID   int
	OpponentAbbr string
	TickLabel    string
}

type teamRef struct {
	id   int
	abbr string
}

func (t teamRef) resolved() bool {
	return t.id != 0 || t.abbr != ""
}

func (t teamRef) matches(o teamRef) bool {
	if t.id != 0 && o.id != 0 {
		return t.id == o.id
	}
	a, b := t.abbr, o.abbr
	if a == "" {
		a = gamelog.AbbrForID(t.id)
	}
	if b == "" {
		b = gamelog.AbbrForID(o.id)
	}
	return a != "" && a == b
}

func newTeamRef(id int, abbr string) teamRef {
	ref := teamRef{id: id, abbr: gamelog.NormalizeAbbr(abbr)}
	if ref.abbr == "" && id != 0 {
		ref.abbr = gamelog.AbbrForID(id)
	}
	return ref
}

// Filter turns raw records into the ordered base series, oldest first.
// Duplicate game ids are collapsed before any cap is applied so a duplicate
// never consumes a last-N or head-to-head slot. It never fails: unresolvable
// opponents get the placeholder label, and an empty result is a valid series.
func Filter(records []gamelog.Record, cfg FilterConfig, fc FilterContext) []Game {
	if len(records) == 0 {
		return nil
	}
	startMonth := cfg.SeasonStartMonth
	if startMonth < time.January || startMonth > time.December {
		startMonth = DefaultSeasonStartMonth
	}

	seen := make(map[string]struct{}, len(records))
	games := make([]Game, 0, len(records))
	for _, rec := range records {
		if fc.TeamMode && !rec.IsComplete() {
			continue
		}
		if rec.Minutes <= 0 {
			continue
		}
		if _, dup := seen[rec.GameID]; dup {
			continue
		}
		seen[rec.GameID] = struct{}{}

		opp := resolveOpponent(rec, fc)
		label := opp.abbr
		if label == "" {
			label = Placeholder
		}
		games = append(games, Game{
			Record:       rec,
			OpponentID:   opp.id,
			OpponentAbbr: opp.abbr,
			TickLabel:    label,
		})
	}

	sortNewestFirst(games)

	switch {
	case cfg.OpponentOverride != "" && !strings.EqualFold(cfg.OpponentOverride, OpponentAll):
		target := overrideRef(cfg.OpponentOverride)
		games = keep(games, func(g Game) bool {
			return target.matches(teamRef{id: g.OpponentID, abbr: g.OpponentAbbr})
		})
	case cfg.Timeframe == TimeframeH2H:
		target := newTeamRef(fc.CurrentOpponentID, fc.CurrentOpponentAbbr)
		if target.resolved() {
			games = keep(games, func(g Game) bool {
				return target.matches(teamRef{id: g.OpponentID, abbr: g.OpponentAbbr})
			})
		}
		if len(games) > H2HMaxGames {
			games = games[:H2HMaxGames]
		}
	case cfg.Timeframe == TimeframeThisSeason || cfg.Timeframe == TimeframeLastSeason:
		now := fc.Now
		if now.IsZero() {
			now = time.Now()
		}
		target := gamelog.SeasonStartYear(now, startMonth)
		if cfg.Timeframe == TimeframeLastSeason {
			target--
		}
		games = keep(games, func(g Game) bool {
			d := g.Record.Date
			return !d.IsZero() && gamelog.SeasonStartYear(d, startMonth) == target
		})
	}

	if cfg.HomeAway != HomeAwayAll {
		wantHome := cfg.HomeAway == HomeAwayHome
		games = keep(games, func(g Game) bool {
			home, ok := isHome(g.Record, fc)
			return ok && home == wantHome
		})
	}

	if cfg.Timeframe == TimeframeLastN {
		if cfg.N <= 0 {
			return nil
		}
		if len(games) > cfg.N {
			games = games[:cfg.N]
		}
	}

	for i, j := 0, len(games)-1; i < j; i, j = i+1, j-1 {
		games[i], games[j] = games[j], games[i]
	}
	return games
}

func keep(games []Game, pred func(Game) bool) []Game {
	out := games[:0]
	for _, g := range games {
		if pred(g) {
			out = append(out, g)
		}
	}
	return out
}

// sortNewestFirst orders by date descending; undated games sink to the end
// and keep their input order.
func sortNewestFirst(games []Game) {
	sort.SliceStable(games, func(i, j int) bool {
		di, dj := games[i].Record.Date, games[j].Record.Date
		if di.IsZero() != dj.IsZero() {
			return !di.IsZero()
		}
		return di.After(dj)
	})
}

func overrideRef(s string) teamRef {
	if t, ok := gamelog.TeamByAbbr(s); ok {
		return teamRef{id: t.ID, abbr: t.Abbr}
	}
	return teamRef{abbr: gamelog.NormalizeAbbr(s)}
}

func subjectRef(rec gamelog.Record, fc FilterContext) teamRef {
	ref := newTeamRef(rec.TeamID, rec.TeamAbbr)
	if ref.resolved() {
		return ref
	}
	return newTeamRef(fc.SubjectTeamID, fc.SubjectTeamAbbr)
}

// ResolveOpponent returns the opponent's id and abbreviation for one record.
// ok is false when neither explicit fields nor the home/away pair resolve it.
func ResolveOpponent(rec gamelog.Record, fc FilterContext) (id int, abbr string, ok bool) {
	ref := resolveOpponent(rec, fc)
	if !ref.resolved() {
		return 0, "", false
	}
	if ref.id == 0 {
		if t, found := gamelog.TeamByAbbr(ref.abbr); found {
			ref.id = t.ID
		}
	}
	return ref.id, ref.abbr, true
}

// resolveOpponent prefers explicit opponent fields, then derives the
// opponent from the home/away pair by elimination.
func resolveOpponent(rec gamelog.Record, fc FilterContext) teamRef {
	if opp := newTeamRef(rec.OpponentID, rec.OpponentAbbr); opp.resolved() {
		return opp
	}
	subject := subjectRef(rec, fc)
	if !subject.resolved() {
		return teamRef{}
	}
	home := newTeamRef(rec.HomeTeamID, rec.HomeTeamAbbr)
	away := newTeamRef(rec.AwayTeamID, rec.AwayTeamAbbr)
	switch {
	case home.resolved() && subject.matches(home):
		return away
	case away.resolved() && subject.matches(away):
		return home
	}
	return teamRef{}
}

// isHome reports whether the subject played at home. ok is false when the
// venue cannot be determined.
func isHome(rec gamelog.Record, fc FilterContext) (home bool, ok bool) {
	subject := subjectRef(rec, fc)
	homeRef := newTeamRef(rec.HomeTeamID, rec.HomeTeamAbbr)
	if subject.resolved() && homeRef.resolved() {
		return subject.matches(homeRef), true
	}
	awayRef := newTeamRef(rec.AwayTeamID, rec.AwayTeamAbbr)
	if subject.resolved() && awayRef.resolved() && subject.matches(awayRef) {
		return false, true
	}
	if rec.Home != nil {
		return *rec.Home, true
	}
	return false, false
}
