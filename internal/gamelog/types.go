package gamelog

import "time"

// SubjectKind tells whether a game log belongs to a player or a team.
type SubjectKind string

const (
	SubjectPlayer SubjectKind = "player"
	SubjectTeam   SubjectKind = "team"
)

// Subject is the player or team currently being charted.
type Subject struct {
	ID       string
	Kind     SubjectKind
	Name     string
	TeamID   int
	TeamAbbr string
}

// GameStatus mirrors the provider's game state.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusLive      GameStatus = "live"
	StatusFinal     GameStatus = "final"
	StatusPostponed GameStatus = "postponed"
)

// PeriodScore is one quarter (or overtime) of a team box score, seen from
// the subject team's side.
type PeriodScore struct {
	Period        int
	TeamScore     int
	OpponentScore int
}

// Record is one game of the subject's log. Records are immutable once
// fetched; the store replaces them wholesale when the subject changes.
type Record struct {
	GameID string
	Date   time.Time

	// Subject side. TeamID/TeamAbbr may be empty for some providers; the
	// filter engine then falls back to the subject's own team.
	TeamID   int
	TeamAbbr string

	// Opponent side. Both may be absent; they are derivable from the
	// home/away fields below.
	OpponentID   int
	OpponentAbbr string

	HomeTeamID   int
	HomeTeamAbbr string
	AwayTeamID   int
	AwayTeamAbbr string
	// Home is an explicit home flag for providers that ship one instead of
	// home/away team identifiers. nil = unknown.
	Home *bool

	Minutes float64
	Status  GameStatus
	Stats   map[string]float64
	Periods []PeriodScore
}

// Stat returns a raw stat field. Missing fields report ok=false.
func (r Record) Stat(field string) (float64, bool) {
	if r.Stats == nil {
		return 0, false
	}
	v, ok := r.Stats[field]
	return v, ok
}

// IsComplete reports whether the game has gone final.
func (r Record) IsComplete() bool {
	return r.Status == StatusFinal
}

// LineSnapshot is one externally observed reference line for a subject and
// metric, as reported by a single bookmaker.
type LineSnapshot struct {
	SubjectID  string
	Metric     string
	Bookmaker  string
	Value      float64
	ObservedAt time.Time
}

// BoxRow is a single player row from a box score, used for the
// defense-vs-position breakdown.
type BoxRow struct {
	PlayerName    string
	TeamID        int
	TeamAbbr      string
	StartPosition string
	Stats         map[string]float64
}

// BoxScore groups the player rows of one game.
type BoxScore struct {
	GameID string
	Date   time.Time
	Rows   []BoxRow
}
