package application

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

// OpponentSwitch announces that the displayed game went final and the chart
// should follow the subject's next opponent.
type OpponentSwitch struct {
	SubjectID    string
	FromGameID   string
	NextGameID   string
	OpponentID   int
	OpponentAbbr string
}

// OpponentTracker follows the game whose opponent is on screen. When that
// game goes final it fires one switch to the next scheduled opponent, unless
// the user picked an opponent by hand.
type OpponentTracker struct {
	mu        sync.Mutex
	subjectID string
	gameID    string
	override  bool
	fired     bool
	onSwitch  func(OpponentSwitch)
}

func NewOpponentTracker(onSwitch func(OpponentSwitch)) *OpponentTracker {
	return &OpponentTracker{onSwitch: onSwitch}
}

// Display records the game currently shown. Changing the game re-arms the
// tracker.
func (t *OpponentTracker) Display(subjectID, gameID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.subjectID == subjectID && t.gameID == gameID {
		return
	}
	t.subjectID = subjectID
	t.gameID = gameID
	t.fired = false
}

// SetOnSwitch replaces the switch callback, for front-ends built after the
// service.
func (t *OpponentTracker) SetOnSwitch(fn func(OpponentSwitch)) {
	t.mu.Lock()
	t.onSwitch = fn
	t.mu.Unlock()
}

// SetOverride marks whether the opponent filter was chosen by the user.
func (t *OpponentTracker) SetOverride(on bool) {
	t.mu.Lock()
	t.override = on
	t.mu.Unlock()
}

// Observe checks fresh records of subject. It reports whether a switch fired.
func (t *OpponentTracker) Observe(subject gamelog.Subject, records []gamelog.Record) bool {
	t.mu.Lock()
	if t.fired || t.override || t.gameID == "" || subject.ID != t.subjectID {
		t.mu.Unlock()
		return false
	}
	displayed, ok := findGame(records, t.gameID)
	if !ok || !displayed.IsComplete() {
		t.mu.Unlock()
		return false
	}
	t.fired = true
	from := t.gameID
	onSwitch := t.onSwitch
	t.mu.Unlock()

	next, ok := UpcomingGame(records)
	if !ok {
		slog.Debug("displayed game final, no next game", "subject", subject.ID, "game", from)
		return false
	}
	id, abbr, _ := series.ResolveOpponent(next, series.FilterContext{
		SubjectTeamID:   subject.TeamID,
		SubjectTeamAbbr: subject.TeamAbbr,
	})
	sw := OpponentSwitch{
		SubjectID:    subject.ID,
		FromGameID:   from,
		NextGameID:   next.GameID,
		OpponentID:   id,
		OpponentAbbr: abbr,
	}
	slog.Info("switching to next opponent", "subject", subject.ID, "from", from, "next", next.GameID, "opponent", abbr)
	if onSwitch != nil {
		onSwitch(sw)
	}
	return true
}

func findGame(records []gamelog.Record, gameID string) (gamelog.Record, bool) {
	for _, r := range records {
		if r.GameID == gameID {
			return r, true
		}
	}
	return gamelog.Record{}, false
}

// UpcomingGame returns the earliest dated game that is scheduled or live.
func UpcomingGame(records []gamelog.Record) (gamelog.Record, bool) {
	var pending []gamelog.Record
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		if r.Status == gamelog.StatusScheduled || r.Status == gamelog.StatusLive {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		return gamelog.Record{}, false
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Date.Before(pending[j].Date) })
	return pending[0], true
}

// FilterContextFor builds the filter context for a subject, taking the
// current opponent from its upcoming game.
func FilterContextFor(subject gamelog.Subject, records []gamelog.Record, now time.Time) series.FilterContext {
	fc := series.FilterContext{
		SubjectTeamID:   subject.TeamID,
		SubjectTeamAbbr: subject.TeamAbbr,
		Now:             now,
		TeamMode:        subject.Kind == gamelog.SubjectTeam,
	}
	if next, ok := UpcomingGame(records); ok {
		fc.CurrentOpponentID, fc.CurrentOpponentAbbr, _ = series.ResolveOpponent(next, fc)
	}
	return fc
}
