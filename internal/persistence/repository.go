package persistence

import (
	"context"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type GameFilter struct {
	SubjectID string
	FromTime  *time.Time
	ToTime    *time.Time
	OnlyFinal bool
	// Limit == 0 means no limit.
	Limit int
}

type UpsertResult struct {
	Inserted int
	Updated  int
	Skipped  int
}

// ImportCursor remembers what the importer last saw of one export file so an
// unchanged file is not parsed again.
type ImportCursor struct {
	SourcePath      string
	BatchID         string
	Size            int64
	ModTime         time.Time
	Games           int
	IsFullyImported bool
	UpdatedAt       time.Time
}

// Unchanged reports whether a file with the given size and mtime was already
// fully imported under this cursor.
func (c *ImportCursor) Unchanged(size int64, modTime time.Time) bool {
	return c != nil && c.IsFullyImported && c.Size == size && c.ModTime.Equal(modTime)
}

type GameLogRepository interface {
	UpsertSubject(ctx context.Context, s gamelog.Subject) error
	GetSubject(ctx context.Context, id string) (*gamelog.Subject, error)
	ListSubjects(ctx context.Context) ([]gamelog.Subject, error)
	UpsertGames(ctx context.Context, subjectID string, games []gamelog.Record) (UpsertResult, error)
	// ListGames returns games newest first; undated games sort last.
	ListGames(ctx context.Context, f GameFilter) ([]gamelog.Record, error)
	CountGames(ctx context.Context, f GameFilter) (int, error)
}

type BestLineRepository interface {
	SaveLines(ctx context.Context, lines []gamelog.LineSnapshot) error
	// ListLines returns the latest snapshot per bookmaker, ordered by bookmaker.
	ListLines(ctx context.Context, subjectID, metric string) ([]gamelog.LineSnapshot, error)
}

type LeagueRepository interface {
	SaveLeague(ctx context.Context, lf *gamelog.LeagueFile) error
	// LoadLeague returns nil, nil when no table is stored. season == 0 loads
	// the most recent season.
	LoadLeague(ctx context.Context, season int) (*gamelog.LeagueFile, error)
}

type BoxScoreRepository interface {
	SaveBoxScores(ctx context.Context, boxes []gamelog.BoxScore) error
	// ListBoxScores returns box scores involving the team within [from, to),
	// newest first. A zero bound is open.
	ListBoxScores(ctx context.Context, teamAbbr string, from, to time.Time) ([]gamelog.BoxScore, error)
}

// DepthChartRepository stores per-team depth charts as position -> names.
// Saving a team replaces its previous chart.
type DepthChartRepository interface {
	SaveDepthCharts(ctx context.Context, charts map[string]map[string][]string) error
	LoadDepthCharts(ctx context.Context) (map[string]map[string][]string, error)
}

type CursorRepository interface {
	GetCursor(ctx context.Context, sourcePath string) (*ImportCursor, error)
	SaveCursor(ctx context.Context, c ImportCursor) error
	// MarkFullyImported atomically sets is_fully_imported=1 on an existing cursor.
	// If no cursor row exists yet the call is a no-op.
	MarkFullyImported(ctx context.Context, sourcePath string) error
}

type ImportRepository interface {
	GameLogRepository
	BestLineRepository
	LeagueRepository
	BoxScoreRepository
	DepthChartRepository
	CursorRepository
}

// ImportBatchRepository writes one decoded export and its cursor atomically.
type ImportBatchRepository interface {
	ImportRepository
	SaveImportBatch(ctx context.Context, f *gamelog.File, cursor ImportCursor) (UpsertResult, error)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func inGameFilter(rec gamelog.Record, f GameFilter) bool {
	if f.OnlyFinal && !rec.IsComplete() {
		return false
	}
	if f.FromTime != nil && (rec.Date.IsZero() || rec.Date.Before(*f.FromTime)) {
		return false
	}
	if f.ToTime != nil && (rec.Date.IsZero() || rec.Date.After(*f.ToTime)) {
		return false
	}
	return true
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
