package persistence

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
)

type gameKey struct {
	subjectID string
	gameID    string
}

type lineKey struct {
	subjectID string
	metric    string
	bookmaker string
}

type MemoryRepository struct {
	mu       sync.RWMutex
	subjects map[string]gamelog.Subject
	games    map[gameKey]gamelog.Record
	lines    map[lineKey]gamelog.LineSnapshot
	leagues  map[int]*gamelog.LeagueFile
	boxes    map[string]gamelog.BoxScore
	depth    map[string]map[string][]string
	cursors  map[string]ImportCursor
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		subjects: make(map[string]gamelog.Subject),
		games:    make(map[gameKey]gamelog.Record),
		lines:    make(map[lineKey]gamelog.LineSnapshot),
		leagues:  make(map[int]*gamelog.LeagueFile),
		boxes:    make(map[string]gamelog.BoxScore),
		depth:    make(map[string]map[string][]string),
		cursors:  make(map[string]ImportCursor),
	}
}

func (r *MemoryRepository) UpsertSubject(_ context.Context, s gamelog.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects[s.ID] = s
	return nil
}

func (r *MemoryRepository) GetSubject(_ context.Context, id string) (*gamelog.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subjects[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *MemoryRepository) ListSubjects(_ context.Context) ([]gamelog.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]gamelog.Subject, 0, len(r.subjects))
	for _, s := range r.subjects {
		out = append(out, s)
	}
	sortSubjects(out)
	return out, nil
}

func (r *MemoryRepository) UpsertGames(_ context.Context, subjectID string, games []gamelog.Record) (UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertGamesLocked(subjectID, games), nil
}

func (r *MemoryRepository) upsertGamesLocked(subjectID string, games []gamelog.Record) UpsertResult {
	res := UpsertResult{}
	for _, g := range games {
		if g.GameID == "" {
			res.Skipped++
			continue
		}
		key := gameKey{subjectID: subjectID, gameID: g.GameID}
		if _, ok := r.games[key]; ok {
			res.Updated++
		} else {
			res.Inserted++
		}
		r.games[key] = cloneRecord(g)
	}
	return res
}

func (r *MemoryRepository) ListGames(_ context.Context, f GameFilter) ([]gamelog.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]gamelog.Record, 0)
	for key, g := range r.games {
		if f.SubjectID != "" && key.subjectID != f.SubjectID {
			continue
		}
		if !inGameFilter(g, f) {
			continue
		}
		out = append(out, cloneRecord(g))
	}
	sortGamesNewestFirst(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MemoryRepository) CountGames(ctx context.Context, f GameFilter) (int, error) {
	f.Limit = 0
	games, err := r.ListGames(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(games), nil
}

func (r *MemoryRepository) SaveLines(_ context.Context, lines []gamelog.LineSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveLinesLocked(lines)
	return nil
}

func (r *MemoryRepository) saveLinesLocked(lines []gamelog.LineSnapshot) {
	for _, l := range lines {
		r.lines[lineKey{subjectID: l.SubjectID, metric: l.Metric, bookmaker: l.Bookmaker}] = l
	}
}

func (r *MemoryRepository) ListLines(_ context.Context, subjectID, metric string) ([]gamelog.LineSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []gamelog.LineSnapshot
	for key, l := range r.lines {
		if key.subjectID == subjectID && key.metric == metric {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bookmaker < out[j].Bookmaker })
	return out, nil
}

func (r *MemoryRepository) SaveLeague(_ context.Context, lf *gamelog.LeagueFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveLeagueLocked(lf)
	return nil
}

func (r *MemoryRepository) saveLeagueLocked(lf *gamelog.LeagueFile) {
	if lf == nil {
		return
	}
	r.leagues[lf.Season] = cloneLeague(lf)
}

func (r *MemoryRepository) LoadLeague(_ context.Context, season int) (*gamelog.LeagueFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if season == 0 {
		found := false
		for s := range r.leagues {
			if !found || s > season {
				season, found = s, true
			}
		}
		if !found {
			return nil, nil
		}
	}
	lf, ok := r.leagues[season]
	if !ok {
		return nil, nil
	}
	return cloneLeague(lf), nil
}

func (r *MemoryRepository) SaveBoxScores(_ context.Context, boxes []gamelog.BoxScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveBoxScoresLocked(boxes)
	return nil
}

func (r *MemoryRepository) saveBoxScoresLocked(boxes []gamelog.BoxScore) {
	for _, b := range boxes {
		if b.GameID == "" {
			continue
		}
		r.boxes[b.GameID] = cloneBox(b)
	}
}

func (r *MemoryRepository) ListBoxScores(_ context.Context, teamAbbr string, from, to time.Time) ([]gamelog.BoxScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	abbr := gamelog.NormalizeAbbr(teamAbbr)
	var out []gamelog.BoxScore
	for _, b := range r.boxes {
		if !inRange(b.Date, from, to) || !boxInvolves(b, abbr) {
			continue
		}
		out = append(out, cloneBox(b))
	}
	sortBoxesNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository) SaveDepthCharts(_ context.Context, charts map[string]map[string][]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveDepthChartsLocked(charts)
	return nil
}

func (r *MemoryRepository) saveDepthChartsLocked(charts map[string]map[string][]string) {
	for team, byPos := range charts {
		r.depth[gamelog.NormalizeAbbr(team)] = cloneDepth(byPos)
	}
}

func (r *MemoryRepository) LoadDepthCharts(_ context.Context) (map[string]map[string][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]map[string][]string, len(r.depth))
	for team, byPos := range r.depth {
		out[team] = cloneDepth(byPos)
	}
	return out, nil
}

func cloneDepth(byPos map[string][]string) map[string][]string {
	out := make(map[string][]string, len(byPos))
	for pos, names := range byPos {
		out[strings.ToUpper(pos)] = append([]string(nil), names...)
	}
	return out
}

func (r *MemoryRepository) GetCursor(_ context.Context, sourcePath string) (*ImportCursor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cursors[sourcePath]
	if !ok {
		return nil, nil
	}
	copyCursor := c
	return &copyCursor, nil
}

func (r *MemoryRepository) SaveCursor(_ context.Context, c ImportCursor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCursorLocked(c)
	return nil
}

func (r *MemoryRepository) saveCursorLocked(c ImportCursor) {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	r.cursors[c.SourcePath] = c
}

func (r *MemoryRepository) MarkFullyImported(_ context.Context, sourcePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cursors[sourcePath]
	if !ok {
		return nil
	}
	c.IsFullyImported = true
	c.UpdatedAt = time.Now()
	r.cursors[sourcePath] = c
	return nil
}

func (r *MemoryRepository) SaveImportBatch(_ context.Context, f *gamelog.File, c ImportCursor) (UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subjects[f.Subject.ID] = f.Subject
	res := r.upsertGamesLocked(f.Subject.ID, f.Games)
	r.saveLinesLocked(f.Lines)
	r.saveLeagueLocked(f.League)
	r.saveBoxScoresLocked(f.BoxScores)
	r.saveDepthChartsLocked(f.DepthCharts)
	r.saveCursorLocked(c)
	return res, nil
}

func sortSubjects(s []gamelog.Subject) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Name != s[j].Name {
			return s[i].Name < s[j].Name
		}
		return s[i].ID < s[j].ID
	})
}

func sortGamesNewestFirst(games []gamelog.Record) {
	sort.Slice(games, func(i, j int) bool {
		di, dj := formatTime(games[i].Date), formatTime(games[j].Date)
		if di != dj {
			return di > dj
		}
		return games[i].GameID < games[j].GameID
	})
}

func sortBoxesNewestFirst(boxes []gamelog.BoxScore) {
	sort.Slice(boxes, func(i, j int) bool {
		di, dj := formatTime(boxes[i].Date), formatTime(boxes[j].Date)
		if di != dj {
			return di > dj
		}
		return boxes[i].GameID < boxes[j].GameID
	})
}

func boxInvolves(b gamelog.BoxScore, abbr string) bool {
	for _, row := range b.Rows {
		if rowTeamAbbr(row) == abbr {
			return true
		}
	}
	return false
}

func rowTeamAbbr(row gamelog.BoxRow) string {
	if row.TeamAbbr == "" && row.TeamID != 0 {
		return gamelog.AbbrForID(row.TeamID)
	}
	return row.TeamAbbr
}

func cloneRecord(g gamelog.Record) gamelog.Record {
	cp := g
	if g.Home != nil {
		home := *g.Home
		cp.Home = &home
	}
	if g.Stats != nil {
		cp.Stats = make(map[string]float64, len(g.Stats))
		for k, v := range g.Stats {
			cp.Stats[k] = v
		}
	}
	cp.Periods = append([]gamelog.PeriodScore(nil), g.Periods...)
	return cp
}

func cloneBox(b gamelog.BoxScore) gamelog.BoxScore {
	cp := gamelog.BoxScore{GameID: b.GameID, Date: b.Date, Rows: make([]gamelog.BoxRow, len(b.Rows))}
	for i, row := range b.Rows {
		cp.Rows[i] = row
		cp.Rows[i].TeamAbbr = rowTeamAbbr(row)
		if row.Stats != nil {
			cp.Rows[i].Stats = make(map[string]float64, len(row.Stats))
			for k, v := range row.Stats {
				cp.Rows[i].Stats[k] = v
			}
		}
	}
	return cp
}

func cloneLeague(lf *gamelog.LeagueFile) *gamelog.LeagueFile {
	cp := &gamelog.LeagueFile{
		Season:  lf.Season,
		Order:   append([]string(nil), lf.Order...),
		Metrics: make(map[string]map[string]float64, len(lf.Metrics)),
	}
	for m, teams := range lf.Metrics {
		inner := make(map[string]float64, len(teams))
		for team, v := range teams {
			inner[team] = v
		}
		cp.Metrics[m] = inner
	}
	return cp
}
