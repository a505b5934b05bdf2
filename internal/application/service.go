package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AkatukiSora/gamelog-lines/internal/bestline"
	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/persistence"
	"github.com/AkatukiSora/gamelog-lines/internal/ranking"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
	"github.com/AkatukiSora/gamelog-lines/internal/watcher"
)

// AppService is the interface that the UI layer depends on for imports and
// game log queries. application.Service satisfies this interface.
type AppService interface {
	ImportDir(ctx context.Context, dir string, onProgress func(ImportProgress)) (ImportSummary, error)
	ImportFile(ctx context.Context, path string) (ImportResult, error)
	Subjects(ctx context.Context) ([]gamelog.Subject, error)
	// GameLog returns the subject and its games newest first. Returns a zero
	// subject and no error when the subject is unknown.
	GameLog(ctx context.Context, subjectID string) (gamelog.Subject, []gamelog.Record, error)
	BestLine(ctx context.Context, subjectID string, metric series.MetricID) (float64, bool)
	LeagueTable(ctx context.Context) (*ranking.LeagueTable, error)
	OpponentRank(ctx context.Context, opponentAbbr, metric string) (OpponentRank, error)
	DvP(ctx context.Context, teamID int, metric string, games int) (ranking.DvPResult, error)
	Tracker() *OpponentTracker
	Close() error
}

type Config struct {
	Repo persistence.ImportBatchRepository
	// BestLines defaults to the persisted snapshots.
	BestLines bestline.Provider
	// RankCache is shared by reference; nil creates a private one.
	RankCache        *ranking.Cache
	Pattern          string
	SeasonStartMonth time.Month
	// OnImported is called after each file that was actually written.
	OnImported func(ImportResult)
	// OnOpponentSwitch receives the tracker's single switch per displayed game.
	OnOpponentSwitch func(OpponentSwitch)
	// Now anchors season lookups. Defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	repo       persistence.ImportBatchRepository
	best       bestline.Provider
	ranks      *ranking.Cache
	pattern    string
	startMonth time.Month
	onImported func(ImportResult)
	tracker    *OpponentTracker
	now        func() time.Time

	leagueMu sync.Mutex
	league   *ranking.LeagueTable

	// nil until first use; reset by imports carrying depth charts
	depthMu sync.Mutex
	depth   map[string]ranking.DepthChart

	// game log cache keyed by subject + stored game count
	cacheMu  sync.Mutex
	logCache map[logCacheKey]cachedLog
}

type logCacheKey struct {
	subjectID string
	games     int
}

type cachedLog struct {
	subject gamelog.Subject
	records []gamelog.Record
}

func NewService(cfg Config) *Service {
	repo := cfg.Repo
	if repo == nil {
		repo = persistence.NewMemoryRepository()
	}
	best := cfg.BestLines
	if best == nil {
		best = bestline.NewRepositoryProvider(repo)
	}
	ranks := cfg.RankCache
	if ranks == nil {
		ranks = ranking.NewCache()
	}
	startMonth := cfg.SeasonStartMonth
	if startMonth == 0 {
		startMonth = series.DefaultSeasonStartMonth
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:       repo,
		best:       best,
		ranks:      ranks,
		pattern:    cfg.Pattern,
		startMonth: startMonth,
		onImported: cfg.OnImported,
		tracker:    NewOpponentTracker(cfg.OnOpponentSwitch),
		now:        now,
	}
}

// ImportProgress carries per-file progress information during a directory import.
type ImportProgress struct {
	// Current is the 1-based index of the file currently being written.
	Current int
	// Total is the number of files to import (skipped files excluded).
	Total int
	Path  string
	// Skipped is the number of unchanged files.
	Skipped int
}

type ImportSummary struct {
	Files    int
	Imported int
	Skipped  int
	Games    int
}

type ImportResult struct {
	Path      string
	SubjectID string
	BatchID   string
	Games     int
	Upsert    persistence.UpsertResult
	Skipped   bool
	League    bool
}

// parseResult holds the outcome of decoding a single export.
type parseResult struct {
	path string
	file *gamelog.File
	info os.FileInfo
	err  error
}

// parseWorker decodes a single export and sends the result on out.
// It does not touch the database.
func parseWorker(ctx context.Context, path string, out chan<- parseResult) {
	result := parseResult{path: path}
	if err := ctx.Err(); err != nil {
		result.err = err
		out <- result
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		result.err = err
		out <- result
		return
	}
	f, err := gamelog.ReadFile(path)
	if err != nil {
		result.err = err
		out <- result
		return
	}
	result.file = f
	result.info = info
	out <- result
}

// ImportDir imports every export in dir, oldest first. Exports whose cursor
// says they are unchanged are skipped. Files are decoded concurrently by a
// small worker pool; the DB writes are serialized in file order. A file that
// fails to decode is logged and skipped. onProgress may be nil.
func (s *Service) ImportDir(ctx context.Context, dir string, onProgress func(ImportProgress)) (ImportSummary, error) {
	if err := ctx.Err(); err != nil {
		return ImportSummary{}, err
	}

	paths, err := watcher.ListExports(dir, s.pattern)
	if err != nil {
		return ImportSummary{}, err
	}
	summary := ImportSummary{Files: len(paths)}
	if len(paths) == 0 {
		slog.Info("no exports found", "dir", dir)
		return summary, nil
	}

	// ListExports returns newest first. Import oldest -> newest so later
	// exports win on conflicting games.
	toImport := make([]string, 0, len(paths))
	for i := len(paths) - 1; i >= 0; i-- {
		p := paths[i]
		if s.unchanged(ctx, p) {
			slog.Debug("skipping unchanged export", "path", p)
			summary.Skipped++
			continue
		}
		toImport = append(toImport, p)
	}
	slog.Info("importing exports", "dir", dir, "files", len(toImport), "skipped", summary.Skipped)
	if len(toImport) == 0 {
		return summary, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > 4 {
		workers = 4
	}
	if workers > len(toImport) {
		workers = len(toImport)
	}

	jobCh := make(chan string, len(toImport))
	resultCh := make(chan parseResult, workers*2)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobCh {
				parseWorker(ctx, path, resultCh)
			}
		}()
	}
	for _, p := range toImport {
		jobCh <- p
	}
	close(jobCh)
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Results arrive out of order; collect them and write in file order.
	pathIdx := make(map[string]int, len(toImport))
	for i, p := range toImport {
		pathIdx[p] = i
	}
	collected := make([]parseResult, len(toImport))
	for res := range resultCh {
		collected[pathIdx[res.path]] = res
	}

	prog := ImportProgress{Total: len(toImport), Skipped: summary.Skipped}
	for _, res := range collected {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		prog.Current++
		prog.Path = res.path
		if res.err != nil {
			slog.Warn("failed to decode export", "path", res.path, "error", res.err)
			if onProgress != nil {
				onProgress(prog)
			}
			continue
		}
		r, err := s.save(ctx, res.path, res.file, res.info)
		if err != nil {
			return summary, fmt.Errorf("save %q: %w", res.path, err)
		}
		summary.Imported++
		summary.Games += r.Games
		if onProgress != nil {
			onProgress(prog)
		}
	}

	slog.Info("export import complete", "dir", dir, "imported", summary.Imported, "skipped", summary.Skipped, "games", summary.Games)
	return summary, nil
}

// ImportFile imports one export unless its cursor says it is unchanged.
func (s *Service) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("stat export: %w", err)
	}
	cursor, err := s.repo.GetCursor(ctx, path)
	if err != nil {
		slog.Warn("failed to load cursor, importing anyway", "path", path, "error", err)
		cursor = nil
	}
	if cursor.Unchanged(info.Size(), info.ModTime()) {
		return ImportResult{Path: path, Skipped: true}, nil
	}

	f, err := gamelog.ReadFile(path)
	if err != nil {
		return ImportResult{}, err
	}
	return s.save(ctx, path, f, info)
}

func (s *Service) unchanged(ctx context.Context, path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	cursor, err := s.repo.GetCursor(ctx, path)
	if err != nil {
		return false
	}
	return cursor.Unchanged(info.Size(), info.ModTime())
}

func (s *Service) save(ctx context.Context, path string, f *gamelog.File, info os.FileInfo) (ImportResult, error) {
	cursor := persistence.ImportCursor{
		SourcePath:      path,
		BatchID:         uuid.NewString(),
		Size:            info.Size(),
		ModTime:         info.ModTime(),
		Games:           len(f.Games),
		IsFullyImported: true,
		UpdatedAt:       time.Now(),
	}
	upsert, err := s.repo.SaveImportBatch(ctx, f, cursor)
	if err != nil {
		return ImportResult{}, err
	}

	s.invalidateLogCache()
	if f.League != nil {
		s.leagueMu.Lock()
		s.league = nil
		s.leagueMu.Unlock()
		s.ranks.Clear()
	}
	if len(f.DepthCharts) > 0 {
		s.depthMu.Lock()
		s.depth = nil
		s.depthMu.Unlock()
	}

	res := ImportResult{
		Path:      path,
		SubjectID: f.Subject.ID,
		BatchID:   cursor.BatchID,
		Games:     len(f.Games),
		Upsert:    upsert,
		League:    f.League != nil,
	}
	slog.Debug("export imported", "path", path, "subject", f.Subject.ID, "batch", cursor.BatchID,
		"inserted", upsert.Inserted, "updated", upsert.Updated)

	if len(f.Games) > 0 {
		s.tracker.Observe(f.Subject, f.Games)
	}
	if s.onImported != nil {
		s.onImported(res)
	}
	return res, nil
}

func (s *Service) Subjects(ctx context.Context) ([]gamelog.Subject, error) {
	return s.repo.ListSubjects(ctx)
}

// GameLog returns the stored games of a subject, newest first. Results are
// cached per stored game count; any import clears the cache.
func (s *Service) GameLog(ctx context.Context, subjectID string) (gamelog.Subject, []gamelog.Record, error) {
	subj, err := s.repo.GetSubject(ctx, subjectID)
	if err != nil {
		return gamelog.Subject{}, nil, fmt.Errorf("get subject %s: %w", subjectID, err)
	}
	if subj == nil {
		return gamelog.Subject{}, nil, nil
	}

	f := persistence.GameFilter{SubjectID: subjectID}
	count, err := s.repo.CountGames(ctx, f)
	if err != nil {
		return gamelog.Subject{}, nil, err
	}
	key := logCacheKey{subjectID: subjectID, games: count}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if cached, ok := s.logCache[key]; ok {
		return cached.subject, cached.records, nil
	}

	records, err := s.repo.ListGames(ctx, f)
	if err != nil {
		return gamelog.Subject{}, nil, err
	}
	if s.logCache == nil {
		s.logCache = make(map[logCacheKey]cachedLog)
	}
	// Keep cache small: evict all entries if >= 8.
	if len(s.logCache) >= 8 {
		s.logCache = make(map[logCacheKey]cachedLog)
	}
	s.logCache[key] = cachedLog{subject: *subj, records: records}
	return *subj, records, nil
}

func (s *Service) invalidateLogCache() {
	s.cacheMu.Lock()
	s.logCache = nil
	s.cacheMu.Unlock()
}

// BestLine returns the best known line or the metric's neutral default.
func (s *Service) BestLine(ctx context.Context, subjectID string, metric series.MetricID) (float64, bool) {
	return bestline.Resolve(ctx, s.best, subjectID, metric)
}

func (s *Service) Tracker() *OpponentTracker { return s.tracker }

// OnGameStatus feeds a status update for the subject's games to the
// opponent tracker.
func (s *Service) OnGameStatus(subject gamelog.Subject, records []gamelog.Record) bool {
	return s.tracker.Observe(subject, records)
}

func (s *Service) Close() error {
	if c, ok := s.repo.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
