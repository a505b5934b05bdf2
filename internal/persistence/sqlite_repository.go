package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// WAL mode reduces write latency by avoiding full fsync on every commit.
	// synchronous=NORMAL is safe with WAL and significantly faster than the default FULL.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}
	repo := &SQLiteRepository{db: db}
	if err := runMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) UpsertSubject(ctx context.Context, s gamelog.Subject) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return upsertSubjectTx(ctx, tx, s)
	})
}

func upsertSubjectTx(ctx context.Context, tx *sql.Tx, s gamelog.Subject) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO subjects(subject_id, kind, name, team_id, team_abbr, updated_at)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(subject_id) DO UPDATE SET
			kind=excluded.kind,
			name=excluded.name,
			team_id=excluded.team_id,
			team_abbr=excluded.team_abbr,
			updated_at=excluded.updated_at`,
		s.ID, string(s.Kind), s.Name, s.TeamID, s.TeamAbbr, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("upsert subject %s: %w", s.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetSubject(ctx context.Context, id string) (*gamelog.Subject, error) {
	var s gamelog.Subject
	var kind string
	err := r.db.QueryRowContext(ctx,
		`SELECT subject_id, kind, name, team_id, team_abbr FROM subjects WHERE subject_id = ?`, id,
	).Scan(&s.ID, &kind, &s.Name, &s.TeamID, &s.TeamAbbr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Kind = gamelog.SubjectKind(kind)
	return &s, nil
}

func (r *SQLiteRepository) ListSubjects(ctx context.Context) ([]gamelog.Subject, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT subject_id, kind, name, team_id, team_abbr FROM subjects`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gamelog.Subject
	for rows.Next() {
		var s gamelog.Subject
		var kind string
		if err := rows.Scan(&s.ID, &kind, &s.Name, &s.TeamID, &s.TeamAbbr); err != nil {
			return nil, err
		}
		s.Kind = gamelog.SubjectKind(kind)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortSubjects(out)
	return out, nil
}

func (r *SQLiteRepository) UpsertGames(ctx context.Context, subjectID string, games []gamelog.Record) (UpsertResult, error) {
	var res UpsertResult
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = upsertGamesTx(ctx, tx, subjectID, games)
		return err
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return res, nil
}

func upsertGamesTx(ctx context.Context, tx *sql.Tx, subjectID string, games []gamelog.Record) (UpsertResult, error) {
	res := UpsertResult{}
	now := formatTime(time.Now())

	for _, g := range games {
		if g.GameID == "" {
			res.Skipped++
			continue
		}
		exists, err := rowExists(ctx, tx, `SELECT 1 FROM games WHERE subject_id = ? AND game_id = ? LIMIT 1`, subjectID, g.GameID)
		if err != nil {
			return UpsertResult{}, err
		}

		var isHome any
		if g.Home != nil {
			isHome = boolToInt(*g.Home)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO games(
			subject_id, game_id, game_date, team_id, team_abbr, opponent_id, opponent_abbr,
			home_team_id, home_team_abbr, away_team_id, away_team_abbr, is_home, minutes, status, updated_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(subject_id, game_id) DO UPDATE SET
			game_date=excluded.game_date,
			team_id=excluded.team_id,
			team_abbr=excluded.team_abbr,
			opponent_id=excluded.opponent_id,
			opponent_abbr=excluded.opponent_abbr,
			home_team_id=excluded.home_team_id,
			home_team_abbr=excluded.home_team_abbr,
			away_team_id=excluded.away_team_id,
			away_team_abbr=excluded.away_team_abbr,
			is_home=excluded.is_home,
			minutes=excluded.minutes,
			status=excluded.status,
			updated_at=excluded.updated_at`,
			subjectID,
			g.GameID,
			formatTime(g.Date),
			g.TeamID,
			g.TeamAbbr,
			g.OpponentID,
			g.OpponentAbbr,
			g.HomeTeamID,
			g.HomeTeamAbbr,
			g.AwayTeamID,
			g.AwayTeamAbbr,
			isHome,
			g.Minutes,
			string(g.Status),
			now,
		); err != nil {
			return UpsertResult{}, fmt.Errorf("upsert game %s: %w", g.GameID, err)
		}

		if err := clearGameChildrenTx(ctx, tx, subjectID, g.GameID); err != nil {
			return UpsertResult{}, err
		}
		if err := insertGameChildrenTx(ctx, tx, subjectID, g); err != nil {
			return UpsertResult{}, err
		}

		if exists {
			res.Updated++
		} else {
			res.Inserted++
		}
	}
	return res, nil
}

func insertGameChildrenTx(ctx context.Context, tx *sql.Tx, subjectID string, g gamelog.Record) error {
	for field, v := range g.Stats {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_stats(subject_id, game_id, field, value) VALUES(?, ?, ?, ?)`,
			subjectID, g.GameID, field, v,
		); err != nil {
			return fmt.Errorf("insert stat %s/%s: %w", g.GameID, field, err)
		}
	}
	for _, p := range g.Periods {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO game_periods(subject_id, game_id, period, team_score, opponent_score) VALUES(?, ?, ?, ?, ?)`,
			subjectID, g.GameID, p.Period, p.TeamScore, p.OpponentScore,
		); err != nil {
			return fmt.Errorf("insert period %s/%d: %w", g.GameID, p.Period, err)
		}
	}
	return nil
}

func clearGameChildrenTx(ctx context.Context, tx *sql.Tx, subjectID, gameID string) error {
	tables := []string{"game_stats", "game_periods"}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE subject_id = ? AND game_id = ?`, table), subjectID, gameID); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) ListGames(ctx context.Context, f GameFilter) ([]gamelog.Record, error) {
	where, args := buildGamesFilterWhere(f)
	q := `SELECT subject_id, game_id, game_date, team_id, team_abbr, opponent_id, opponent_abbr,
		home_team_id, home_team_abbr, away_team_id, away_team_abbr, is_home, minutes, status
		FROM games` + where + ` ORDER BY game_date DESC, game_id ASC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gamelog.Record
	index := make(map[gameKey]int)
	for rows.Next() {
		var g gamelog.Record
		var subjectID, date, status string
		var isHome sql.NullInt64
		if err := rows.Scan(
			&subjectID,
			&g.GameID,
			&date,
			&g.TeamID,
			&g.TeamAbbr,
			&g.OpponentID,
			&g.OpponentAbbr,
			&g.HomeTeamID,
			&g.HomeTeamAbbr,
			&g.AwayTeamID,
			&g.AwayTeamAbbr,
			&isHome,
			&g.Minutes,
			&status,
		); err != nil {
			return nil, err
		}
		g.Date = parseTime(date)
		g.Status = gamelog.GameStatus(status)
		if isHome.Valid {
			home := isHome.Int64 == 1
			g.Home = &home
		}
		index[gameKey{subjectID: subjectID, gameID: g.GameID}] = len(out)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = rows.Close()
	if err := r.loadGameChildren(ctx, f.SubjectID, index, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadGameChildren fills stats and periods. Children are read per subject in
// one pass each rather than per game.
func (r *SQLiteRepository) loadGameChildren(ctx context.Context, subjectID string, index map[gameKey]int, out []gamelog.Record) error {
	if len(out) == 0 {
		return nil
	}
	where, args := "", []any{}
	if subjectID != "" {
		where, args = ` WHERE subject_id = ?`, []any{subjectID}
	}

	statRows, err := r.db.QueryContext(ctx, `SELECT subject_id, game_id, field, value FROM game_stats`+where, args...)
	if err != nil {
		return err
	}
	for statRows.Next() {
		var key gameKey
		var field string
		var v float64
		if err := statRows.Scan(&key.subjectID, &key.gameID, &field, &v); err != nil {
			_ = statRows.Close()
			return err
		}
		i, ok := index[key]
		if !ok {
			continue
		}
		if out[i].Stats == nil {
			out[i].Stats = make(map[string]float64)
		}
		out[i].Stats[field] = v
	}
	if err := statRows.Err(); err != nil {
		_ = statRows.Close()
		return err
	}
	_ = statRows.Close()

	periodRows, err := r.db.QueryContext(ctx,
		`SELECT subject_id, game_id, period, team_score, opponent_score FROM game_periods`+where+` ORDER BY period ASC`, args...)
	if err != nil {
		return err
	}
	defer periodRows.Close()
	for periodRows.Next() {
		var key gameKey
		var p gamelog.PeriodScore
		if err := periodRows.Scan(&key.subjectID, &key.gameID, &p.Period, &p.TeamScore, &p.OpponentScore); err != nil {
			return err
		}
		if i, ok := index[key]; ok {
			out[i].Periods = append(out[i].Periods, p)
		}
	}
	return periodRows.Err()
}

func (r *SQLiteRepository) CountGames(ctx context.Context, f GameFilter) (int, error) {
	where, args := buildGamesFilterWhere(f)
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`+where, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func buildGamesFilterWhere(f GameFilter) (string, []any) {
	where := " WHERE 1=1"
	args := make([]any, 0, 4)
	if f.SubjectID != "" {
		where += ` AND subject_id = ?`
		args = append(args, f.SubjectID)
	}
	if f.OnlyFinal {
		where += ` AND status = ?`
		args = append(args, string(gamelog.StatusFinal))
	}
	if f.FromTime != nil {
		where += ` AND game_date >= ?`
		args = append(args, formatTime(*f.FromTime))
	}
	if f.ToTime != nil {
		where += ` AND game_date != '' AND game_date <= ?`
		args = append(args, formatTime(*f.ToTime))
	}
	return where, args
}

func (r *SQLiteRepository) SaveLines(ctx context.Context, lines []gamelog.LineSnapshot) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return saveLinesTx(ctx, tx, lines)
	})
}

func saveLinesTx(ctx context.Context, tx *sql.Tx, lines []gamelog.LineSnapshot) error {
	for _, l := range lines {
		if _, err := tx.ExecContext(ctx, `INSERT INTO best_lines(subject_id, metric, bookmaker, value, observed_at)
			VALUES(?, ?, ?, ?, ?)
			ON CONFLICT(subject_id, metric, bookmaker) DO UPDATE SET
				value=excluded.value,
				observed_at=excluded.observed_at`,
			l.SubjectID, l.Metric, l.Bookmaker, l.Value, formatTime(l.ObservedAt),
		); err != nil {
			return fmt.Errorf("save line %s/%s/%s: %w", l.SubjectID, l.Metric, l.Bookmaker, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) ListLines(ctx context.Context, subjectID, metric string) ([]gamelog.LineSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT bookmaker, value, observed_at FROM best_lines
		WHERE subject_id = ? AND metric = ? ORDER BY bookmaker ASC`, subjectID, metric)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gamelog.LineSnapshot
	for rows.Next() {
		l := gamelog.LineSnapshot{SubjectID: subjectID, Metric: metric}
		var observed string
		if err := rows.Scan(&l.Bookmaker, &l.Value, &observed); err != nil {
			return nil, err
		}
		l.ObservedAt = parseTime(observed)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SaveLeague(ctx context.Context, lf *gamelog.LeagueFile) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return saveLeagueTx(ctx, tx, lf)
	})
}

// saveLeagueTx replaces the season wholesale. Teams missing from Order are
// appended after it in abbreviation order.
func saveLeagueTx(ctx context.Context, tx *sql.Tx, lf *gamelog.LeagueFile) error {
	if lf == nil {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM league_table WHERE season = ?`, lf.Season); err != nil {
		return fmt.Errorf("clear league %d: %w", lf.Season, err)
	}

	order := make(map[string]int, len(lf.Order))
	for i, team := range lf.Order {
		if _, ok := order[team]; !ok {
			order[team] = i
		}
	}
	var extra []string
	for _, teams := range lf.Metrics {
		for team := range teams {
			if _, ok := order[team]; !ok {
				order[team] = -1
				extra = append(extra, team)
			}
		}
	}
	sort.Strings(extra)
	for i, team := range extra {
		order[team] = len(lf.Order) + i
	}

	for metric, teams := range lf.Metrics {
		for team, v := range teams {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO league_table(season, metric, team_abbr, team_order, value) VALUES(?, ?, ?, ?, ?)`,
				lf.Season, metric, team, order[team], v,
			); err != nil {
				return fmt.Errorf("insert league %d %s/%s: %w", lf.Season, metric, team, err)
			}
		}
	}
	return nil
}

func (r *SQLiteRepository) LoadLeague(ctx context.Context, season int) (*gamelog.LeagueFile, error) {
	if season == 0 {
		var latest sql.NullInt64
		if err := r.db.QueryRowContext(ctx, `SELECT MAX(season) FROM league_table`).Scan(&latest); err != nil {
			return nil, err
		}
		if !latest.Valid {
			return nil, nil
		}
		season = int(latest.Int64)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT metric, team_abbr, team_order, value FROM league_table
		WHERE season = ? ORDER BY team_order ASC, team_abbr ASC`, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lf := &gamelog.LeagueFile{Season: season, Metrics: make(map[string]map[string]float64)}
	seen := make(map[string]bool)
	for rows.Next() {
		var metric, team string
		var pos int
		var v float64
		if err := rows.Scan(&metric, &team, &pos, &v); err != nil {
			return nil, err
		}
		if !seen[team] {
			seen[team] = true
			lf.Order = append(lf.Order, team)
		}
		if lf.Metrics[metric] == nil {
			lf.Metrics[metric] = make(map[string]float64)
		}
		lf.Metrics[metric][team] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(seen) == 0 {
		return nil, nil
	}
	return lf, nil
}

func (r *SQLiteRepository) SaveBoxScores(ctx context.Context, boxes []gamelog.BoxScore) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return saveBoxScoresTx(ctx, tx, boxes)
	})
}

func saveBoxScoresTx(ctx context.Context, tx *sql.Tx, boxes []gamelog.BoxScore) error {
	for _, b := range boxes {
		if b.GameID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO box_scores(game_id, game_date) VALUES(?, ?)
			ON CONFLICT(game_id) DO UPDATE SET game_date=excluded.game_date`,
			b.GameID, formatTime(b.Date),
		); err != nil {
			return fmt.Errorf("upsert box score %s: %w", b.GameID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM box_rows WHERE game_id = ?`, b.GameID); err != nil {
			return err
		}
		for i, row := range b.Rows {
			stats, err := json.Marshal(row.Stats)
			if err != nil {
				return fmt.Errorf("encode box row stats %s/%d: %w", b.GameID, i, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO box_rows(
				game_id, row_index, player_name, team_id, team_abbr, start_position, stats_json
			) VALUES(?, ?, ?, ?, ?, ?, ?)`,
				b.GameID, i, row.PlayerName, row.TeamID, rowTeamAbbr(row), row.StartPosition, string(stats),
			); err != nil {
				return fmt.Errorf("insert box row %s/%d: %w", b.GameID, i, err)
			}
		}
	}
	return nil
}

func (r *SQLiteRepository) ListBoxScores(ctx context.Context, teamAbbr string, from, to time.Time) ([]gamelog.BoxScore, error) {
	q := `SELECT b.game_id, b.game_date, r.player_name, r.team_id, r.team_abbr, r.start_position, r.stats_json
		FROM box_scores b
		JOIN box_rows r ON r.game_id = b.game_id
		WHERE b.game_id IN (SELECT game_id FROM box_rows WHERE team_abbr = ?)`
	args := []any{gamelog.NormalizeAbbr(teamAbbr)}
	if !from.IsZero() {
		q += ` AND b.game_date >= ?`
		args = append(args, formatTime(from))
	}
	if !to.IsZero() {
		q += ` AND b.game_date < ?`
		args = append(args, formatTime(to))
	}
	q += ` ORDER BY b.game_date DESC, b.game_id ASC, r.row_index ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gamelog.BoxScore
	for rows.Next() {
		var gameID, date, stats string
		var row gamelog.BoxRow
		if err := rows.Scan(&gameID, &date, &row.PlayerName, &row.TeamID, &row.TeamAbbr, &row.StartPosition, &stats); err != nil {
			return nil, err
		}
		if stats != "" && stats != "null" {
			if err := json.Unmarshal([]byte(stats), &row.Stats); err != nil {
				return nil, fmt.Errorf("decode box row stats %s: %w", gameID, err)
			}
		}
		if n := len(out); n == 0 || out[n-1].GameID != gameID {
			out = append(out, gamelog.BoxScore{GameID: gameID, Date: parseTime(date)})
		}
		out[len(out)-1].Rows = append(out[len(out)-1].Rows, row)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCursor(ctx context.Context, sourcePath string) (*ImportCursor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT source_path, batch_id, size, mod_time, games, is_fully_imported, updated_at
		FROM import_cursors WHERE source_path = ?`, sourcePath)
	var c ImportCursor
	var modTime, updatedAt string
	var isFullyImported int
	if err := row.Scan(
		&c.SourcePath,
		&c.BatchID,
		&c.Size,
		&modTime,
		&c.Games,
		&isFullyImported,
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	c.IsFullyImported = isFullyImported == 1
	c.ModTime = parseTime(modTime)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func (r *SQLiteRepository) SaveCursor(ctx context.Context, c ImportCursor) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return saveCursorTx(ctx, tx, c)
	})
}

func (r *SQLiteRepository) MarkFullyImported(ctx context.Context, sourcePath string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE import_cursors SET is_fully_imported=1, updated_at=? WHERE source_path=?`,
		formatTime(time.Now()),
		sourcePath,
	)
	return err
}

func (r *SQLiteRepository) SaveImportBatch(ctx context.Context, f *gamelog.File, c ImportCursor) (UpsertResult, error) {
	var res UpsertResult
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := upsertSubjectTx(ctx, tx, f.Subject); err != nil {
			return err
		}
		var err error
		res, err = upsertGamesTx(ctx, tx, f.Subject.ID, f.Games)
		if err != nil {
			return err
		}
		if err := saveLinesTx(ctx, tx, f.Lines); err != nil {
			return err
		}
		if err := saveLeagueTx(ctx, tx, f.League); err != nil {
			return err
		}
		if err := saveBoxScoresTx(ctx, tx, f.BoxScores); err != nil {
			return err
		}
		if err := saveDepthChartsTx(ctx, tx, f.DepthCharts); err != nil {
			return err
		}
		return saveCursorTx(ctx, tx, c)
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return res, nil
}

func (r *SQLiteRepository) SaveDepthCharts(ctx context.Context, charts map[string]map[string][]string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return saveDepthChartsTx(ctx, tx, charts)
	})
}

func saveDepthChartsTx(ctx context.Context, tx *sql.Tx, charts map[string]map[string][]string) error {
	for team, byPos := range charts {
		team = gamelog.NormalizeAbbr(team)
		if _, err := tx.ExecContext(ctx, `DELETE FROM depth_charts WHERE team_abbr = ?`, team); err != nil {
			return fmt.Errorf("clear depth chart %s: %w", team, err)
		}
		for pos, names := range byPos {
			for slot, name := range names {
				if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO depth_charts(team_abbr, position, slot, player_name)
					VALUES(?, ?, ?, ?)`, team, strings.ToUpper(pos), slot, name); err != nil {
					return fmt.Errorf("insert depth chart %s/%s: %w", team, pos, err)
				}
			}
		}
	}
	return nil
}

func (r *SQLiteRepository) LoadDepthCharts(ctx context.Context) (map[string]map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT team_abbr, position, player_name FROM depth_charts
		ORDER BY team_abbr, position, slot`)
	if err != nil {
		return nil, fmt.Errorf("query depth charts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]map[string][]string)
	for rows.Next() {
		var team, pos, name string
		if err := rows.Scan(&team, &pos, &name); err != nil {
			return nil, err
		}
		if out[team] == nil {
			out[team] = make(map[string][]string)
		}
		out[team][pos] = append(out[team][pos], name)
	}
	return out, rows.Err()
}

func saveCursorTx(ctx context.Context, tx *sql.Tx, c ImportCursor) error {
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO import_cursors(
		source_path, batch_id, size, mod_time, games, is_fully_imported, updated_at
	) VALUES(?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(source_path) DO UPDATE SET
		batch_id=excluded.batch_id,
		size=excluded.size,
		mod_time=excluded.mod_time,
		games=excluded.games,
		is_fully_imported=excluded.is_fully_imported,
		updated_at=excluded.updated_at`,
		c.SourcePath,
		c.BatchID,
		c.Size,
		formatTime(c.ModTime),
		c.Games,
		boolToInt(c.IsFullyImported),
		formatTime(updatedAt),
	)
	return err
}

func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var probe int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&probe)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
