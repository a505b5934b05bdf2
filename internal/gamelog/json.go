package gamelog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// File is the on-disk game log export read by the importer and the watcher.
type File struct {
	Subject   Subject
	Games     []Record
	Lines     []LineSnapshot
	League    *LeagueFile
	BoxScores []BoxScore

	// DepthCharts maps team abbreviation -> position -> player names.
	DepthCharts map[string]map[string][]string
}

// LeagueFile carries the league reference table: per-metric values keyed by
// team abbreviation, plus the canonical team order used for tie breaks.
type LeagueFile struct {
	Season  int
	Order   []string
	Metrics map[string]map[string]float64
}

type fileJSON struct {
	Subject   subjectJSON    `json:"subject"`
	Games     []recordJSON   `json:"games"`
	Lines     []lineJSON     `json:"lines,omitempty"`
	League    *leagueJSON    `json:"league,omitempty"`
	BoxScores []boxScoreJSON `json:"box_scores,omitempty"`

	DepthCharts map[string]map[string][]string `json:"depth_charts,omitempty"`
}

type subjectJSON struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	TeamID   int    `json:"team_id,omitempty"`
	TeamAbbr string `json:"team_abbr,omitempty"`
}

type periodJSON struct {
	Period   int `json:"period"`
	Team     int `json:"team"`
	Opponent int `json:"opponent"`
}

type recordJSON struct {
	GameID       string             `json:"game_id"`
	Date         string             `json:"date"`
	TeamID       int                `json:"team_id,omitempty"`
	TeamAbbr     string             `json:"team_abbr,omitempty"`
	OpponentID   int                `json:"opponent_id,omitempty"`
	OpponentAbbr string             `json:"opponent_abbr,omitempty"`
	HomeTeamID   int                `json:"home_team_id,omitempty"`
	HomeTeamAbbr string             `json:"home_team_abbr,omitempty"`
	AwayTeamID   int                `json:"away_team_id,omitempty"`
	AwayTeamAbbr string             `json:"away_team_abbr,omitempty"`
	Home         *bool              `json:"home,omitempty"`
	Minutes      float64            `json:"minutes"`
	Status       string             `json:"status,omitempty"`
	Stats        map[string]float64 `json:"stats,omitempty"`
	Periods      []periodJSON       `json:"periods,omitempty"`
}

type lineJSON struct {
	Metric     string  `json:"metric"`
	Bookmaker  string  `json:"bookmaker"`
	Value      float64 `json:"value"`
	ObservedAt string  `json:"observed_at,omitempty"`
}

type leagueJSON struct {
	Season  int                           `json:"season"`
	Order   []string                      `json:"order,omitempty"`
	Metrics map[string]map[string]float64 `json:"metrics"`
}

type boxRowJSON struct {
	Player        string             `json:"player"`
	TeamID        int                `json:"team_id,omitempty"`
	TeamAbbr      string             `json:"team_abbr,omitempty"`
	StartPosition string             `json:"start_position,omitempty"`
	Stats         map[string]float64 `json:"stats"`
}

type boxScoreJSON struct {
	GameID string       `json:"game_id"`
	Date   string       `json:"date,omitempty"`
	Rows   []boxRowJSON `json:"rows"`
}

// ReadFile decodes an export file from disk.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open game log %s: %w", path, err)
	}
	defer f.Close()
	out, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode game log %s: %w", path, err)
	}
	return out, nil
}

// Decode reads one export document. Records with an unparseable date keep a
// zero Date; the filter engine sorts those last.
func Decode(r io.Reader) (*File, error) {
	var raw fileJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.Subject.ID) == "" {
		return nil, fmt.Errorf("missing subject id")
	}

	out := &File{
		Subject: Subject{
			ID:       raw.Subject.ID,
			Kind:     parseKind(raw.Subject.Kind),
			Name:     raw.Subject.Name,
			TeamID:   raw.Subject.TeamID,
			TeamAbbr: NormalizeAbbr(raw.Subject.TeamAbbr),
		},
		Games: make([]Record, 0, len(raw.Games)),
	}
	if out.Subject.TeamAbbr == "" && out.Subject.TeamID != 0 {
		out.Subject.TeamAbbr = AbbrForID(out.Subject.TeamID)
	}

	for _, g := range raw.Games {
		if g.GameID == "" {
			continue
		}
		rec := Record{
			GameID:       g.GameID,
			Date:         parseDate(g.Date),
			TeamID:       g.TeamID,
			TeamAbbr:     NormalizeAbbr(g.TeamAbbr),
			OpponentID:   g.OpponentID,
			OpponentAbbr: NormalizeAbbr(g.OpponentAbbr),
			HomeTeamID:   g.HomeTeamID,
			HomeTeamAbbr: NormalizeAbbr(g.HomeTeamAbbr),
			AwayTeamID:   g.AwayTeamID,
			AwayTeamAbbr: NormalizeAbbr(g.AwayTeamAbbr),
			Home:         g.Home,
			Minutes:      g.Minutes,
			Status:       parseStatus(g.Status),
			Stats:        g.Stats,
		}
		for _, p := range g.Periods {
			rec.Periods = append(rec.Periods, PeriodScore{
				Period:        p.Period,
				TeamScore:     p.Team,
				OpponentScore: p.Opponent,
			})
		}
		out.Games = append(out.Games, rec)
	}

	for _, l := range raw.Lines {
		if l.Metric == "" {
			continue
		}
		out.Lines = append(out.Lines, LineSnapshot{
			SubjectID:  out.Subject.ID,
			Metric:     l.Metric,
			Bookmaker:  l.Bookmaker,
			Value:      l.Value,
			ObservedAt: parseDate(l.ObservedAt),
		})
	}

	if raw.League != nil {
		out.League = &LeagueFile{
			Season:  raw.League.Season,
			Order:   raw.League.Order,
			Metrics: raw.League.Metrics,
		}
	}

	for _, bs := range raw.BoxScores {
		box := BoxScore{GameID: bs.GameID, Date: parseDate(bs.Date)}
		for _, row := range bs.Rows {
			box.Rows = append(box.Rows, BoxRow{
				PlayerName:    row.Player,
				TeamID:        row.TeamID,
				TeamAbbr:      NormalizeAbbr(row.TeamAbbr),
				StartPosition: strings.ToUpper(strings.TrimSpace(row.StartPosition)),
				Stats:         row.Stats,
			})
		}
		out.BoxScores = append(out.BoxScores, box)
	}

	for team, chart := range raw.DepthCharts {
		if out.DepthCharts == nil {
			out.DepthCharts = make(map[string]map[string][]string)
		}
		byPos := make(map[string][]string, len(chart))
		for pos, names := range chart {
			byPos[strings.ToUpper(strings.TrimSpace(pos))] = names
		}
		out.DepthCharts[NormalizeAbbr(team)] = byPos
	}
	return out, nil
}

// Encode writes f in the export format. Used by the sample generator and
// round-trip tests.
func Encode(w io.Writer, f *File) error {
	raw := fileJSON{
		Subject: subjectJSON{
			ID:       f.Subject.ID,
			Kind:     string(f.Subject.Kind),
			Name:     f.Subject.Name,
			TeamID:   f.Subject.TeamID,
			TeamAbbr: f.Subject.TeamAbbr,
		},
		Games: make([]recordJSON, 0, len(f.Games)),
	}
	for _, g := range f.Games {
		rj := recordJSON{
			GameID:       g.GameID,
			Date:         formatDate(g.Date),
			TeamID:       g.TeamID,
			TeamAbbr:     g.TeamAbbr,
			OpponentID:   g.OpponentID,
			OpponentAbbr: g.OpponentAbbr,
			HomeTeamID:   g.HomeTeamID,
			HomeTeamAbbr: g.HomeTeamAbbr,
			AwayTeamID:   g.AwayTeamID,
			AwayTeamAbbr: g.AwayTeamAbbr,
			Home:         g.Home,
			Minutes:      g.Minutes,
			Status:       string(g.Status),
			Stats:        g.Stats,
		}
		for _, p := range g.Periods {
			rj.Periods = append(rj.Periods, periodJSON{Period: p.Period, Team: p.TeamScore, Opponent: p.OpponentScore})
		}
		raw.Games = append(raw.Games, rj)
	}
	for _, l := range f.Lines {
		raw.Lines = append(raw.Lines, lineJSON{
			Metric:     l.Metric,
			Bookmaker:  l.Bookmaker,
			Value:      l.Value,
			ObservedAt: formatDate(l.ObservedAt),
		})
	}
	if f.League != nil {
		raw.League = &leagueJSON{Season: f.League.Season, Order: f.League.Order, Metrics: f.League.Metrics}
	}
	for _, bs := range f.BoxScores {
		bj := boxScoreJSON{GameID: bs.GameID, Date: formatDate(bs.Date)}
		for _, row := range bs.Rows {
			bj.Rows = append(bj.Rows, boxRowJSON{
				Player:        row.PlayerName,
				TeamID:        row.TeamID,
				TeamAbbr:      row.TeamAbbr,
				StartPosition: row.StartPosition,
				Stats:         row.Stats,
			})
		}
		raw.BoxScores = append(raw.BoxScores, bj)
	}
	raw.DepthCharts = f.DepthCharts

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(raw)
}

func parseKind(s string) SubjectKind {
	if strings.EqualFold(strings.TrimSpace(s), string(SubjectTeam)) {
		return SubjectTeam
	}
	return SubjectPlayer
}

// parseStatus maps provider status strings. A game log row without a status
// is a played game, so the empty string means final.
func parseStatus(s string) GameStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "final", "f", "completed", "closed", "":
		return StatusFinal
	case "live", "in_progress", "inprogress", "halftime":
		return StatusLive
	case "postponed", "ppd", "cancelled", "canceled":
		return StatusPostponed
	default:
		return StatusScheduled
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"Jan 02, 2006",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
