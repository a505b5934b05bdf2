package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
)

// Position is a depth-chart bucket.
type Position string

const (
	PG Position = "PG"
	SG Position = "SG"
	SF Position = "SF"
	PF Position = "PF"
	C  Position = "C"
)

var Positions = []Position{PG, SG, SF, PF, C}

const (
	DefaultDvPGames = 10
	MaxDvPGames     = 50
)

// DepthChart maps a normalised player name to a position.
type DepthChart map[string]Position

// NewDepthChart builds a lookup from position -> names. Unknown positions are
// skipped; the first listing of a player wins.
func NewDepthChart(byPos map[string][]string) DepthChart {
	dc := make(DepthChart)
	for _, pos := range Positions {
		for _, name := range byPos[string(pos)] {
			key := gamelog.NormalizeName(name)
			if key == "" {
				continue
			}
			if _, ok := dc[key]; !ok {
				dc[key] = pos
			}
		}
	}
	return dc
}

// BoxScoreSource returns a team's box scores for one season, newest first.
type BoxScoreSource interface {
	BoxScores(ctx context.Context, teamID int, seasonStartYear int) ([]gamelog.BoxScore, error)
}

// DepthChartSource returns a team's depth chart. A nil chart is not an error;
// every player then goes through the start-position heuristic.
type DepthChartSource interface {
	DepthChart(ctx context.Context, teamAbbr string) (DepthChart, error)
}

type DvPRequest struct {
	TeamID int
	Metric string
	Games  int
	// SeasonStartYear is the season to read; the previous one is used when it
	// has no processed games.
	SeasonStartYear int
}

type DvPResult struct {
	TeamAbbr    string
	Season      string
	Metric      string
	SampleGames int
	Totals      map[Position]float64
	PerGame     map[Position]float64
}

// ClampGames bounds the requested sample size to 1..MaxDvPGames.
func ClampGames(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxDvPGames {
		return MaxDvPGames
	}
	return n
}

// ComputeDvP sums what the team's opponents produced per position over the
// most recent games of a season.
func ComputeDvP(ctx context.Context, boxes BoxScoreSource, depth DepthChartSource, req DvPRequest) (DvPResult, error) {
	team, ok := gamelog.TeamByID(req.TeamID)
	if !ok {
		return DvPResult{}, fmt.Errorf("unknown team id %d", req.TeamID)
	}
	if req.SeasonStartYear == 0 {
		req.SeasonStartYear = gamelog.SeasonStartYear(time.Now(), time.October)
	}
	games := ClampGames(req.Games)

	res, err := dvpForSeason(ctx, boxes, depth, team, req.Metric, games, req.SeasonStartYear)
	if err != nil {
		return DvPResult{}, err
	}
	if res.SampleGames > 0 {
		return res, nil
	}
	prev, err := dvpForSeason(ctx, boxes, depth, team, req.Metric, games, req.SeasonStartYear-1)
	if err == nil && prev.SampleGames > 0 {
		return prev, nil
	}
	return res, nil
}

func dvpForSeason(ctx context.Context, boxes BoxScoreSource, depth DepthChartSource, team gamelog.Team, metric string, games, season int) (DvPResult, error) {
	res := DvPResult{
		TeamAbbr: team.Abbr,
		Season:   gamelog.SeasonLabel(season),
		Metric:   metric,
		Totals:   emptyBuckets(),
		PerGame:  emptyBuckets(),
	}
	scores, err := boxes.BoxScores(ctx, team.ID, season)
	if err != nil {
		return res, fmt.Errorf("box scores %s %s: %w", team.Abbr, res.Season, err)
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Date.After(scores[j].Date) })
	if len(scores) > games {
		scores = scores[:games]
	}

	charts := make(map[string]DepthChart)
	for _, box := range scores {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		opp := opponentOf(box, team)
		if opp == "" {
			continue
		}
		chart, seen := charts[opp]
		if !seen && depth != nil {
			chart, _ = depth.DepthChart(ctx, opp)
			charts[opp] = chart
		}
		counted := false
		for _, row := range box.Rows {
			if rowAbbr(row) != opp {
				continue
			}
			v := row.Stats[metric]
			if v == 0 {
				continue
			}
			res.Totals[positionFor(row, chart)] += v
			counted = true
		}
		if counted {
			res.SampleGames++
		}
	}

	if res.SampleGames > 0 {
		for _, pos := range Positions {
			res.PerGame[pos] = res.Totals[pos] / float64(res.SampleGames)
		}
	}
	return res, nil
}

func emptyBuckets() map[Position]float64 {
	m := make(map[Position]float64, len(Positions))
	for _, pos := range Positions {
		m[pos] = 0
	}
	return m
}

// opponentOf returns the abbreviation of the first row not on team.
func opponentOf(box gamelog.BoxScore, team gamelog.Team) string {
	for _, row := range box.Rows {
		if abbr := rowAbbr(row); abbr != "" && abbr != team.Abbr {
			return abbr
		}
	}
	return ""
}

func rowAbbr(row gamelog.BoxRow) string {
	if row.TeamAbbr == "" && row.TeamID != 0 {
		return gamelog.AbbrForID(row.TeamID)
	}
	return row.TeamAbbr
}

// positionFor prefers the depth chart and falls back to the box-score start
// position with a stat-line heuristic for guards and forwards.
func positionFor(row gamelog.BoxRow, chart DepthChart) Position {
	if pos, ok := chart[gamelog.NormalizeName(row.PlayerName)]; ok {
		return pos
	}
	st := row.Stats
	switch row.StartPosition {
	case "G":
		if st["ast"] >= 5 || st["tov"] >= 4 {
			return PG
		}
		return SG
	case "F":
		if st["reb"] >= 8 || st["blk"] >= 2 {
			return PF
		}
		return SF
	case "C":
		return C
	default:
		if st["reb"] >= 7 {
			return PF
		}
		return C
	}
}
