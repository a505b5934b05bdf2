package application

import (
	"context"
	"fmt"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/persistence"
	"github.com/AkatukiSora/gamelog-lines/internal/ranking"
)

// OpponentRank is an opponent's league position for one metric, classified
// from the subject's point of view.
type OpponentRank struct {
	Team     string
	Metric   string
	Season   int
	Rank     int
	Size     int
	Tier     ranking.Tier
	Value    float64
	HasValue bool
}

// LeagueTable returns the latest stored league table, or nil when none has
// been imported. The table is cached until an import carries a new one.
func (s *Service) LeagueTable(ctx context.Context) (*ranking.LeagueTable, error) {
	s.leagueMu.Lock()
	defer s.leagueMu.Unlock()
	if s.league != nil {
		return s.league, nil
	}
	lf, err := s.repo.LoadLeague(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("load league table: %w", err)
	}
	if lf == nil {
		return nil, nil
	}
	s.league = ranking.FromFile(lf)
	return s.league, nil
}

// OpponentRank ranks opponentAbbr on metric. Without a league table the
// opponent gets the worst possible rank.
func (s *Service) OpponentRank(ctx context.Context, opponentAbbr, metric string) (OpponentRank, error) {
	table, err := s.LeagueTable(ctx)
	if err != nil {
		return OpponentRank{}, err
	}
	team := gamelog.NormalizeAbbr(opponentAbbr)
	out := OpponentRank{Team: team, Metric: metric}
	polarity := ranking.PolarityFor(metric)

	if table == nil {
		out.Size = gamelog.LeagueSize
		out.Rank = gamelog.LeagueSize
	} else {
		out.Season = table.Season
		out.Size = table.Size()
		out.Rank = s.ranks.Rank(table, team, metric, polarity)
		out.Value, out.HasValue = table.Value(metric, team)
	}
	// A defense that allows little is bad news for the subject.
	out.Tier = ranking.Classify(out.Rank, ranking.IsOpponentFacing(metric))
	return out, nil
}

// DvP computes the defense-vs-position breakdown for teamID over its most
// recent games of the current season.
func (s *Service) DvP(ctx context.Context, teamID int, metric string, games int) (ranking.DvPResult, error) {
	return ranking.ComputeDvP(ctx, repoBoxScores{repo: s.repo, startMonth: s.startMonth}, s, ranking.DvPRequest{
		TeamID:          teamID,
		Metric:          metric,
		Games:           games,
		SeasonStartYear: gamelog.SeasonStartYear(s.now(), s.startMonth),
	})
}

// DepthChart serves the charts carried by imported exports.
func (s *Service) DepthChart(ctx context.Context, teamAbbr string) (ranking.DepthChart, error) {
	s.depthMu.Lock()
	defer s.depthMu.Unlock()
	if s.depth == nil {
		charts, err := s.repo.LoadDepthCharts(ctx)
		if err != nil {
			return nil, fmt.Errorf("load depth charts: %w", err)
		}
		s.depth = make(map[string]ranking.DepthChart, len(charts))
		for team, byPos := range charts {
			s.depth[team] = ranking.NewDepthChart(byPos)
		}
	}
	return s.depth[gamelog.NormalizeAbbr(teamAbbr)], nil
}

// repoBoxScores reads one season of box scores from the repository.
type repoBoxScores struct {
	repo       persistence.BoxScoreRepository
	startMonth time.Month
}

func (r repoBoxScores) BoxScores(ctx context.Context, teamID, seasonStartYear int) ([]gamelog.BoxScore, error) {
	abbr := gamelog.AbbrForID(teamID)
	if abbr == "" {
		return nil, fmt.Errorf("unknown team id %d", teamID)
	}
	from := time.Date(seasonStartYear, r.startMonth, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(seasonStartYear+1, r.startMonth, 1, 0, 0, 0, 0, time.UTC)
	return r.repo.ListBoxScores(ctx, abbr, from, to)
}
