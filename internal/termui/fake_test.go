package termui

import (
	"context"
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/application"
	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/ranking"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

type fakeService struct {
	subjects []gamelog.Subject
	logs     map[string][]gamelog.Record
	best     float64
	tracker  *application.OpponentTracker
}

var _ application.AppService = (*fakeService)(nil)

func newFakeService() *fakeService {
	p1 := gamelog.Subject{ID: "p1", Kind: gamelog.SubjectPlayer, Name: "Guard One", TeamAbbr: "BOS"}
	p2 := gamelog.Subject{ID: "p2", Kind: gamelog.SubjectPlayer, Name: "Wing Two", TeamAbbr: "LAL"}
	return &fakeService{
		subjects: []gamelog.Subject{p1, p2},
		logs: map[string][]gamelog.Record{
			"p1": pointsLog(12, 31, 24, 18, 27),
			"p2": pointsLog(8, 9),
		},
		best:    21.5,
		tracker: application.NewOpponentTracker(nil),
	}
}

func pointsLog(values ...float64) []gamelog.Record {
	out := make([]gamelog.Record, len(values))
	for i, v := range values {
		out[i] = gamelog.Record{
			GameID:  string(rune('a' + i)),
			Date:    time.Date(2025, 12, 20-i, 0, 0, 0, 0, time.UTC),
			Minutes: 30,
			Stats:   map[string]float64{"pts": v},
		}
	}
	return out
}

func (f *fakeService) ImportDir(context.Context, string, func(application.ImportProgress)) (application.ImportSummary, error) {
	return application.ImportSummary{}, nil
}

func (f *fakeService) ImportFile(context.Context, string) (application.ImportResult, error) {
	return application.ImportResult{}, nil
}

func (f *fakeService) Subjects(context.Context) ([]gamelog.Subject, error) {
	return f.subjects, nil
}

func (f *fakeService) GameLog(_ context.Context, id string) (gamelog.Subject, []gamelog.Record, error) {
	for _, s := range f.subjects {
		if s.ID == id {
			return s, f.logs[id], nil
		}
	}
	return gamelog.Subject{}, nil, nil
}

func (f *fakeService) BestLine(context.Context, string, series.MetricID) (float64, bool) {
	return f.best, true
}

func (f *fakeService) LeagueTable(context.Context) (*ranking.LeagueTable, error) {
	return nil, nil
}

func (f *fakeService) OpponentRank(_ context.Context, opp, metric string) (application.OpponentRank, error) {
	return application.OpponentRank{Team: opp, Metric: metric, Rank: 3, Size: 30, Tier: ranking.TierBest}, nil
}

func (f *fakeService) DvP(context.Context, int, string, int) (ranking.DvPResult, error) {
	return ranking.DvPResult{}, nil
}

func (f *fakeService) Tracker() *application.OpponentTracker { return f.tracker }

func (f *fakeService) Close() error { return nil }
