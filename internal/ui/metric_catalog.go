package ui

import (
	"log/slog"

	"fyne.io/fyne/v2/lang"

	"github.com/AkatukiSora/gamelog-lines/internal/ranking"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

type metricCategoryID string

const (
	metricCategoryScoring    metricCategoryID = "scoring"
	metricCategoryPlaymaking metricCategoryID = "playmaking"
	metricCategoryShooting   metricCategoryID = "shooting"
	metricCategoryDefense    metricCategoryID = "defense"
	metricCategoryOutcome    metricCategoryID = "outcome"
)

// metricThreshold is the sample size, in games, below which a series is
// flagged as thin (Min) and above which it is fully trusted (Good).
type metricThreshold struct {
	Min  int
	Good int
}

type metricCatalogEntry struct {
	Category  metricCategoryID
	Threshold metricThreshold
	// League is the opponent table metric shown next to the chart.
	League string
}

const (
	defaultMetricMinSamples  = 5
	defaultMetricGoodSamples = 10
)

var metricCatalog = map[series.MetricID]metricCatalogEntry{
	series.MetricPoints:      {Category: metricCategoryScoring, Threshold: metricThreshold{Min: 5, Good: 10}, League: ranking.MetricPointsAllowed},
	series.MetricThrees:      {Category: metricCategoryShooting, Threshold: metricThreshold{Min: 8, Good: 15}, League: ranking.MetricThreesAllowed},
	series.MetricFGPct:       {Category: metricCategoryShooting, Threshold: metricThreshold{Min: 8, Good: 15}, League: ranking.MetricDefRating},
	series.MetricFG3Pct:      {Category: metricCategoryShooting, Threshold: metricThreshold{Min: 10, Good: 20}, League: ranking.MetricThreesAllowed},
	series.MetricFTPct:       {Category: metricCategoryShooting, Threshold: metricThreshold{Min: 10, Good: 20}, League: ranking.MetricDefRating},
	series.MetricRebounds:    {Category: metricCategoryPlaymaking, Threshold: metricThreshold{Min: 5, Good: 10}, League: ranking.MetricReboundsAllowed},
	series.MetricAssists:     {Category: metricCategoryPlaymaking, Threshold: metricThreshold{Min: 5, Good: 10}, League: ranking.MetricAssistsAllowed},
	series.MetricTurnovers:   {Category: metricCategoryPlaymaking, Threshold: metricThreshold{Min: 5, Good: 10}, League: ranking.MetricPace},
	series.MetricMinutes:     {Category: metricCategoryPlaymaking, Threshold: metricThreshold{Min: 5, Good: 10}, League: ranking.MetricPace},
	series.MetricSteals:      {Category: metricCategoryDefense, Threshold: metricThreshold{Min: 8, Good: 15}, League: ranking.MetricPace},
	series.MetricBlocks:      {Category: metricCategoryDefense, Threshold: metricThreshold{Min: 8, Good: 15}, League: ranking.MetricPace},
	series.MetricStocks:      {Category: metricCategoryDefense, Threshold: metricThreshold{Min: 8, Good: 15}, League: ranking.MetricPace},
	series.MetricPRA:         {Category: metricCategoryScoring, Threshold: metricThreshold{Min: 5, Good: 10}, League: ranking.MetricPointsAllowed},
	series.MetricPR:          {Category: metricCategoryScoring, Threshold: metricThreshold{Min: 5, Good: 10}, League: ranking.MetricPointsAllowed},
	series.MetricPA:          {Category: metricCategoryScoring, Threshold: metricThreshold{Min: 5, Good: 10}, League: ranking.MetricPointsAllowed},
	series.MetricRA:          {Category: metricCategoryPlaymaking, Threshold: metricThreshold{Min: 5, Good: 10}, League: ranking.MetricReboundsAllowed},
	series.MetricTeamPoints:  {Category: metricCategoryScoring, Threshold: metricThreshold{Min: 5, Good: 10}, League: ranking.MetricDefRating},
	series.MetricOppPoints:   {Category: metricCategoryDefense, Threshold: metricThreshold{Min: 5, Good: 10}, League: ranking.MetricOffRating},
	series.MetricTotalPoints: {Category: metricCategoryOutcome, Threshold: metricThreshold{Min: 5, Good: 10}, League: ranking.MetricPace},
	series.MetricPointDiff:   {Category: metricCategoryOutcome, Threshold: metricThreshold{Min: 8, Good: 15}, League: ranking.MetricOffRating},
	series.MetricSpread:      {Category: metricCategoryOutcome, Threshold: metricThreshold{Min: 8, Good: 15}, League: ranking.MetricOffRating},
	series.MetricWin:         {Category: metricCategoryOutcome, Threshold: metricThreshold{Min: 8, Good: 15}, League: ranking.MetricOffRating},
	series.MetricQ1Win:       {Category: metricCategoryOutcome, Threshold: metricThreshold{Min: 10, Good: 20}, League: ranking.MetricOffRating},
	series.MetricQ2Win:       {Category: metricCategoryOutcome, Threshold: metricThreshold{Min: 10, Good: 20}, League: ranking.MetricOffRating},
	series.MetricQ3Win:       {Category: metricCategoryOutcome, Threshold: metricThreshold{Min: 10, Good: 20}, League: ranking.MetricOffRating},
	series.MetricQ4Win:       {Category: metricCategoryOutcome, Threshold: metricThreshold{Min: 10, Good: 20}, League: ranking.MetricOffRating},
	series.MetricFirstHalf:   {Category: metricCategoryOutcome, Threshold: metricThreshold{Min: 10, Good: 20}, League: ranking.MetricOffRating},
}

func init() {
	missing := make([]series.MetricID, 0)
	for _, scope := range []series.MetricScope{series.ScopePlayer, series.ScopeTeam} {
		for _, def := range series.Metrics(scope) {
			if _, ok := metricCatalog[def.ID]; !ok {
				missing = append(missing, def.ID)
			}
		}
	}
	if len(missing) > 0 {
		slog.Warn("metric catalog missing entries", "metrics", missing)
	}
}

func metricCatalogEntryForID(id series.MetricID) metricCatalogEntry {
	if entry, ok := metricCatalog[id]; ok {
		return entry
	}
	return metricCatalogEntry{
		Category:  metricCategoryOutcome,
		Threshold: metricThreshold{Min: defaultMetricMinSamples, Good: defaultMetricGoodSamples},
		League:    ranking.MetricDefRating,
	}
}

func leagueMetricFor(id series.MetricID) string {
	return metricCatalogEntryForID(id).League
}

func isLowSample(id series.MetricID, games int) bool {
	return games > 0 && games < metricCatalogEntryForID(id).Threshold.Min
}

func metricCategoryLabel(c metricCategoryID) string {
	switch c {
	case metricCategoryScoring:
		return lang.X("metric.category.scoring", "Scoring")
	case metricCategoryPlaymaking:
		return lang.X("metric.category.playmaking", "Playmaking")
	case metricCategoryShooting:
		return lang.X("metric.category.shooting", "Shooting")
	case metricCategoryDefense:
		return lang.X("metric.category.defense", "Defense")
	default:
		return lang.X("metric.category.outcome", "Outcome")
	}
}

// leagueMetricLabel names the opponent table metrics.
func leagueMetricLabel(metric string) string {
	switch metric {
	case ranking.MetricPointsAllowed:
		return lang.X("league.metric.pts_allowed", "Points allowed")
	case ranking.MetricReboundsAllowed:
		return lang.X("league.metric.reb_allowed", "Rebounds allowed")
	case ranking.MetricAssistsAllowed:
		return lang.X("league.metric.ast_allowed", "Assists allowed")
	case ranking.MetricThreesAllowed:
		return lang.X("league.metric.fg3m_allowed", "Threes allowed")
	case ranking.MetricOffRating:
		return lang.X("league.metric.off_rating", "Offensive rating")
	case ranking.MetricDefRating:
		return lang.X("league.metric.def_rating", "Defensive rating")
	case ranking.MetricPace:
		return lang.X("league.metric.pace", "Pace")
	case ranking.MetricReboundShare:
		return lang.X("league.metric.reb_share", "Rebound share")
	default:
		return metric
	}
}
