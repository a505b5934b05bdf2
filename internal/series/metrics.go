package series

type MetricID string

const (
	MetricPoints      MetricID = "pts"
	MetricRebounds    MetricID = "reb"
	MetricAssists     MetricID = "ast"
	MetricThrees      MetricID = "fg3m"
	MetricSteals      MetricID = "stl"
	MetricBlocks      MetricID = "blk"
	MetricTurnovers   MetricID = "tov"
	MetricMinutes     MetricID = "min"
	MetricFGPct       MetricID = "fg_pct"
	MetricFG3Pct      MetricID = "fg3_pct"
	MetricFTPct       MetricID = "ft_pct"
	MetricPRA         MetricID = "pra"
	MetricPR          MetricID = "pr"
	MetricPA          MetricID = "pa"
	MetricRA          MetricID = "ra"
	MetricStocks      MetricID = "stocks"
	MetricTeamPoints  MetricID = "team_pts"
	MetricOppPoints   MetricID = "opp_pts"
	MetricTotalPoints MetricID = "total_pts"
	MetricPointDiff   MetricID = "point_diff"
	MetricSpread      MetricID = "spread"
	MetricWin         MetricID = "win"
	MetricQ1Win       MetricID = "q1_win"
	MetricQ2Win       MetricID = "q2_win"
	MetricQ3Win       MetricID = "q3_win"
	MetricQ4Win       MetricID = "q4_win"
	MetricFirstHalf   MetricID = "first_half_win"
)

// MetricClass drives axis scaling.
type MetricClass int

const (
	ClassPercentage MetricClass = iota
	ClassBinary
	ClassSigned
	ClassSmallInt
	ClassLargeInt
	// ClassCount picks small or large integer scaling from the data.
	ClassCount
)

func (c MetricClass) String() string {
	switch c {
	case ClassPercentage:
		return "percentage"
	case ClassBinary:
		return "binary"
	case ClassSigned:
		return "signed"
	case ClassSmallInt:
		return "small_int"
	case ClassLargeInt:
		return "large_int"
	case ClassCount:
		return "count"
	default:
		return "unknown"
	}
}

// Signed reports whether negative thresholds make sense for the class.
func (c MetricClass) Signed() bool {
	return c == ClassSigned
}

type MetricScope int

const (
	ScopePlayer MetricScope = iota
	ScopeTeam
)

type metricKind int

const (
	kindField metricKind = iota
	kindComposite
	kindTeamOutcome
)

type MetricDefinition struct {
	ID    MetricID
	Label string
	Scope MetricScope
	Class MetricClass
	// LowerIsBetter inverts over/under colouring (spread-like metrics).
	LowerIsBetter bool
	// DefaultLine seeds the threshold when no best line is known.
	DefaultLine float64

	kind       metricKind
	field      string
	components []string
	percent    bool
	period     int
}

var metricRegistry = []MetricDefinition{
	{ID: MetricPoints, Label: "Points", Scope: ScopePlayer, Class: ClassCount, DefaultLine: 19.5, kind: kindField, field: "pts"},
	{ID: MetricRebounds, Label: "Rebounds", Scope: ScopePlayer, Class: ClassCount, DefaultLine: 6.5, kind: kindField, field: "reb"},
	{ID: MetricAssists, Label: "Assists", Scope: ScopePlayer, Class: ClassCount, DefaultLine: 4.5, kind: kindField, field: "ast"},
	{ID: MetricThrees, Label: "3PM", Scope: ScopePlayer, Class: ClassSmallInt, DefaultLine: 1.5, kind: kindField, field: "fg3m"},
	{ID: MetricSteals, Label: "Steals", Scope: ScopePlayer, Class: ClassSmallInt, DefaultLine: 0.5, kind: kindField, field: "stl"},
	{ID: MetricBlocks, Label: "Blocks", Scope: ScopePlayer, Class: ClassSmallInt, DefaultLine: 0.5, kind: kindField, field: "blk"},
	{ID: MetricTurnovers, Label: "Turnovers", Scope: ScopePlayer, Class: ClassSmallInt, DefaultLine: 2.5, kind: kindField, field: "tov"},
	{ID: MetricMinutes, Label: "Minutes", Scope: ScopePlayer, Class: ClassLargeInt, DefaultLine: 30.5, kind: kindField, field: "min"},
	{ID: MetricFGPct, Label: "FG%", Scope: ScopePlayer, Class: ClassPercentage, DefaultLine: 45, kind: kindField, field: "fg_pct", percent: true},
	{ID: MetricFG3Pct, Label: "3P%", Scope: ScopePlayer, Class: ClassPercentage, DefaultLine: 35, kind: kindField, field: "fg3_pct", percent: true},
	{ID: MetricFTPct, Label: "FT%", Scope: ScopePlayer, Class: ClassPercentage, DefaultLine: 75, kind: kindField, field: "ft_pct", percent: true},
	{ID: MetricPRA, Label: "Pts+Reb+Ast", Scope: ScopePlayer, Class: ClassLargeInt, DefaultLine: 29.5, kind: kindComposite, components: []string{"pts", "reb", "ast"}},
	{ID: MetricPR, Label: "Pts+Reb", Scope: ScopePlayer, Class: ClassLargeInt, DefaultLine: 24.5, kind: kindComposite, components: []string{"pts", "reb"}},
	{ID: MetricPA, Label: "Pts+Ast", Scope: ScopePlayer, Class: ClassLargeInt, DefaultLine: 23.5, kind: kindComposite, components: []string{"pts", "ast"}},
	{ID: MetricRA, Label: "Reb+Ast", Scope: ScopePlayer, Class: ClassCount, DefaultLine: 10.5, kind: kindComposite, components: []string{"reb", "ast"}},
	{ID: MetricStocks, Label: "Stl+Blk", Scope: ScopePlayer, Class: ClassSmallInt, DefaultLine: 1.5, kind: kindComposite, components: []string{"stl", "blk"}},
	{ID: MetricTeamPoints, Label: "Team Points", Scope: ScopeTeam, Class: ClassLargeInt, DefaultLine: 112.5, kind: kindTeamOutcome},
	{ID: MetricOppPoints, Label: "Opponent Points", Scope: ScopeTeam, Class: ClassLargeInt, DefaultLine: 112.5, kind: kindTeamOutcome},
	{ID: MetricTotalPoints, Label: "Total Points", Scope: ScopeTeam, Class: ClassLargeInt, DefaultLine: 224.5, kind: kindTeamOutcome},
	{ID: MetricPointDiff, Label: "Point Diff", Scope: ScopeTeam, Class: ClassSigned, DefaultLine: 0.5, kind: kindTeamOutcome},
	{ID: MetricSpread, Label: "Spread", Scope: ScopeTeam, Class: ClassSigned, LowerIsBetter: true, DefaultLine: -0.5, kind: kindTeamOutcome},
	{ID: MetricWin, Label: "Win", Scope: ScopeTeam, Class: ClassBinary, DefaultLine: 0.5, kind: kindTeamOutcome},
	{ID: MetricQ1Win, Label: "Q1 Win", Scope: ScopeTeam, Class: ClassBinary, DefaultLine: 0.5, kind: kindTeamOutcome, period: 1},
	{ID: MetricQ2Win, Label: "Q2 Win", Scope: ScopeTeam, Class: ClassBinary, DefaultLine: 0.5, kind: kindTeamOutcome, period: 2},
	{ID: MetricQ3Win, Label: "Q3 Win", Scope: ScopeTeam, Class: ClassBinary, DefaultLine: 0.5, kind: kindTeamOutcome, period: 3},
	{ID: MetricQ4Win, Label: "Q4 Win", Scope: ScopeTeam, Class: ClassBinary, DefaultLine: 0.5, kind: kindTeamOutcome, period: 4},
	{ID: MetricFirstHalf, Label: "1H Win", Scope: ScopeTeam, Class: ClassBinary, DefaultLine: 0.5, kind: kindTeamOutcome},
}

var metricsByID = func() map[MetricID]MetricDefinition {
	m := make(map[MetricID]MetricDefinition, len(metricRegistry))
	for _, def := range metricRegistry {
		m[def.ID] = def
	}
	return m
}()

// LookupMetric returns the registry entry for id.
func LookupMetric(id MetricID) (MetricDefinition, bool) {
	def, ok := metricsByID[id]
	return def, ok
}

// Metrics lists the registry entries for one scope in display order.
func Metrics(scope MetricScope) []MetricDefinition {
	out := make([]MetricDefinition, 0, len(metricRegistry))
	for _, def := range metricRegistry {
		if def.Scope == scope {
			out = append(out, def)
		}
	}
	return out
}

// DefaultMetric is the metric selected when a subject is first loaded.
func DefaultMetric(scope MetricScope) MetricID {
	if scope == ScopeTeam {
		return MetricTeamPoints
	}
	return MetricPoints
}

// ClassOf returns the axis class for id. Unknown metrics scale as counts.
func ClassOf(id MetricID) MetricClass {
	if def, ok := metricsByID[id]; ok {
		return def.Class
	}
	return ClassCount
}

// LowerIsBetter reports the polarity of id. Unknown metrics are higher-is-better.
func LowerIsBetter(id MetricID) bool {
	return metricsByID[id].LowerIsBetter
}
