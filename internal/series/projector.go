package series

import (
	"time"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
)

// Point is one bar of the chart.
type Point struct {
	GameID       string
	Date         time.Time
	OpponentAbbr string
	TickLabel    string
	Value        float64
}

// Project maps the filtered series onto metric values, keeping order.
func Project(games []Game, id MetricID) []Point {
	if len(games) == 0 {
		return nil
	}
	out := make([]Point, len(games))
	for i, g := range games {
		out[i] = Point{
			GameID:       g.Record.GameID,
			Date:         g.Record.Date,
			OpponentAbbr: g.OpponentAbbr,
			TickLabel:    g.TickLabel,
			Value:        ProjectOne(g.Record, id),
		}
	}
	return out
}

// Values extracts the bar values.
func Values(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// ProjectOne computes a single metric value. Missing fields count as 0 and
// unknown metrics yield 0.
func ProjectOne(rec gamelog.Record, id MetricID) float64 {
	def, ok := metricsByID[id]
	if !ok {
		return 0
	}
	switch def.kind {
	case kindField:
		v, _ := rec.Stat(def.field)
		if def.percent {
			return v * 100
		}
		return v
	case kindComposite:
		var sum float64
		for _, f := range def.components {
			v, _ := rec.Stat(f)
			sum += v
		}
		return sum
	case kindTeamOutcome:
		return teamOutcome(rec, def)
	}
	return 0
}

func teamOutcome(rec gamelog.Record, def MetricDefinition) float64 {
	team, opp := finalScore(rec)
	switch def.ID {
	case MetricTeamPoints:
		return team
	case MetricOppPoints:
		return opp
	case MetricTotalPoints:
		return team + opp
	case MetricPointDiff:
		return team - opp
	case MetricSpread:
		// Covering a -5.5 spread means winning by 6 or more, i.e. opp-team <= -6.
		return opp - team
	case MetricWin:
		return boolValue(team > opp)
	case MetricQ1Win, MetricQ2Win, MetricQ3Win, MetricQ4Win:
		for _, p := range rec.Periods {
			if p.Period == def.period {
				return boolValue(p.TeamScore > p.OpponentScore)
			}
		}
		return 0
	case MetricFirstHalf:
		var t, o int
		found := false
		for _, p := range rec.Periods {
			if p.Period == 1 || p.Period == 2 {
				t += p.TeamScore
				o += p.OpponentScore
				found = true
			}
		}
		return boolValue(found && t > o)
	}
	return 0
}

// finalScore prefers box-score totals and falls back to summing periods.
func finalScore(rec gamelog.Record) (team, opp float64) {
	t, okT := rec.Stat("pts")
	o, okO := rec.Stat("opp_pts")
	if okT && okO {
		return t, o
	}
	var st, so int
	for _, p := range rec.Periods {
		st += p.TeamScore
		so += p.OpponentScore
	}
	if !okT {
		t = float64(st)
	}
	if !okO {
		o = float64(so)
	}
	return t, o
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
