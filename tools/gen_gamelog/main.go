// gen_gamelog generates synthetic game log exports for local testing.
//
// It writes one *.gamelog.json export per player and per team, with box
// scores for the defense-vs-position view, a league reference table and a
// handful of bookmaker lines. The most recent game of every subject is left
// scheduled so the chart has an upcoming opponent.
//
// Usage:
//
//	go run ./tools/gen_gamelog [flags]
//
// Flags:
//
//	--output-dir   where to write exports (default: "./testdata/exports")
//	--players      number of player exports (default: 12)
//	--teams        number of team exports (default: 4)
//	--games        games per subject (default: 40)
//	--seed         random seed; 0 = use current time (default: 0)
//	--end-date     date of the scheduled game, YYYY-MM-DD (default: today)
//	--redis        publish the lines to this Redis as well (default: off)
//	--redis-prefix key prefix for published lines (default: "bestline")
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AkatukiSora/gamelog-lines/internal/bestline"
	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/ranking"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

var bookmakers = []string{"northbook", "eastline", "westodds"}

// ─────────────────────────────────────────────────────────────────────────────
// Schedules
// ─────────────────────────────────────────────────────────────────────────────

// slot is one game on a team's schedule, newest first.
type slot struct {
	gameID string
	date   time.Time
	opp    gamelog.Team
	home   bool
	status gamelog.GameStatus
}

// schedule builds n games for team ending on end. The first slot is the
// scheduled game.
func schedule(team gamelog.Team, teams []gamelog.Team, n int, end time.Time, rng *rand.Rand) []slot {
	out := make([]slot, 0, n)
	d := end
	for i := 0; i < n; i++ {
		opp := teams[rng.Intn(len(teams))]
		for opp.ID == team.ID {
			opp = teams[rng.Intn(len(teams))]
		}
		status := gamelog.StatusFinal
		if i == 0 {
			status = gamelog.StatusScheduled
		}
		out = append(out, slot{
			gameID: fmt.Sprintf("%s-%s-%s", d.Format("20060102"), team.Abbr, opp.Abbr),
			date:   d,
			opp:    opp,
			home:   rng.Intn(2) == 0,
			status: status,
		})
		d = d.AddDate(0, 0, -(1 + rng.Intn(3)))
	}
	return out
}

func (s slot) record(team gamelog.Team) gamelog.Record {
	rec := gamelog.Record{
		GameID:       s.gameID,
		Date:         s.date,
		TeamID:       team.ID,
		TeamAbbr:     team.Abbr,
		OpponentID:   s.opp.ID,
		OpponentAbbr: s.opp.Abbr,
		Status:       s.status,
	}
	home := s.home
	rec.Home = &home
	if s.home {
		rec.HomeTeamID, rec.HomeTeamAbbr = team.ID, team.Abbr
		rec.AwayTeamID, rec.AwayTeamAbbr = s.opp.ID, s.opp.Abbr
	} else {
		rec.HomeTeamID, rec.HomeTeamAbbr = s.opp.ID, s.opp.Abbr
		rec.AwayTeamID, rec.AwayTeamAbbr = team.ID, team.Abbr
	}
	return rec
}

// ─────────────────────────────────────────────────────────────────────────────
// Stat lines
// ─────────────────────────────────────────────────────────────────────────────

// profile is a player's per-game means.
type profile struct {
	pts, reb, ast, fg3m, stl, blk, tov, min float64
	position                                string
}

func randomProfile(rng *rand.Rand) profile {
	positions := []string{"G", "G", "F", "F", "C"}
	pos := positions[rng.Intn(len(positions))]
	p := profile{
		pts:      10 + rng.Float64()*18,
		reb:      3 + rng.Float64()*5,
		ast:      1 + rng.Float64()*5,
		fg3m:     0.5 + rng.Float64()*2.5,
		stl:      0.4 + rng.Float64(),
		blk:      0.2 + rng.Float64(),
		tov:      1 + rng.Float64()*2,
		min:      24 + rng.Float64()*12,
		position: pos,
	}
	switch pos {
	case "G":
		p.ast += 2
	case "C":
		p.reb += 4
		p.blk += 1
		p.fg3m *= 0.3
	}
	return p
}

// around draws a non-negative whole number near mean.
func around(rng *rand.Rand, mean, spread float64) float64 {
	return math.Max(0, math.Round(mean+rng.NormFloat64()*spread))
}

func statLine(p profile, rng *rand.Rand) map[string]float64 {
	minutes := around(rng, p.min, 5)
	if rng.Float64() < 0.05 {
		// did not play
		minutes = 0
	}
	scale := minutes / math.Max(p.min, 1)
	fga := around(rng, p.pts/2.2*scale, 2)
	fgm := math.Min(fga, around(rng, fga*0.47, 1.5))
	fg3a := around(rng, p.fg3m*2.8*scale, 1.5)
	fg3m := math.Min(math.Min(fg3a, fgm), around(rng, p.fg3m*scale, 1))
	fta := around(rng, 3*scale, 1.5)
	ftm := math.Min(fta, around(rng, fta*0.78, 1))
	st := map[string]float64{
		"min":  minutes,
		"pts":  2*(fgm-fg3m) + 3*fg3m + ftm,
		"reb":  around(rng, p.reb*scale, 2),
		"ast":  around(rng, p.ast*scale, 1.5),
		"fg3m": fg3m,
		"stl":  around(rng, p.stl*scale, 0.8),
		"blk":  around(rng, p.blk*scale, 0.8),
		"tov":  around(rng, p.tov*scale, 1),
	}
	if fga > 0 {
		st["fg_pct"] = math.Round(fgm/fga*1000) / 10
	}
	if fg3a > 0 {
		st["fg3_pct"] = math.Round(fg3m/fg3a*1000) / 10
	}
	if fta > 0 {
		st["ft_pct"] = math.Round(ftm/fta*1000) / 10
	}
	return st
}

func periods(rng *rand.Rand) ([]gamelog.PeriodScore, int, int) {
	var out []gamelog.PeriodScore
	var team, opp int
	for q := 1; q <= 4; q++ {
		t, o := 22+rng.Intn(14), 22+rng.Intn(14)
		out = append(out, gamelog.PeriodScore{Period: q, TeamScore: t, OpponentScore: o})
		team += t
		opp += o
	}
	if team == opp {
		t, o := 8+rng.Intn(8), 8+rng.Intn(8)
		if t == o {
			t++
		}
		out = append(out, gamelog.PeriodScore{Period: 5, TeamScore: t, OpponentScore: o})
		team += t
		opp += o
	}
	return out, team, opp
}

// ─────────────────────────────────────────────────────────────────────────────
// Exports
// ─────────────────────────────────────────────────────────────────────────────

func playerExport(i int, team gamelog.Team, teams []gamelog.Team, games int, end time.Time, rng *rand.Rand) *gamelog.File {
	p := randomProfile(rng)
	subject := gamelog.Subject{
		ID:       fmt.Sprintf("player-%03d", i+1),
		Kind:     gamelog.SubjectPlayer,
		Name:     fmt.Sprintf("%s Player %d", team.Abbr, i+1),
		TeamID:   team.ID,
		TeamAbbr: team.Abbr,
	}
	f := &gamelog.File{Subject: subject}
	for _, s := range schedule(team, teams, games, end, rng) {
		rec := s.record(team)
		if s.status == gamelog.StatusFinal {
			rec.Stats = statLine(p, rng)
			rec.Minutes = rec.Stats["min"]
		}
		f.Games = append(f.Games, rec)
	}
	f.Lines = lines(subject.ID, []series.MetricID{series.MetricPoints, series.MetricRebounds, series.MetricAssists, series.MetricPRA},
		map[series.MetricID]float64{
			series.MetricPoints:   p.pts,
			series.MetricRebounds: p.reb,
			series.MetricAssists:  p.ast,
			series.MetricPRA:      p.pts + p.reb + p.ast,
		}, end, rng)
	return f
}

func teamExport(team gamelog.Team, teams []gamelog.Team, games int, end time.Time, rng *rand.Rand) *gamelog.File {
	subject := gamelog.Subject{
		ID:       "team-" + strings.ToLower(team.Abbr),
		Kind:     gamelog.SubjectTeam,
		Name:     team.Name,
		TeamID:   team.ID,
		TeamAbbr: team.Abbr,
	}
	f := &gamelog.File{Subject: subject, DepthCharts: map[string]map[string][]string{}}
	for _, s := range schedule(team, teams, games, end, rng) {
		rec := s.record(team)
		if s.status == gamelog.StatusFinal {
			ps, ts, opp := periods(rng)
			rec.Periods = ps
			rec.Minutes = 240
			rec.Stats = map[string]float64{"pts": float64(ts), "opp_pts": float64(opp)}
			f.BoxScores = append(f.BoxScores, boxScore(s, team, rng))
			if _, ok := f.DepthCharts[s.opp.Abbr]; !ok {
				f.DepthCharts[s.opp.Abbr] = depthChart(s.opp)
			}
		}
		f.Games = append(f.Games, rec)
	}
	f.Lines = lines(subject.ID, []series.MetricID{series.MetricTeamPoints, series.MetricTotalPoints, series.MetricSpread},
		map[series.MetricID]float64{
			series.MetricTeamPoints:  112,
			series.MetricTotalPoints: 226,
			series.MetricSpread:      -3,
		}, end, rng)
	return f
}

var starterSlots = []struct {
	start string
	pos   string
}{{"G", "PG"}, {"G", "SG"}, {"F", "SF"}, {"F", "PF"}, {"C", "C"}}

func starterName(team gamelog.Team, pos string) string {
	return fmt.Sprintf("%s Starter %s", team.Abbr, pos)
}

func depthChart(team gamelog.Team) map[string][]string {
	out := map[string][]string{}
	for _, s := range starterSlots {
		out[s.pos] = []string{starterName(team, s.pos)}
	}
	return out
}

func boxScore(s slot, team gamelog.Team, rng *rand.Rand) gamelog.BoxScore {
	box := gamelog.BoxScore{GameID: s.gameID, Date: s.date}
	for _, side := range []gamelog.Team{team, s.opp} {
		for _, st := range starterSlots {
			box.Rows = append(box.Rows, gamelog.BoxRow{
				PlayerName:    starterName(side, st.pos),
				TeamID:        side.ID,
				TeamAbbr:      side.Abbr,
				StartPosition: st.start,
				Stats:         statLine(randomProfile(rng), rng),
			})
		}
	}
	return box
}

// lines quotes every metric at a half point near its mean from each book.
func lines(subjectID string, metrics []series.MetricID, means map[series.MetricID]float64, at time.Time, rng *rand.Rand) []gamelog.LineSnapshot {
	var out []gamelog.LineSnapshot
	for _, m := range metrics {
		for _, b := range bookmakers {
			v := math.Floor(means[m]+rng.NormFloat64()) + 0.5
			out = append(out, gamelog.LineSnapshot{SubjectID: subjectID, Metric: string(m), Bookmaker: b, Value: v, ObservedAt: at})
		}
	}
	return out
}

func leagueFile(teams []gamelog.Team, season int, rng *rand.Rand) *gamelog.LeagueFile {
	lf := &gamelog.LeagueFile{Season: season, Metrics: map[string]map[string]float64{}}
	ranges := map[string][2]float64{
		ranking.MetricPointsAllowed:   {105, 122},
		ranking.MetricReboundsAllowed: {40, 48},
		ranking.MetricAssistsAllowed:  {23, 30},
		ranking.MetricThreesAllowed:   {11, 16},
		ranking.MetricOffRating:       {108, 121},
		ranking.MetricDefRating:       {107, 120},
		ranking.MetricPace:            {96, 104},
		ranking.MetricReboundShare:    {46, 54},
	}
	for _, t := range teams {
		lf.Order = append(lf.Order, t.Abbr)
	}
	for metric, r := range ranges {
		values := map[string]float64{}
		for _, t := range teams {
			values[t.Abbr] = math.Round((r[0]+rng.Float64()*(r[1]-r[0]))*10) / 10
		}
		lf.Metrics[metric] = values
	}
	return lf
}

func writeExport(dir string, name string, f *gamelog.File) error {
	path := filepath.Join(dir, name+".gamelog.json")
	// write then rename so the watcher never sees a half-written export
	tmp := path + ".tmp-" + uuid.NewString()
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gamelog.Encode(out, f); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// ─────────────────────────────────────────────────────────────────────────────
// main
// ─────────────────────────────────────────────────────────────────────────────

func main() {
	outputDir := flag.String("output-dir", "testdata/exports", "output directory")
	players := flag.Int("players", 12, "number of player exports")
	teamCount := flag.Int("teams", 4, "number of team exports")
	games := flag.Int("games", 40, "games per subject")
	seed := flag.Int64("seed", 0, "random seed (0 = use current Unix time)")
	endDate := flag.String("end-date", "", "date of the scheduled game, YYYY-MM-DD (default today)")
	redisAddr := flag.String("redis", "", "also publish lines to this Redis (host:port or redis:// URL)")
	redisPrefix := flag.String("redis-prefix", bestline.DefaultKeyPrefix, "key prefix for published lines")
	flag.Parse()

	if *players < 0 || *teamCount < 0 || *players+*teamCount == 0 {
		fmt.Fprintln(os.Stderr, "error: need at least one player or team export")
		os.Exit(1)
	}
	if *games < 2 {
		fmt.Fprintln(os.Stderr, "error: --games must be >= 2")
		os.Exit(1)
	}

	actualSeed := *seed
	if actualSeed == 0 {
		actualSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(actualSeed))
	fmt.Printf("seed: %d\n", actualSeed)

	end := time.Now().UTC().Truncate(24 * time.Hour)
	if *endDate != "" {
		t, err := time.Parse("2006-01-02", *endDate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid --end-date %q: %v\n", *endDate, err)
			os.Exit(1)
		}
		end = t
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot create output dir %q: %v\n", *outputDir, err)
		os.Exit(1)
	}

	teams := gamelog.Teams()
	var allLines []gamelog.LineSnapshot
	written := 0
	for i := 0; i < *players; i++ {
		team := teams[rng.Intn(len(teams))]
		f := playerExport(i, team, teams, *games, end, rng)
		if err := writeExport(*outputDir, f.Subject.ID, f); err != nil {
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", f.Subject.ID, err)
			os.Exit(1)
		}
		allLines = append(allLines, f.Lines...)
		written++
		fmt.Printf("[%3d] %s  %s (%s)\n", written, f.Subject.ID, f.Subject.Name, team.Abbr)
	}

	season := gamelog.SeasonStartYear(end, series.DefaultSeasonStartMonth)
	for i, idx := range rng.Perm(len(teams))[:min(*teamCount, len(teams))] {
		f := teamExport(teams[idx], teams, *games, end, rng)
		if i == 0 {
			f.League = leagueFile(teams, season, rng)
		}
		if err := writeExport(*outputDir, f.Subject.ID, f); err != nil {
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", f.Subject.ID, err)
			os.Exit(1)
		}
		allLines = append(allLines, f.Lines...)
		written++
		fmt.Printf("[%3d] %s  %s\n", written, f.Subject.ID, f.Subject.Name)
	}

	if *redisAddr != "" {
		ctx := context.Background()
		client, err := bestline.Dial(ctx, *redisAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()
		if err := bestline.Publish(ctx, client, *redisPrefix, allLines); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("published %d lines to %s\n", len(allLines), *redisAddr)
	}

	fmt.Printf("\ndone: %d exports written to %s\n", written, *outputDir)
}
