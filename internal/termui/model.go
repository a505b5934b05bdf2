// Package termui is a terminal front-end for the line explorer. It drives the
// same chart.Session as the desktop UI against an immediate-mode surface.
package termui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AkatukiSora/gamelog-lines/internal/application"
	"github.com/AkatukiSora/gamelog-lines/internal/chart"
	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/ranking"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

const lineStep = 0.5

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666", Dark: "#999"})
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	rankStyles = map[ranking.Tier]lipgloss.Style{
		ranking.TierBest:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		ranking.TierGood:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		ranking.TierMid:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		ranking.TierPoor:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		ranking.TierWorst: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

type Options struct {
	Debounce    time.Duration
	RetryDelay  time.Duration
	NarrowWidth int
	Filter      series.FilterConfig
	// SubjectID preselects a subject when it exists.
	SubjectID string
}

// ReloadMsg asks the model to reload subjects and the current game log,
// e.g. after the watcher imported a file.
type ReloadMsg struct{}

// SwitchMsg forwards an opponent tracker switch into the update loop.
type SwitchMsg application.OpponentSwitch

// StatusMsg replaces the status line.
type StatusMsg string

type subjectsMsg struct {
	subjects []gamelog.Subject
	err      error
}

type gameLogMsg struct {
	gen     uint64
	refresh bool
	subject gamelog.Subject
	records []gamelog.Record
	err     error
}

type bestLineMsg struct {
	gen    uint64
	metric series.MetricID
	value  float64
	commit bool
}

type rankMsg struct {
	gen  uint64
	rank application.OpponentRank
	err  error
}

// Model is the bubbletea model. The chart session is only touched from
// Update, so scheduler callbacks arrive as messages.
type Model struct {
	ctx     context.Context
	service application.AppService
	opts    Options

	done    chan struct{}
	sched   programScheduler
	store   *gamelog.Store
	surface *Surface
	session *chart.Session

	subjects  []gamelog.Subject
	subjectID string
	loadGen   uint64

	input  textinput.Model
	help   help.Model
	width  int
	height int
	status string
	rank   string
	err    error
}

func New(ctx context.Context, service application.AppService, opts Options) *Model {
	done := make(chan struct{})
	sched := newProgramScheduler(done)
	store := gamelog.NewStore()
	surface := NewSurface(opts.NarrowWidth)
	filter := opts.Filter
	if filter.N == 0 && filter.Timeframe == series.TimeframeLastN {
		filter = series.DefaultFilterConfig()
	}

	input := textinput.New()
	input.Prompt = "line "
	input.CharLimit = 8
	input.Width = 8
	input.Placeholder = "19.5"

	return &Model{
		ctx:     ctx,
		service: service,
		opts:    opts,
		done:    done,
		sched:   sched,
		store:   store,
		surface: surface,
		session: chart.NewSession(chart.SessionConfig{
			Store:      store,
			Surface:    surface,
			Scheduler:  sched,
			Debounce:   opts.Debounce,
			RetryDelay: opts.RetryDelay,
			Filter:     filter,
			Theme:      "terminal",
		}),
		input: input,
		help:  help.New(),
	}
}

// Close stops pending callbacks and detaches the session.
func (m *Model) Close() {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
	m.session.Unmount()
	m.surface.Unmount()
}

func (m *Model) Session() *chart.Session { return m.session }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadSubjects(), m.sched.wait(), textinput.Blink)
}

func (m *Model) loadSubjects() tea.Cmd {
	return func() tea.Msg {
		subjects, err := m.service.Subjects(m.ctx)
		return subjectsMsg{subjects: subjects, err: err}
	}
}

func (m *Model) loadGameLog(id string, refresh bool) tea.Cmd {
	if !refresh {
		m.loadGen++
	}
	gen := m.loadGen
	return func() tea.Msg {
		subject, records, err := m.service.GameLog(m.ctx, id)
		return gameLogMsg{gen: gen, refresh: refresh, subject: subject, records: records, err: err}
	}
}

func (m *Model) lookupBestLine(commit bool) tea.Cmd {
	id, metric, gen := m.subjectID, m.session.Metric().ID, m.loadGen
	if id == "" {
		return nil
	}
	return func() tea.Msg {
		best, _ := m.service.BestLine(m.ctx, id, metric)
		return bestLineMsg{gen: gen, metric: metric, value: best, commit: commit}
	}
}

func (m *Model) lookupRank() tea.Cmd {
	opp := m.session.FilterContext().CurrentOpponentAbbr
	if o := m.session.Filter().OpponentOverride; o != "" && o != series.OpponentAll {
		opp = o
	}
	if opp == "" || m.subjectID == "" {
		m.rank = ""
		return nil
	}
	metric, gen := leagueMetric(m.session.Metric()), m.loadGen
	return func() tea.Msg {
		r, err := m.service.OpponentRank(m.ctx, opp, metric)
		return rankMsg{gen: gen, rank: r, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case callMsg:
		msg()
		m.syncInput()
		return m, m.sched.wait()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.surface.Mount(msg.Width)
		m.help.Width = msg.Width
		// re-render now that writes can land
		m.session.Rebuild()
		return m, nil

	case subjectsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.subjects = msg.subjects
		if m.subjectID == "" && len(m.subjects) > 0 {
			id := m.subjects[0].ID
			for _, s := range m.subjects {
				if s.ID == m.opts.SubjectID {
					id = s.ID
				}
			}
			return m, m.loadGameLog(id, false)
		}
		return m, nil

	case gameLogMsg:
		return m, m.applyGameLog(msg)

	case bestLineMsg:
		if msg.gen != m.loadGen || msg.metric != m.session.Metric().ID {
			return m, nil
		}
		if msg.commit {
			m.session.OnCommit(msg.value)
		} else {
			m.session.OnAutoSuggest(msg.value)
		}
		m.syncInput()
		return m, nil

	case rankMsg:
		if msg.gen != m.loadGen {
			return m, nil
		}
		if msg.err != nil {
			slog.Warn("opponent rank failed", "error", msg.err)
			m.rank = ""
			return m, nil
		}
		r := msg.rank
		m.rank = rankStyles[r.Tier].Render(fmt.Sprintf("vs %s: #%d of %d in %s", r.Team, r.Rank, r.Size, r.Metric))
		return m, nil

	case SwitchMsg:
		if msg.SubjectID != m.subjectID {
			return m, nil
		}
		fc := m.session.FilterContext()
		fc.CurrentOpponentID = msg.OpponentID
		fc.CurrentOpponentAbbr = msg.OpponentAbbr
		m.session.SetFilterContext(fc)
		m.service.Tracker().Display(msg.SubjectID, msg.NextGameID)
		m.status = "next opponent: " + msg.OpponentAbbr
		return m, m.lookupRank()

	case ReloadMsg:
		cmds := []tea.Cmd{m.loadSubjects()}
		if m.subjectID != "" {
			cmds = append(cmds, m.loadGameLog(m.subjectID, true))
		}
		return m, tea.Batch(cmds...)

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		if m.input.Focused() {
			return m, m.updateInput(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applyGameLog(msg gameLogMsg) tea.Cmd {
	if msg.gen != m.loadGen {
		return nil
	}
	if msg.err != nil {
		m.err = msg.err
		return nil
	}
	m.err = nil
	if msg.refresh {
		if msg.subject.ID != m.subjectID {
			return nil
		}
		// the threshold survives an import refresh
		m.store.Replace(msg.subject, msg.records)
		m.session.Rebuild()
		m.syncInput()
		return nil
	}

	m.subjectID = msg.subject.ID
	m.session.SetSubject(msg.subject, msg.records, application.FilterContextFor(msg.subject, msg.records, time.Time{}))
	if next, ok := application.UpcomingGame(msg.records); ok {
		m.service.Tracker().Display(msg.subject.ID, next.GameID)
	}
	m.syncInput()
	slog.Debug("terminal subject shown", "subject", msg.subject.ID, "games", len(msg.records))
	return tea.Batch(m.lookupBestLine(false), m.lookupRank())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Quit):
		m.Close()
		return tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, keys.Edit):
		m.input.SetValue(formatLine(m.session.Threshold().Effective()))
		m.input.CursorEnd()
		return m.input.Focus()
	case key.Matches(msg, keys.Raise):
		m.nudge(lineStep)
	case key.Matches(msg, keys.Lower):
		m.nudge(-lineStep)
	case key.Matches(msg, keys.Best):
		return m.lookupBestLine(true)
	case key.Matches(msg, keys.Metric):
		m.cycleMetric()
		return tea.Batch(m.lookupBestLine(false), m.lookupRank())
	case key.Matches(msg, keys.Timeframe):
		cfg := m.session.Filter()
		cfg.Timeframe = (cfg.Timeframe + 1) % (series.TimeframeAllTime + 1)
		if cfg.Timeframe == series.TimeframeLastN && cfg.N <= 0 {
			cfg.N = series.DefaultLastN
		}
		m.session.SetFilter(cfg)
		m.syncInput()
	case key.Matches(msg, keys.Venue):
		cfg := m.session.Filter()
		cfg.HomeAway = (cfg.HomeAway + 1) % (series.HomeAwayAway + 1)
		m.session.SetFilter(cfg)
		m.syncInput()
	case key.Matches(msg, keys.Next):
		return m.stepSubject(1)
	case key.Matches(msg, keys.Prev):
		return m.stepSubject(-1)
	}
	return nil
}

// nudge moves the line through the transient path; the controller commits
// once the keys stop.
func (m *Model) nudge(delta float64) {
	v := m.session.Threshold().Effective() + delta
	if m.session.OnTransientInput(v) {
		m.input.SetValue(formatLine(v))
	}
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Commit), key.Matches(msg, keys.Cancel):
		// leaving the entry commits, like focus loss on the desktop
		m.input.Blur()
		if !m.session.OnCommitText(m.input.Value()) {
			m.input.SetValue(formatLine(m.session.Threshold().Committed))
		}
		return nil
	case msg.Type == tea.KeyCtrlC:
		m.Close()
		return tea.Quit
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.session.OnTransientText(v)
	}
	return cmd
}

func (m *Model) cycleMetric() {
	cur := m.session.Metric()
	defs := series.Metrics(cur.Scope)
	if len(defs) == 0 {
		return
	}
	next := defs[0]
	for i, d := range defs {
		if d.ID == cur.ID {
			next = defs[(i+1)%len(defs)]
			break
		}
	}
	m.session.SetMetric(next.ID)
	m.syncInput()
}

func (m *Model) stepSubject(delta int) tea.Cmd {
	n := len(m.subjects)
	if n == 0 {
		return nil
	}
	idx := 0
	for i, s := range m.subjects {
		if s.ID == m.subjectID {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%n + n) % n
	return m.loadGameLog(m.subjects[idx].ID, false)
}

// syncInput mirrors the effective line into the entry unless the user is
// typing in it.
func (m *Model) syncInput() {
	if m.input.Focused() {
		return
	}
	m.input.SetValue(formatLine(m.session.Threshold().Effective()))
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteByte('\n')

	rows := m.height - 8
	if m.help.ShowAll {
		rows -= 4
	}
	b.WriteString(m.surface.Render(max(4, rows)))
	b.WriteByte('\n')

	sum := m.session.Summary()
	summary := mutedStyle.Render("no games")
	if sum.SeriesLength > 0 {
		summary = fmt.Sprintf("%d of %d over %s", sum.OverCount, sum.SeriesLength, formatLine(sum.CommittedThreshold))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, m.input.View(), "  ", m.surface.Pill(), "  ", summary, "  ", m.rank))
	b.WriteByte('\n')

	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render("ERROR: " + m.err.Error()))
	case m.status != "":
		b.WriteString(mutedStyle.Render(m.status))
	}
	b.WriteByte('\n')
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m *Model) header() string {
	name := "no subject"
	for _, s := range m.subjects {
		if s.ID == m.subjectID {
			name = s.Name
			if s.TeamAbbr != "" {
				name += " (" + s.TeamAbbr + ")"
			}
		}
	}
	cfg := m.session.Filter()
	parts := []string{m.session.Metric().Label, timeframeLabel(cfg)}
	if cfg.HomeAway != series.HomeAwayAll {
		parts = append(parts, venueLabel(cfg.HomeAway))
	}
	if cfg.OpponentOverride != "" && cfg.OpponentOverride != series.OpponentAll {
		parts = append(parts, "vs "+cfg.OpponentOverride)
	}
	return titleStyle.Render(name) + mutedStyle.Render("  "+strings.Join(parts, " · "))
}

func timeframeLabel(cfg series.FilterConfig) string {
	switch cfg.Timeframe {
	case series.TimeframeLastN:
		return "last " + strconv.Itoa(cfg.N)
	case series.TimeframeH2H:
		return "head to head"
	case series.TimeframeThisSeason:
		return "this season"
	case series.TimeframeLastSeason:
		return "last season"
	default:
		return "all time"
	}
}

func venueLabel(h series.HomeAway) string {
	if h == series.HomeAwayHome {
		return "home"
	}
	return "away"
}

// leagueMetric picks the opponent ranking that best matches a chart metric.
func leagueMetric(def series.MetricDefinition) string {
	switch def.ID {
	case series.MetricPoints, series.MetricPRA, series.MetricPR, series.MetricPA:
		return ranking.MetricPointsAllowed
	case series.MetricRebounds, series.MetricRA:
		return ranking.MetricReboundsAllowed
	case series.MetricAssists:
		return ranking.MetricAssistsAllowed
	case series.MetricThrees, series.MetricFG3Pct:
		return ranking.MetricThreesAllowed
	case series.MetricTotalPoints:
		return ranking.MetricPace
	}
	if def.Scope == series.ScopeTeam {
		return ranking.MetricOffRating
	}
	return ranking.MetricDefRating
}

func formatLine(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
