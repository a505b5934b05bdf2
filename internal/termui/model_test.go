package termui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AkatukiSora/gamelog-lines/internal/application"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

// run feeds msg to the model and resolves the returned commands that carry
// data messages. Scheduler waits and blinks are dropped.
func run(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		_, cmd := m.Update(next)
		queue = append(queue, resolve(cmd)...)
	}
}

func resolve(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		switch msg := msg.(type) {
		case tea.BatchMsg:
			var out []tea.Msg
			for _, c := range msg {
				out = append(out, resolve(c)...)
			}
			return out
		case subjectsMsg, gameLogMsg, bestLineMsg, rankMsg:
			return []tea.Msg{msg}
		}
	case <-time.After(50 * time.Millisecond):
		// blocking waits such as the scheduler's
	}
	return nil
}

func newTestModel(t *testing.T) (*Model, *fakeService) {
	t.Helper()
	svc := newFakeService()
	m := New(context.Background(), svc, Options{
		Debounce:   time.Hour,
		RetryDelay: time.Hour,
		Filter:     series.DefaultFilterConfig(),
	})
	t.Cleanup(m.Close)
	run(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	run(t, m, subjectsMsg{subjects: svc.subjects})
	return m, svc
}

func TestModelLoadsFirstSubjectAndSuggestsBestLine(t *testing.T) {
	m, _ := newTestModel(t)

	if m.subjectID != "p1" {
		t.Fatalf("subject = %q, want p1", m.subjectID)
	}
	if got := len(m.session.Points()); got != 5 {
		t.Fatalf("points = %d, want 5", got)
	}
	if got := m.session.Threshold().Committed; got != 21.5 {
		t.Fatalf("committed = %v, want suggested 21.5", got)
	}
	if m.input.Value() != "21.5" {
		t.Fatalf("input = %q, want 21.5", m.input.Value())
	}
	if sum := m.session.Summary(); sum.OverCount != 3 || sum.SeriesLength != 5 {
		t.Fatalf("summary = %+v, want 3 of 5", sum)
	}
	view := m.View()
	if !strings.Contains(view, "Guard One") || !strings.Contains(view, "3 of 5 over 21.5") {
		t.Fatalf("view missing header or summary:\n%s", view)
	}
}

func TestModelEntryCommitsOnEnter(t *testing.T) {
	m, _ := newTestModel(t)

	run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if !m.input.Focused() {
		t.Fatalf("entry not focused after e")
	}
	m.input.SetValue("")
	for _, r := range "25.5" {
		run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	st := m.session.Threshold()
	if st.Transient == nil || *st.Transient != 25.5 || st.Committed != 21.5 {
		t.Fatalf("state while typing = %+v", st)
	}

	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.input.Focused() {
		t.Fatalf("entry still focused after enter")
	}
	if got := m.session.Threshold().Committed; got != 25.5 {
		t.Fatalf("committed = %v, want 25.5", got)
	}
	if sum := m.session.Summary(); sum.OverCount != 2 {
		t.Fatalf("over = %d, want 2", sum.OverCount)
	}
}

func TestModelInvalidEntryRestoresCommitted(t *testing.T) {
	m, _ := newTestModel(t)

	run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	m.input.SetValue("abc")
	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.session.Threshold().Committed; got != 21.5 {
		t.Fatalf("committed = %v, want 21.5", got)
	}
	if m.input.Value() != "21.5" {
		t.Fatalf("input = %q, want restored 21.5", m.input.Value())
	}
}

func TestModelNudgeIsTransientUntilDebounce(t *testing.T) {
	m, _ := newTestModel(t)

	run(t, m, tea.KeyMsg{Type: tea.KeyUp})
	run(t, m, tea.KeyMsg{Type: tea.KeyUp})
	st := m.session.Threshold()
	if st.Transient == nil || *st.Transient != 22.5 {
		t.Fatalf("transient = %v, want 22.5", st.Transient)
	}
	if st.Committed != 21.5 {
		t.Fatalf("committed = %v before debounce", st.Committed)
	}
	if !m.session.Flush() || m.session.Threshold().Committed != 22.5 {
		t.Fatalf("flush did not commit 22.5")
	}
}

func TestModelManualEditBlocksSuggestion(t *testing.T) {
	m, svc := newTestModel(t)

	run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	m.input.SetValue("30")
	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	svc.best = 10.5
	run(t, m, ReloadMsg{})
	run(t, m, bestLineMsg{gen: m.loadGen, metric: m.session.Metric().ID, value: 10.5})
	if got := m.session.Threshold().Committed; got != 30 {
		t.Fatalf("committed = %v, want manual 30 kept", got)
	}

	run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	if got := m.session.Threshold().Committed; got != 10.5 {
		t.Fatalf("best-line key committed %v, want 10.5", got)
	}
}

func TestModelSubjectCyclingAndStaleLoads(t *testing.T) {
	m, svc := newTestModel(t)

	run(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.subjectID != "p2" || len(m.session.Points()) != 2 {
		t.Fatalf("after tab subject = %q points = %d", m.subjectID, len(m.session.Points()))
	}

	stale := gameLogMsg{gen: m.loadGen - 1, subject: svc.subjects[0], records: svc.logs["p1"]}
	run(t, m, stale)
	if m.subjectID != "p2" {
		t.Fatalf("stale load switched subject to %q", m.subjectID)
	}

	run(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.subjectID != "p1" {
		t.Fatalf("after shift+tab subject = %q, want p1", m.subjectID)
	}
}

func TestModelFollowsOpponentSwitch(t *testing.T) {
	m, _ := newTestModel(t)

	run(t, m, SwitchMsg(application.OpponentSwitch{SubjectID: "p1", NextGameID: "n1", OpponentID: 14, OpponentAbbr: "LAL"}))
	if fc := m.session.FilterContext(); fc.CurrentOpponentAbbr != "LAL" || fc.CurrentOpponentID != 14 {
		t.Fatalf("filter context = %+v", fc)
	}
	if !strings.Contains(m.rank, "LAL") {
		t.Fatalf("rank = %q, want LAL", m.rank)
	}

	run(t, m, SwitchMsg(application.OpponentSwitch{SubjectID: "other", OpponentAbbr: "BOS"}))
	if m.session.FilterContext().CurrentOpponentAbbr != "LAL" {
		t.Fatalf("switch for another subject applied")
	}
}

func TestModelCyclesFilters(t *testing.T) {
	m, _ := newTestModel(t)

	run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	if m.session.Metric().ID == series.MetricPoints {
		t.Fatalf("metric did not change")
	}
	run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if m.session.Filter().Timeframe != series.TimeframeH2H {
		t.Fatalf("timeframe = %v, want h2h", m.session.Filter().Timeframe)
	}
	run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("v")})
	if m.session.Filter().HomeAway != series.HomeAwayHome {
		t.Fatalf("venue = %v, want home", m.session.Filter().HomeAway)
	}
}
