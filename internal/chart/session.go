package chart

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AkatukiSora/gamelog-lines/internal/clock"
	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
	"github.com/AkatukiSora/gamelog-lines/internal/threshold"
)

type SessionConfig struct {
	Store      *gamelog.Store
	Surface    Surface
	Scheduler  clock.Scheduler
	Debounce   time.Duration
	RetryDelay time.Duration
	Filter     series.FilterConfig
	Theme      string
}

// Session wires one mounted chart: store -> filter -> project -> scale on the
// structural side, and controller -> channel on the overlay side. It is owned
// by the UI goroutine.
type Session struct {
	id      string
	store   *gamelog.Store
	surface Surface

	ctrl     *threshold.Controller
	channel  *Channel
	splitter *Splitter

	mu       sync.Mutex
	filter   series.FilterConfig
	fctx     series.FilterContext
	metric   series.MetricDefinition
	theme    string
	storeGen uint64
	dirty    bool
	seriesID uint64
	points   []series.Point
	values   []float64
	domain   *series.Domain
	summary  Summary
	mounted  bool

	listeners    map[int]func(Summary)
	nextListener int
}

func NewSession(cfg SessionConfig) *Session {
	store := cfg.Store
	if store == nil {
		store = gamelog.NewStore()
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = clock.Real{}
	}
	filter := cfg.Filter
	if filter.SeasonStartMonth == 0 {
		filter.SeasonStartMonth = series.DefaultSeasonStartMonth
	}

	s := &Session{
		id:        uuid.NewString(),
		store:     store,
		surface:   cfg.Surface,
		filter:    filter,
		theme:     cfg.Theme,
		dirty:     true,
		mounted:   true,
		listeners: make(map[int]func(Summary)),
	}
	s.metric, _ = series.LookupMetric(series.DefaultMetric(series.ScopePlayer))
	s.channel = NewChannel(cfg.Surface, sched, cfg.RetryDelay)
	s.ctrl = threshold.New(threshold.Config{
		Scheduler: sched,
		Debounce:  cfg.Debounce,
		Mutator:   threshold.MutatorFunc(s.applyTransient),
		OnCommit:  s.onCommit,
	})
	s.ctrl.SelectMetric(s.metric.ID, s.metric.DefaultLine)
	// nothing renders until the splitter exists
	s.splitter = NewSplitter(s.renderStructural, s.renderOverlay)
	return s
}

func (s *Session) ID() string { return s.id }

// SetSubject swaps the game log and resets per-subject threshold state.
func (s *Session) SetSubject(subject gamelog.Subject, records []gamelog.Record, fc series.FilterContext) {
	s.store.Replace(subject, records)

	scope := series.ScopePlayer
	if subject.Kind == gamelog.SubjectTeam {
		scope = series.ScopeTeam
		fc.TeamMode = true
	}
	if fc.SubjectTeamID == 0 {
		fc.SubjectTeamID = subject.TeamID
	}
	if fc.SubjectTeamAbbr == "" {
		fc.SubjectTeamAbbr = subject.TeamAbbr
	}

	s.mu.Lock()
	s.fctx = fc
	s.dirty = true
	switchMetric := s.metric.Scope != scope
	s.mu.Unlock()

	s.ctrl.ResetSubject()
	if switchMetric {
		s.SetMetric(series.DefaultMetric(scope))
		return
	}
	s.Rebuild()
}

// SetFilterContext updates the opponent/season context, e.g. when the next
// opponent changes.
func (s *Session) SetFilterContext(fc series.FilterContext) {
	s.mu.Lock()
	s.fctx = fc
	s.dirty = true
	s.mu.Unlock()
	s.Rebuild()
}

func (s *Session) FilterContext() series.FilterContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fctx
}

func (s *Session) SetFilter(cfg series.FilterConfig) {
	if cfg.SeasonStartMonth == 0 {
		cfg.SeasonStartMonth = series.DefaultSeasonStartMonth
	}
	s.mu.Lock()
	if s.filter == cfg {
		s.mu.Unlock()
		return
	}
	s.filter = cfg
	s.dirty = true
	s.mu.Unlock()
	s.Rebuild()
}

func (s *Session) Filter() series.FilterConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetMetric selects a metric and seeds the threshold with its default line.
// Unknown ids are ignored.
func (s *Session) SetMetric(id series.MetricID) {
	def, ok := series.LookupMetric(id)
	if !ok {
		slog.Warn("unknown metric", "metric", id)
		return
	}
	s.mu.Lock()
	s.metric = def
	s.dirty = true
	s.mu.Unlock()

	// SelectMetric commits the default line, which rebuilds.
	s.ctrl.SelectMetric(def.ID, def.DefaultLine)
}

func (s *Session) Metric() series.MetricDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metric
}

func (s *Session) SetTheme(theme string) {
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	s.Rebuild()
}

// Rebuild recomputes the series when its inputs changed and lets the
// splitter decide which layers to render. Threshold-only changes leave the
// series, and so the structural key, untouched.
func (s *Session) Rebuild() {
	if s.splitter == nil {
		return
	}
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return
	}
	_, records, gen := s.store.Snapshot()
	if s.dirty || gen != s.storeGen {
		games := series.Filter(records, s.filter, s.fctx)
		s.points = series.Project(games, s.metric.ID)
		s.values = series.Values(s.points)
		s.domain = series.Scale(s.values, s.metric.Class)
		s.seriesID++
		s.storeGen = gen
		s.dirty = false
	}
	sk := s.structuralKeyLocked()
	s.mu.Unlock()

	s.splitter.Update(sk, s.overlayKey())
}

func (s *Session) structuralKeyLocked() StructuralKey {
	return StructuralKey{
		SeriesID: s.seriesID,
		Domain:   s.domain,
		Metric:   s.metric.ID,
		Theme:    s.theme,
	}
}

func (s *Session) overlayKey() OverlayKey {
	st := s.ctrl.State()
	s.mu.Lock()
	defer s.mu.Unlock()
	k := OverlayKey{Committed: st.Committed, Domain: s.domain}
	if st.Transient != nil {
		k.Transient, k.HasTransient = *st.Transient, true
	}
	return k
}

// StructuralKey is the current memo key of the structural layer.
func (s *Session) StructuralKey() StructuralKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.structuralKeyLocked()
}

func (s *Session) Splitter() *Splitter { return s.splitter }

func (s *Session) Points() []series.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.points
}

func (s *Session) Domain() *series.Domain {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.domain
}

func (s *Session) Threshold() threshold.State { return s.ctrl.State() }

func (s *Session) renderStructural(StructuralKey) {
	s.mu.Lock()
	view := StructuralView{Points: s.points, Domain: s.domain, Metric: s.metric, Theme: s.theme}
	values, domain, lower := s.values, s.domain, s.metric.LowerIsBetter
	s.mu.Unlock()

	if s.surface != nil {
		s.surface.RenderStructure(view)
	}
	s.channel.Bind(values, domain, lower)
	slog.Debug("chart structure rendered", "session", s.id, "metric", view.Metric.ID, "points", len(view.Points))
}

// renderOverlay re-applies the visible threshold and re-derives the summary
// from the committed value.
func (s *Session) renderOverlay(k OverlayKey) {
	value := k.Committed
	if k.HasTransient {
		value = k.Transient
	}
	s.channel.Apply(value)
	s.refreshSummary(k.Committed)
}

func (s *Session) applyTransient(v float64) {
	s.channel.Apply(v)
}

func (s *Session) onCommit(threshold.State) {
	s.Rebuild()
}

func (s *Session) refreshSummary(committed float64) {
	s.mu.Lock()
	agg := ComputeAggregate(s.values, committed, s.metric.LowerIsBetter)
	next := Summary{
		CommittedThreshold: committed,
		SeriesLength:       agg.Total,
		OverCount:          agg.Over,
		OverRatePercent:    agg.Percent,
	}
	if next == s.summary {
		s.mu.Unlock()
		return
	}
	s.summary = next
	listeners := make([]func(Summary), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}

// Summary is the produced interface: committed threshold plus the over-rate
// derived from it.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// AddListener registers fn for summary changes and returns its detach func.
func (s *Session) AddListener(fn func(Summary)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// OnTransientInput is the pointer/keystroke path: the channel writes happen
// before this returns, the commit follows after the debounce.
func (s *Session) OnTransientInput(v float64) bool {
	if !s.ctrl.OnTransientInput(v) {
		return false
	}
	s.Rebuild()
	return true
}

func (s *Session) OnTransientText(text string) bool {
	if !s.ctrl.OnTransientText(text) {
		return false
	}
	s.Rebuild()
	return true
}

func (s *Session) OnCommit(v float64) bool { return s.ctrl.OnCommit(v) }

func (s *Session) OnCommitText(text string) bool { return s.ctrl.OnCommitText(text) }

// Flush commits an in-flight edit, e.g. when the entry loses focus.
func (s *Session) Flush() bool { return s.ctrl.Flush() }

// OnAutoSuggest seeds the threshold from a best-line lookup unless the user
// already edited it.
func (s *Session) OnAutoSuggest(best float64) bool { return s.ctrl.OnAutoSuggest(best) }

func (s *Session) IsManual() bool {
	return s.ctrl.IsManual(s.Metric().ID)
}

// Unmount stops the debounce timer, drops pending node retries and detaches
// every listener. The session is inert afterwards.
func (s *Session) Unmount() {
	s.ctrl.Close()
	s.channel.Cancel()
	s.mu.Lock()
	s.mounted = false
	s.listeners = make(map[int]func(Summary))
	s.mu.Unlock()
	slog.Debug("chart session unmounted", "session", s.id)
}
