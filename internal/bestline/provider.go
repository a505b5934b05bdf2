// Package bestline looks up the most favourable external reference line for
// a subject and metric. The chart uses it to seed the threshold until the user
// edits it.
package bestline

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/persistence"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

// NeutralLine is used when neither a provider nor the metric supplies a line.
const NeutralLine = 0.5

// Provider returns the best line for a subject and metric. ok is false when
// no line is known; that is not an error.
type Provider interface {
	Best(ctx context.Context, subjectID string, metric series.MetricID) (value float64, ok bool, err error)
}

// Pick chooses the most favourable line for an over: the lowest value, or
// the highest for lower-is-better metrics. Non-finite values are ignored.
func Pick(lines []gamelog.LineSnapshot, lowerIsBetter bool) (gamelog.LineSnapshot, bool) {
	var best gamelog.LineSnapshot
	found := false
	for _, l := range lines {
		if math.IsNaN(l.Value) || math.IsInf(l.Value, 0) {
			continue
		}
		if !found {
			best, found = l, true
			continue
		}
		if lowerIsBetter {
			if l.Value > best.Value {
				best = l
			}
		} else if l.Value < best.Value {
			best = l
		}
	}
	return best, found
}

// NeutralDefault is the metric's default line, or NeutralLine.
func NeutralDefault(metric series.MetricID) float64 {
	if def, ok := series.LookupMetric(metric); ok && def.DefaultLine != 0 {
		return def.DefaultLine
	}
	return NeutralLine
}

// RepositoryProvider reads snapshots persisted by the importer.
type RepositoryProvider struct {
	repo persistence.BestLineRepository
}

func NewRepositoryProvider(repo persistence.BestLineRepository) *RepositoryProvider {
	return &RepositoryProvider{repo: repo}
}

func (p *RepositoryProvider) Best(ctx context.Context, subjectID string, metric series.MetricID) (float64, bool, error) {
	lines, err := p.repo.ListLines(ctx, subjectID, string(metric))
	if err != nil {
		return 0, false, fmt.Errorf("list lines %s/%s: %w", subjectID, metric, err)
	}
	best, ok := Pick(lines, series.LowerIsBetter(metric))
	return best.Value, ok, nil
}

// Chain asks each provider in turn. A failing provider is logged and
// skipped so one unavailable backend does not hide the others.
type Chain []Provider

func (c Chain) Best(ctx context.Context, subjectID string, metric series.MetricID) (float64, bool, error) {
	var firstErr error
	for _, p := range c {
		if p == nil {
			continue
		}
		v, ok, err := p.Best(ctx, subjectID, metric)
		if err != nil {
			slog.Warn("best line provider failed", "subject", subjectID, "metric", metric, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return v, true, nil
		}
	}
	return 0, false, firstErr
}

// Resolve returns the provider's line or the neutral default. Errors degrade
// to the default.
func Resolve(ctx context.Context, p Provider, subjectID string, metric series.MetricID) (float64, bool) {
	if p != nil {
		v, ok, err := p.Best(ctx, subjectID, metric)
		if err != nil {
			slog.Warn("best line lookup failed", "subject", subjectID, "metric", metric, "error", err)
		}
		if ok {
			return v, true
		}
	}
	return NeutralDefault(metric), false
}
