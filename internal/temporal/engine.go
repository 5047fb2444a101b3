// Package temporal implements the temporal pattern analysis engine behind
// the suggestion assistant: it ingests timestamped feedback, maintains
// bounded per-pattern time series, classifies trends via regression and
// periodicity tests, and detects discrete coding habit changes by comparing
// pattern-usage distributions across fixed-width time windows.
//
// Every failure mode degrades to a safe default. Feedback ingestion and
// periodic analysis can never crash the host process: load falls back to
// empty state, persistence is fire-and-forget, and insufficient data is a
// neutral result rather than an error.
package temporal

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"codewhisperer/internal/store"
)

// Engine is the single entry point for all mutating and reading operations.
// One mutex guards both the series mapping and the habit-change collection:
// periodic recomputation rewrites trend fields while feedback may append
// points, and insight readers must observe a consistent snapshot.
type Engine struct {
	mu     sync.Mutex
	log    *zap.Logger
	params Params
	now    func() time.Time

	series   *SeriesStore
	analyzer *TrendAnalyzer
	detector *HabitDetector
}

// Option customizes engine construction.
type Option func(*Engine)

// WithClock overrides the engine clock. Tests and history replay.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires the series store, trend analyzer, and habit detector
// around one durable state store.
func NewEngine(kv store.KV, params Params, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		log:    log,
		params: params,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.series = NewSeriesStore(kv, params.SeriesRetention, log)
	e.series.now = e.now
	e.analyzer = NewTrendAnalyzer(params)
	e.detector = NewHabitDetector(kv, params, log)
	e.detector.now = e.now
	return e
}

// Load restores checkpointed state from the durable store. Never fails:
// unreadable state starts empty and is logged.
func (e *Engine) Load(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.series.Load(ctx)
	e.detector.Load(ctx)
}

// RecordDataPoint appends a scalar observation to a pattern's series,
// creating the series lazily. Always succeeds; persistence runs in the
// background.
func (e *Engine) RecordDataPoint(patternID string, value float64, pctx PointContext) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.series.Record(patternID, value, pctx)
}

// RecordFeedback feeds a raw editor event into the series store: for each
// pattern type the suggestion is relevant to, a point is appended on the
// "language:patternType" series with value 1 for an accept and 0 otherwise.
// This keeps acceptance-rate trends flowing without separate wiring.
func (e *Engine) RecordFeedback(rec FeedbackRecord) {
	if rec.Context.SuggestionText == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	value := 0.0
	if rec.Action == ActionAccept {
		value = 1.0
	}
	at := rec.Timestamp
	if at.IsZero() {
		at = e.now()
	}
	for _, pt := range patternTypes {
		if !relevantTo(pt, rec.Context.SuggestionText) {
			continue
		}
		id := rec.Context.Language + ":" + string(pt)
		e.series.RecordAt(id, value, PointContext{Language: rec.Context.Language}, at)
	}
}

// AnalyzeHabitEvolution detects habit changes in the supplied feedback
// history and returns the newly detected ones.
func (e *Engine) AnalyzeHabitEvolution(history []FeedbackRecord) []CodingHabitChange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detector.AnalyzeEvolution(history)
}

// AnalyzeTrend classifies one pattern's trend and refreshes the cached
// trend on its series. Untracked patterns are stable.
func (e *Engine) AnalyzeTrend(patternID string) Trend {
	e.mu.Lock()
	defer e.mu.Unlock()

	series := e.series.Get(patternID)
	if series == nil {
		return TrendStable
	}
	trend := e.analyzer.Classify(series)
	series.Trend = trend
	series.LastAnalysis = e.now()
	return trend
}

// SetClassifier swaps the suggestion classifier for one pattern type.
func (e *Engine) SetClassifier(pt PatternType, fn ClassifierFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detector.SetClassifier(pt, fn)
}

// Recompute refreshes every cached trend and flushes both persisted blobs
// synchronously. Driven by the Scheduler.
func (e *Engine) Recompute(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.insightsLocked()
	if err := e.series.Flush(ctx); err != nil {
		e.log.Warn("series flush failed", zap.Error(err))
	}
	if err := e.detector.Flush(ctx); err != nil {
		e.log.Warn("habit change flush failed", zap.Error(err))
	}
}

// Close waits for in-flight background checkpoints. Call on shutdown after
// stopping the scheduler.
func (e *Engine) Close() {
	e.series.wait()
	e.detector.wait()
}
