package temporal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"codewhisperer/internal/store"
)

const (
	seriesStateKey  = "temporal-series"
	snapshotVersion = 1

	checkpointTimeout = 10 * time.Second
)

// seriesSnapshot is the persisted envelope for the series mapping.
type seriesSnapshot struct {
	Version int                        `json:"version"`
	Series  map[string]*TemporalSeries `json:"series"`
}

// SeriesStore owns the patternId -> TemporalSeries mapping: lazy creation,
// append-and-prune, best-effort checkpointing. Not safe for concurrent use;
// the Engine serializes access.
type SeriesStore struct {
	kv        store.KV
	log       *zap.Logger
	retention time.Duration
	now       func() time.Time

	series map[string]*TemporalSeries
	ckpt   *checkpointer
}

// NewSeriesStore returns an empty store checkpointing through kv.
func NewSeriesStore(kv store.KV, retention time.Duration, log *zap.Logger) *SeriesStore {
	return &SeriesStore{
		kv:        kv,
		log:       log,
		retention: retention,
		now:       time.Now,
		series:    make(map[string]*TemporalSeries),
		ckpt:      newCheckpointer(kv, seriesStateKey, log),
	}
}

// Load restores the checkpointed mapping. Missing, corrupt, or
// unrecognized state degrades to an empty mapping; startup never fails on
// bad state.
func (s *SeriesStore) Load(ctx context.Context) {
	data, err := s.kv.Get(ctx, seriesStateKey)
	if err != nil {
		s.log.Warn("series state unreadable, starting empty", zap.Error(err))
		return
	}
	if len(data) == 0 {
		return
	}

	var snap seriesSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.Warn("series state corrupt, starting empty", zap.Error(err))
		return
	}
	if snap.Version != snapshotVersion {
		s.log.Warn("series state version unsupported, starting empty",
			zap.Int("version", snap.Version))
		return
	}
	if snap.Series != nil {
		s.series = snap.Series
	}
	s.log.Debug("series state loaded", zap.Int("patterns", len(s.series)))
}

// Record appends a point stamped with the current instant.
func (s *SeriesStore) Record(patternID string, value float64, pctx PointContext) {
	s.RecordAt(patternID, value, pctx, s.now())
}

// RecordAt appends a point at an explicit instant (history replay). The
// series is created lazily on first use; weekday and hour are stamped from
// the instant unless the caller already supplied them. Every append prunes
// points older than the retention window and triggers a best-effort
// checkpoint.
func (s *SeriesStore) RecordAt(patternID string, value float64, pctx PointContext, at time.Time) {
	series, ok := s.series[patternID]
	if !ok {
		series = &TemporalSeries{
			PatternID:  patternID,
			Trend:      TrendStable,
			Confidence: 0.5,
		}
		s.series[patternID] = series
	}

	if pctx.Weekday == nil {
		wd := int(at.Weekday())
		pctx.Weekday = &wd
	}
	if pctx.Hour == nil {
		hr := at.Hour()
		pctx.Hour = &hr
	}

	series.Timeline = append(series.Timeline, DataPoint{
		Timestamp: at,
		Value:     value,
		Context:   pctx,
	})
	s.pruneSeries(series)
	s.checkpointAsync()
}

func (s *SeriesStore) pruneSeries(series *TemporalSeries) {
	cutoff := s.now().Add(-s.retention)
	kept := series.Timeline[:0]
	for _, p := range series.Timeline {
		if p.Timestamp.After(cutoff) {
			kept = append(kept, p)
		}
	}
	series.Timeline = kept
}

// Get returns the series for patternID, or nil when untracked.
func (s *SeriesStore) Get(patternID string) *TemporalSeries {
	return s.series[patternID]
}

// PatternIDs returns all tracked pattern ids, sorted.
func (s *SeriesStore) PatternIDs() []string {
	ids := make([]string, 0, len(s.series))
	for id := range s.series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of tracked patterns.
func (s *SeriesStore) Len() int { return len(s.series) }

// Flush writes the mapping synchronously. Used by periodic recomputation
// and shutdown; the feedback path never blocks on it.
func (s *SeriesStore) Flush(ctx context.Context) error {
	data, err := s.snapshot()
	if err != nil {
		return fmt.Errorf("encode series state: %w", err)
	}
	if err := s.ckpt.flush(ctx, data); err != nil {
		return fmt.Errorf("write series state: %w", err)
	}
	return nil
}

func (s *SeriesStore) snapshot() ([]byte, error) {
	return json.Marshal(seriesSnapshot{Version: snapshotVersion, Series: s.series})
}

// checkpointAsync encodes under the caller's serialization and hands the
// snapshot to the ordered writer. Failures are logged and swallowed;
// feedback collection must never break on persistence trouble.
func (s *SeriesStore) checkpointAsync() {
	data, err := s.snapshot()
	if err != nil {
		s.log.Warn("series checkpoint encode failed", zap.Error(err))
		return
	}
	s.ckpt.submit(data)
}

// wait blocks until in-flight checkpoints finish. Shutdown only.
func (s *SeriesStore) wait() { s.ckpt.wait() }
