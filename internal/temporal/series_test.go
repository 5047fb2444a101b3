package temporal

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"codewhisperer/internal/store"
)

// failingKV rejects every write. Get reports the key as absent.
type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, nil }
func (failingKV) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}
func (failingKV) Close() error { return nil }

func newTestSeriesStore(kv store.KV) *SeriesStore {
	s := NewSeriesStore(kv, DefaultParams().SeriesRetention, zap.NewNop())
	s.now = func() time.Time { return testBase }
	return s
}

func TestRecordCreatesSeriesLazily(t *testing.T) {
	s := newTestSeriesStore(store.NewMemoryKV())

	s.Record("go:error_handling", 1.0, PointContext{Language: "go"})

	series := s.Get("go:error_handling")
	if series == nil {
		t.Fatal("series not created")
	}
	if series.Trend != TrendStable || series.Confidence != 0.5 {
		t.Fatalf("new series trend=%q conf=%v, want stable/0.5", series.Trend, series.Confidence)
	}
	if len(series.Timeline) != 1 {
		t.Fatalf("timeline has %d points, want 1", len(series.Timeline))
	}

	p := series.Timeline[0]
	if p.Context.Weekday == nil || *p.Context.Weekday != int(testBase.Weekday()) {
		t.Errorf("weekday not stamped from record instant: %v", p.Context.Weekday)
	}
	if p.Context.Hour == nil || *p.Context.Hour != testBase.Hour() {
		t.Errorf("hour not stamped from record instant: %v", p.Context.Hour)
	}
}

func TestRecordKeepsCallerContext(t *testing.T) {
	s := newTestSeriesStore(store.NewMemoryKV())

	s.Record("p", 1.0, PointContext{Weekday: intPtr(2), Hour: intPtr(23)})

	p := s.Get("p").Timeline[0]
	if *p.Context.Weekday != 2 || *p.Context.Hour != 23 {
		t.Fatalf("caller context overwritten: weekday=%d hour=%d",
			*p.Context.Weekday, *p.Context.Hour)
	}
}

func TestRetentionPrunesOldPoints(t *testing.T) {
	s := newTestSeriesStore(store.NewMemoryKV())

	s.RecordAt("p", 1.0, PointContext{}, testBase.Add(-91*24*time.Hour))
	s.RecordAt("p", 2.0, PointContext{}, testBase)

	series := s.Get("p")
	if len(series.Timeline) != 1 {
		t.Fatalf("timeline has %d points after prune, want 1", len(series.Timeline))
	}
	if !series.Timeline[0].Timestamp.Equal(testBase) {
		t.Fatalf("wrong point survived: %v", series.Timeline[0].Timestamp)
	}
}

func TestLoadMissingStateStartsEmpty(t *testing.T) {
	s := newTestSeriesStore(store.NewMemoryKV())
	s.Load(context.Background())
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestLoadCorruptStateStartsEmpty(t *testing.T) {
	kv := store.NewMemoryKV()
	if err := kv.Set(context.Background(), seriesStateKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	s := newTestSeriesStore(kv)
	s.Load(context.Background())
	if s.Len() != 0 {
		t.Fatalf("Len() = %d after corrupt load, want 0", s.Len())
	}
}

func TestLoadUnsupportedVersionStartsEmpty(t *testing.T) {
	kv := store.NewMemoryKV()
	data, err := json.Marshal(seriesSnapshot{
		Version: 99,
		Series:  map[string]*TemporalSeries{"p": {PatternID: "p"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(context.Background(), seriesStateKey, data); err != nil {
		t.Fatal(err)
	}

	s := newTestSeriesStore(kv)
	s.Load(context.Background())
	if s.Len() != 0 {
		t.Fatalf("Len() = %d after version mismatch, want 0", s.Len())
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	kv := store.NewMemoryKV()
	s := newTestSeriesStore(kv)
	s.Record("p", 1.0, PointContext{})
	s.wait()

	restored := newTestSeriesStore(kv)
	restored.Load(context.Background())
	if restored.Len() != 1 {
		t.Fatalf("restored Len() = %d, want 1", restored.Len())
	}
	if got := restored.Get("p"); got == nil || len(got.Timeline) != 1 {
		t.Fatalf("restored series missing or empty: %+v", got)
	}
}

// Persistence trouble must never surface to the feedback path.
func TestCheckpointFailureSwallowed(t *testing.T) {
	s := newTestSeriesStore(failingKV{})
	s.Record("p", 1.0, PointContext{})
	s.wait()

	if s.Len() != 1 {
		t.Fatalf("in-memory state lost on checkpoint failure: Len() = %d", s.Len())
	}
	if err := s.Flush(context.Background()); err == nil {
		t.Fatal("Flush should report the write error")
	}
}

func TestPatternIDsSorted(t *testing.T) {
	s := newTestSeriesStore(store.NewMemoryKV())
	for _, id := range []string{"zeta", "alpha", "mid"} {
		s.Record(id, 1.0, PointContext{})
	}
	ids := s.PatternIDs()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("PatternIDs() = %v, want %v", ids, want)
		}
	}
}
