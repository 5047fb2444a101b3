package ingest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codewhisperer/internal/store"
	"codewhisperer/internal/temporal"
)

func feedbackLine(t *testing.T, at time.Time, action temporal.FeedbackAction, lang, text string) []byte {
	t.Helper()
	rec := temporal.FeedbackRecord{
		Timestamp: at,
		Action:    action,
		Context:   temporal.FeedbackContext{Language: lang, SuggestionText: text},
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	return append(data, '\n')
}

func appendFile(t *testing.T, path string, data []byte) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestWatcherDrainsExistingAndTails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.jsonl")
	start := time.Now().Add(-21 * 24 * time.Hour)

	var existing []byte
	for i := 0; i < 8; i++ {
		at := start.Add(time.Duration(i) * 24 * time.Hour)
		existing = append(existing, feedbackLine(t, at, temporal.ActionAccept, "javascript", "var x = 1")...)
	}
	for i := 0; i < 8; i++ {
		at := start.Add(time.Duration(14+i) * 24 * time.Hour)
		existing = append(existing, feedbackLine(t, at, temporal.ActionAccept, "javascript", "let x = 1")...)
	}
	require.NoError(t, os.WriteFile(path, existing, 0644))

	engine := temporal.NewEngine(store.NewMemoryKV(), temporal.DefaultParams(), nil)
	w := NewWatcher(engine, path, nil)

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	defer engine.Close()
	defer w.Stop()

	// Start drains the backlog synchronously: the var -> let shift is
	// already detected.
	report := engine.TemporalInsights()
	require.Len(t, report.RecentChanges, 1)
	assert.Equal(t, "javascript", report.RecentChanges[0].Language)
	assert.Equal(t, "var", report.RecentChanges[0].OldPattern)
	assert.Equal(t, "let", report.RecentChanges[0].NewPattern)
	baseline := len(report.TrendingPatterns)

	// Appended lines are picked up; malformed ones are skipped.
	appendFile(t, path, []byte("{not json\n"))
	appendFile(t, path, feedbackLine(t, time.Now(), temporal.ActionAccept, "python", "import os"))

	require.Eventually(t, func() bool {
		return len(engine.TemporalInsights().TrendingPatterns) > baseline
	}, 5*time.Second, 20*time.Millisecond, "appended feedback never ingested")
}

func TestWatcherWaitsForCompleteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.jsonl")

	// A half-written append: no trailing newline yet.
	full := feedbackLine(t, time.Now(), temporal.ActionAccept, "go", "if err != nil { return err }")
	partial := full[:len(full)-1]
	require.NoError(t, os.WriteFile(path, partial, 0644))

	engine := temporal.NewEngine(store.NewMemoryKV(), temporal.DefaultParams(), nil)
	w := NewWatcher(engine, path, nil)

	require.NoError(t, w.Start(context.Background()))
	defer engine.Close()
	defer w.Stop()

	assert.Empty(t, engine.TemporalInsights().TrendingPatterns,
		"partial line must not be ingested")

	// Completing the line makes the record visible.
	appendFile(t, path, []byte("\n"))
	require.Eventually(t, func() bool {
		return len(engine.TemporalInsights().TrendingPatterns) == 1
	}, 5*time.Second, 20*time.Millisecond, "completed line never ingested")
}

func TestWatcherStartOnMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-yet", "feedback.jsonl")
	engine := temporal.NewEngine(store.NewMemoryKV(), temporal.DefaultParams(), nil)

	w := NewWatcher(engine, path, nil)
	require.NoError(t, w.Start(context.Background()))

	appendFile(t, path, feedbackLine(t, time.Now(), temporal.ActionAccept, "go", "func main() {}"))
	require.Eventually(t, func() bool {
		return len(engine.TemporalInsights().TrendingPatterns) > 0
	}, 5*time.Second, 20*time.Millisecond, "file created after Start never ingested")

	w.Stop()
	engine.Close()
}

func TestWatcherRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.jsonl")
	engine := temporal.NewEngine(store.NewMemoryKV(), temporal.DefaultParams(), nil)
	w := NewWatcher(engine, path, nil)
	ctx := context.Background()

	require.NoError(t, w.Start(ctx))
	appendFile(t, path, feedbackLine(t, time.Now(), temporal.ActionAccept, "go", "func a() {}"))
	require.Eventually(t, func() bool {
		return len(engine.TemporalInsights().TrendingPatterns) == 1
	}, 5*time.Second, 20*time.Millisecond, "first run never ingested")
	w.Stop()

	// A stopped watcher starts again and resumes past what it already read.
	require.NoError(t, w.Start(ctx))
	appendFile(t, path, feedbackLine(t, time.Now(), temporal.ActionAccept, "python", "import os"))
	require.Eventually(t, func() bool {
		return len(engine.TemporalInsights().TrendingPatterns) == 2
	}, 5*time.Second, 20*time.Millisecond, "second run never ingested")
	w.Stop()

	engine.Close()
}

func TestReadFeedbackLogSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.jsonl")
	var data []byte
	data = append(data, feedbackLine(t, time.Now(), temporal.ActionAccept, "go", "func a() {}")...)
	data = append(data, []byte("garbage line\n")...)
	data = append(data, []byte("\n")...)
	data = append(data, feedbackLine(t, time.Now(), temporal.ActionReject, "go", "func b() {}")...)
	require.NoError(t, os.WriteFile(path, data, 0644))

	records, err := ReadFeedbackLog(path, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, temporal.ActionAccept, records[0].Action)
	assert.Equal(t, temporal.ActionReject, records[1].Action)
}

func TestReadFeedbackLogMissingFile(t *testing.T) {
	_, err := ReadFeedbackLog(filepath.Join(t.TempDir(), "absent.jsonl"), nil)
	require.Error(t, err)
}
