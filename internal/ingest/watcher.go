// Package ingest bridges the editor surface to the analysis engine. The
// editor extension appends feedback events as JSON lines to a log file;
// the watcher tails that file and feeds complete batches into the engine.
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"codewhisperer/internal/temporal"
)

// Watcher tails a feedback JSONL file. It only advances past complete
// lines, so a half-written append is picked up on the next event.
type Watcher struct {
	engine *temporal.Engine
	log    *zap.Logger
	path   string

	mu      sync.Mutex
	running bool
	offset  int64
	fsw     *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the feedback log at path. The file does
// not have to exist yet.
func NewWatcher(engine *temporal.Engine, path string, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		engine: engine,
		log:    log,
		path:   path,
	}
}

// Start drains any feedback already in the file, then begins tailing.
// Non-blocking; starting a running watcher is a no-op. A stopped watcher
// can be started again and resumes from its previous offset.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create feedback dir: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory, not the file: editors often replace files on
	// save, which drops a file-level watch.
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		fsw.Close()
		return nil
	}
	w.running = true
	w.fsw = fsw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	w.drain()
	go w.run(ctx, fsw, stopCh, doneCh)
	w.log.Info("feedback watcher started", zap.String("path", w.path))
	return nil
}

// Stop cancels tailing and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	fsw, stopCh, doneCh := w.fsw, w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)
	<-doneCh
	fsw.Close()
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.drain()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("feedback watcher error", zap.Error(err))
		}
	}
}

// drain reads every complete line past the current offset and hands the
// batch to the engine. Undecodable lines are skipped with a warning;
// ingestion never fails on bad input.
func (w *Watcher) drain() {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.Open(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.log.Warn("feedback log unreadable", zap.Error(err))
		}
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		w.log.Warn("feedback log stat failed", zap.Error(err))
		return
	}
	if info.Size() < w.offset {
		// Truncated or replaced; start over.
		w.offset = 0
	}
	if _, err := f.Seek(w.offset, io.SeekStart); err != nil {
		w.log.Warn("feedback log seek failed", zap.Error(err))
		return
	}

	reader := bufio.NewReader(f)
	var batch []temporal.FeedbackRecord
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// Partial trailing line: leave the offset before it.
			break
		}
		w.offset += int64(len(line))
		rec, ok := decodeLine(line, w.log)
		if !ok {
			continue
		}
		batch = append(batch, rec)
	}
	if len(batch) == 0 {
		return
	}

	for _, rec := range batch {
		w.engine.RecordFeedback(rec)
	}
	changes := w.engine.AnalyzeHabitEvolution(batch)
	w.log.Debug("feedback batch ingested",
		zap.Int("records", len(batch)),
		zap.Int("changes", len(changes)))
}

func decodeLine(line string, log *zap.Logger) (temporal.FeedbackRecord, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return temporal.FeedbackRecord{}, false
	}
	var rec temporal.FeedbackRecord
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		log.Warn("skipping malformed feedback line", zap.Error(err))
		return temporal.FeedbackRecord{}, false
	}
	return rec, true
}

// ReadFeedbackLog decodes a whole feedback JSONL file. Used by one-shot
// commands; malformed lines are skipped.
func ReadFeedbackLog(path string, log *zap.Logger) ([]temporal.FeedbackRecord, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feedback log: %w", err)
	}
	defer f.Close()

	var records []temporal.FeedbackRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if rec, ok := decodeLine(scanner.Text(), log); ok {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feedback log: %w", err)
	}
	return records, nil
}
