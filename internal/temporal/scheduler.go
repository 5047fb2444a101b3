package temporal

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultInitialDelay is the one-off warmup before the first pass.
	DefaultInitialDelay = 60 * time.Second
	// DefaultInterval is the steady-state recomputation period.
	DefaultInterval = 24 * time.Hour
)

// Scheduler drives periodic recomputation: one pass after initialDelay,
// then one every interval until stopped. Owned by the process lifecycle;
// Stop (or context cancellation) always cancels the pending timer so no
// pass runs against torn-down state.
type Scheduler struct {
	engine       *Engine
	log          *zap.Logger
	initialDelay time.Duration
	interval     time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler returns a stopped scheduler for the engine.
func NewScheduler(engine *Engine, initialDelay, interval time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		engine:       engine,
		log:          log,
		initialDelay: initialDelay,
		interval:     interval,
	}
}

// Start launches the recomputation loop. Non-blocking; starting a running
// scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run(ctx, s.stopCh, s.doneCh)
	s.log.Debug("scheduler started",
		zap.Duration("initial_delay", s.initialDelay),
		zap.Duration("interval", s.interval))
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (s *Scheduler) run(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(s.initialDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-stopCh:
		return
	case <-timer.C:
	}
	s.recompute(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.recompute(ctx)
		}
	}
}

func (s *Scheduler) recompute(ctx context.Context) {
	start := time.Now()
	s.engine.Recompute(ctx)
	s.log.Debug("recomputation pass complete", zap.Duration("elapsed", time.Since(start)))
}
