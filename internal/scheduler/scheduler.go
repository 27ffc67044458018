// Package scheduler drives periodic loader passes in-process.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/ingest"
	"github.com/netra-news/backend/internal/metrics"
)

// runner is the unit of work a scheduler drives; *ingest.Loader satisfies it.
type runner interface {
	LoadAll(ctx context.Context) (ingest.Summary, error)
}

// Scheduler runs the loader immediately and then on a fixed interval.
// Ticks are coarse: every tickPeriod it checks whether the interval has
// elapsed since the last run.
type Scheduler struct {
	loader     runner
	logger     *zap.Logger
	interval   time.Duration
	runTimeout time.Duration
	tickPeriod time.Duration
	now        func() time.Time
}

// New constructs a scheduler with the given run interval and per-run
// timeout.
func New(loader runner, logger *zap.Logger, interval, runTimeout time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if runTimeout <= 0 {
		runTimeout = 10 * time.Minute
	}
	return &Scheduler{
		loader:     loader,
		logger:     logger,
		interval:   interval,
		runTimeout: runTimeout,
		tickPeriod: 10 * time.Second,
		now:        time.Now,
	}
}

// Run blocks until ctx is canceled. The first pass happens immediately;
// a failed or timed-out pass is logged and the scheduler waits for the
// next interval, with no backoff or immediate retry.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started",
		zap.Duration("interval", s.interval),
		zap.Duration("run_timeout", s.runTimeout))

	s.RunOnce(ctx)
	lastRun := s.now()

	ticker := time.NewTicker(s.tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if s.now().Sub(lastRun) < s.interval {
				continue
			}
			s.RunOnce(ctx)
			lastRun = s.now()
		}
	}
}

// RunOnce executes a single loader pass under the run timeout.
func (s *Scheduler) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	start := s.now()
	summary, err := s.loader.LoadAll(runCtx)
	if err != nil {
		metrics.ObserveSchedulerRun("error")
		s.logger.Error("loader pass failed",
			zap.Error(err),
			zap.Duration("elapsed", s.now().Sub(start)))
		return
	}
	metrics.ObserveSchedulerRun("ok")
	s.logger.Info("loader pass finished",
		zap.Int("inserted", summary.Inserted),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("elapsed", s.now().Sub(start)))
}
