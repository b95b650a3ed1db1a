package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
	"github.com/riskibarqy/matchday-predictor/internal/usecase"
)

// CycleRunner runs one prediction cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context, input usecase.RunCycleInput) (usecase.CycleResult, error)
}

// Scheduler triggers broadcast cycles on a fixed interval. Cycles never overlap.
type Scheduler struct {
	runner     CycleRunner
	interval   time.Duration
	runOnStart bool
	logger     *logging.Logger
	running    atomic.Bool
}

func NewScheduler(runner CycleRunner, interval time.Duration, runOnStart bool, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		runner:     runner,
		interval:   interval,
		runOnStart: runOnStart,
		logger:     logger.Named("scheduler"),
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", "interval", s.interval, "run_on_start", s.runOnStart)
	if s.runOnStart {
		s.Tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one cycle unless another is still in flight. It reports whether a cycle ran.
func (s *Scheduler) Tick(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.WarnContext(ctx, "previous cycle still running, skipping trigger")
		return false
	}
	defer s.running.Store(false)

	if ctx.Err() != nil {
		return false
	}

	cycleCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	started := time.Now()
	result, err := s.runner.RunCycle(cycleCtx, usecase.RunCycleInput{Broadcast: true})
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled cycle failed", "error", err, "duration", time.Since(started))
		return true
	}
	s.logger.InfoContext(ctx, "scheduled cycle finished",
		"cycle_id", result.CycleID,
		"date", result.Date,
		"found", result.Found,
		"delivered", result.Delivered,
		"duration", time.Since(started),
	)
	return true
}
