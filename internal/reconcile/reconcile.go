// Package reconcile periodically repairs the cached board and task counters.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"taskboard/internal/storage"
)

// CounterStore recomputes every cached counter.
type CounterStore interface {
	ReconcileCounters(ctx context.Context) (storage.ReconcileStats, error)
}

// Scheduler runs counter reconciliation on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	store   CounterStore
	logger  *slog.Logger
	timeout time.Duration
}

// New registers the reconciliation job with spec, e.g. "@every 1h" or
// "0 3 * * *".
func New(store CounterStore, spec string, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		store:   store,
		logger:  logger,
		timeout: 5 * time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, func() { _, _ = s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	return s, nil
}

// RunOnce reconciles immediately.
func (s *Scheduler) RunOnce(ctx context.Context) (storage.ReconcileStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	stats, err := s.store.ReconcileCounters(ctx)
	if err != nil {
		s.logger.Error("counter reconciliation failed", slog.String("error", err.Error()))
		return stats, err
	}
	s.logger.Debug("counter reconciliation done",
		slog.Int64("boards", stats.Boards),
		slog.Int64("tasks", stats.Tasks),
		slog.Duration("took", time.Since(started)))
	return stats, nil
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
