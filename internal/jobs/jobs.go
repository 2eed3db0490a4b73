// Package jobs runs the periodic maintenance tasks.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/IICPAS/IICPAS-sub003/internal/config"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

const jobTimeout = 4 * time.Minute

type ratingReconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

type idempotencyExpirer interface {
	ExpireBefore(ctx context.Context, t time.Time) (int64, error)
}

type Scheduler struct {
	log  logger.Log
	cron *cron.Cron
}

func NewScheduler(log logger.Log, cfg config.Jobs, ratings ratingReconciler, keys idempotencyExpirer) (*Scheduler, error) {
	s := &Scheduler{
		log:  log,
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}

	err := s.add("ratings.reconcile", cfg.RatingsSchedule, func(ctx context.Context) error {
		n, err := ratings.ReconcileAll(ctx)
		if err == nil {
			s.log.Info("rating aggregates reconciled", "courses", n)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = s.add("idempotency.expire", cfg.IdempotencyEvery, func(ctx context.Context) error {
		n, err := keys.ExpireBefore(ctx, time.Now().UTC().Add(-cfg.IdempotencyTTL))
		if err == nil && n > 0 {
			s.log.Info("idempotency keys expired", "deleted", n)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) add(name, spec string, run func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := run(ctx); err != nil {
			s.log.ErrorErr("job failed", err, "job", name)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("jobs still running at shutdown")
	}
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
