package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/kimseungO/news-sum/internal/ports"
)

// Job is one scheduled batch, e.g. load followed by summarize.
type Job func(ctx context.Context, trigger time.Time) error

// Scheduler wires the cron driver with a batch job.
type Scheduler struct {
	driver ports.Scheduler
	job    Job
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, job Job, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, job: job, logger: logger}
}

// Start registers the job with the provided scheduler. Job errors are
// logged; the next trigger still fires.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.job == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.logger.Info("scheduled run started", "trigger", trigger)
		if err := s.job(ctx, trigger); err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled run finished", "trigger", trigger)
	})
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
