package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"fundlog/pkg/fundlog"
)

// Refresher runs one portfolio refresh. *fundlog.Core implements it.
type Refresher interface {
	Refresh(ctx context.Context) (fundlog.Snapshot, error)
}

// RefreshJob refreshes the portfolio on schedule.
type RefreshJob struct {
	refresher Refresher
	log       *slog.Logger
}

// NewRefreshJob wraps r as a Job.
func NewRefreshJob(r Refresher, logger *slog.Logger) *RefreshJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshJob{refresher: r, log: logger}
}

func (j *RefreshJob) Name() string { return "portfolio_refresh" }

// Run performs the refresh. A snapshot without any valued holding is
// reported as an error so the failure is visible in the job log.
func (j *RefreshJob) Run(ctx context.Context) error {
	snap, err := j.refresher.Refresh(ctx)
	if err != nil {
		return err
	}
	if err := snap.Err(); err != nil {
		return fmt.Errorf("refresh %s: %w", snap.RunID, err)
	}
	j.log.Info("scheduled refresh done",
		"run_id", snap.RunID,
		"status", snap.Status,
		"total_value", snap.Summary.TotalValue.StringFixed(2),
	)
	return nil
}

// AddRefresh registers r on schedule. An empty schedule registers nothing
// and reports false.
func (s *Scheduler) AddRefresh(schedule string, r Refresher) (bool, error) {
	if schedule == "" {
		s.log.Info("scheduled refresh disabled")
		return false, nil
	}
	if err := s.AddJob(schedule, NewRefreshJob(r, s.log)); err != nil {
		return false, err
	}
	return true, nil
}
