package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work.
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler runs jobs on standard five-field cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// Options configures New.
type Options struct {
	Logger   *slog.Logger
	Location *time.Location
	// JobTimeout bounds a single run. Zero means no bound.
	JobTimeout time.Duration
}

// New creates a scheduler. Overlapping runs of the same job are skipped and
// panics are recovered and logged.
func New(opts Options) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	cronLog := cronLogger{log: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		log:     logger,
		ctx:     ctx,
		cancel:  cancel,
		timeout: opts.JobTimeout,
	}
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop cancels running jobs and waits for them until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out", "err", ctx.Err())
	}
}

// AddJob registers job on a cron schedule such as "0 19 * * 1-5".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.RunNow(job)
	})
	if err != nil {
		return err
	}
	s.log.Info("job registered", "schedule", schedule, "job", job.Name())
	return nil
}

// RunNow executes job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	started := time.Now()
	s.log.Debug("running job", "job", job.Name())
	if err := job.Run(ctx); err != nil {
		s.log.Error("job failed", "job", job.Name(), "err", err, "duration_ms", time.Since(started).Milliseconds())
		return err
	}
	s.log.Debug("job completed", "job", job.Name(), "duration_ms", time.Since(started).Milliseconds())
	return nil
}

// Next returns the next activation time of every registered job.
func (s *Scheduler) Next() []time.Time {
	entries := s.cron.Entries()
	out := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Next)
	}
	return out
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{"err", err}, keysAndValues...)...)
}
