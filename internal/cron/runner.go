// Package cronrunner runs scheduled jobs with second-resolution cron specs.
package cronrunner

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Runner schedules jobs on a robfig/cron scheduler. Every job receives the
// base context so a shutdown cancels in-flight work.
type Runner struct {
	cron    *cron.Cron
	logger  *slog.Logger
	baseCtx context.Context
}

// New creates a Runner. Specs use six fields (seconds first) or descriptors
// such as "@every 5m".
func New(baseCtx context.Context, logger *slog.Logger) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "cron"))
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add schedules job under spec. Overlapping runs of the same job are skipped.
func (r *Runner) Add(name, spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		if r.baseCtx.Err() != nil {
			return
		}
		r.logger.DebugContext(r.baseCtx, "cron job start", slog.String("job", name))
		job(r.baseCtx)
	})
}

// Start runs the scheduler in the background.
func (r *Runner) Start() {
	r.logger.Info("cron started", slog.Int("jobs", len(r.cron.Entries())))
	r.cron.Start()
}

// Stop stops scheduling and waits for running jobs to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("cron stopped")
}
