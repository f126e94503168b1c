package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	cronrunner "github.com/alanyoungcy/sportsarb/internal/cron"
	"github.com/alanyoungcy/sportsarb/internal/domain"
	"github.com/alanyoungcy/sportsarb/internal/server"
	"github.com/alanyoungcy/sportsarb/internal/server/handler"
	"github.com/alanyoungcy/sportsarb/internal/server/ws"
)

// ServerMode serves the HTTP API; scans run on demand.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// ScannerMode scans the configured sports on the scanner cron schedule and
// sends notifications. No HTTP server is started.
func (a *App) ScannerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scanner mode",
		slog.String("cron", a.cfg.Scanner.Cron),
		slog.Int("sports", len(a.cfg.SportKeys())),
	)

	g, ctx := errgroup.WithContext(ctx)
	if err := a.startSchedules(ctx, g, deps, false); err != nil {
		return fmt.Errorf("scanner mode: %w", err)
	}
	return g.Wait()
}

// FullMode runs the HTTP API, the scan schedule and, when enabled, the
// archive schedule.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	if err := a.startSchedules(ctx, g, deps, deps.Archiver != nil); err != nil {
		return fmt.Errorf("full mode: %w", err)
	}
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// OneshotMode scans every configured sport once and writes the results to
// stdout as JSON. An aborted batch still writes the scans that completed
// before the abort error is returned.
func (a *App) OneshotMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting oneshot scan")

	results, scanErr := deps.Scanner.ScanAll(ctx, a.cfg.Scanner.MinProfitMargin)
	if results == nil {
		results = []domain.ScanResult{}
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("oneshot: write results: %w", err)
	}
	if scanErr != nil {
		return fmt.Errorf("oneshot: %w", scanErr)
	}
	return nil
}

// startSchedules registers the cron jobs and stops the scheduler when ctx is
// cancelled.
func (a *App) startSchedules(ctx context.Context, g *errgroup.Group, deps *Dependencies, archive bool) error {
	runner := cronrunner.New(ctx, a.logger)

	if _, err := runner.Add("scan", a.cfg.Scanner.Cron, a.scanJob(deps)); err != nil {
		return fmt.Errorf("schedule scan %q: %w", a.cfg.Scanner.Cron, err)
	}
	if archive {
		if _, err := runner.Add("archive", a.cfg.Archive.Cron, a.archiveJob(deps.Archiver)); err != nil {
			return fmt.Errorf("schedule archive %q: %w", a.cfg.Archive.Cron, err)
		}
	}

	runner.Start()
	g.Go(func() error {
		<-ctx.Done()
		runner.Stop()
		return nil
	})
	return nil
}

// scanJob scans all configured sports within the scan timeout.
func (a *App) scanJob(deps *Dependencies) func(context.Context) {
	return func(ctx context.Context) {
		if d := a.cfg.Scanner.ScanTimeout.Duration; d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}

		start := time.Now()
		results, err := deps.Scanner.ScanAll(ctx, a.cfg.Scanner.MinProfitMargin)
		found := 0
		for _, r := range results {
			found += r.OpportunitiesFound
		}

		attrs := []any{
			slog.Int("sports_scanned", len(results)),
			slog.Int("opportunities", found),
			slog.Duration("took", time.Since(start)),
		}
		if err != nil {
			a.logger.WarnContext(ctx, "scheduled scan aborted", append(attrs, slog.String("error", err.Error()))...)
			return
		}
		a.logger.InfoContext(ctx, "scheduled scan finished", attrs...)
	}
}

// archiveJob moves scans older than the retention window to object storage.
func (a *App) archiveJob(archiver domain.Archiver) func(context.Context) {
	return func(ctx context.Context) {
		cutoff := time.Now().UTC().AddDate(0, 0, -a.cfg.Archive.RetentionDays)
		n, err := archiver.ArchiveScans(ctx, cutoff)
		if err != nil {
			a.logger.ErrorContext(ctx, "archive failed",
				slog.Time("cutoff", cutoff),
				slog.Int64("archived", n),
				slog.String("error", err.Error()),
			)
			return
		}
		a.logger.InfoContext(ctx, "archive finished",
			slog.Time("cutoff", cutoff),
			slog.Int64("archived", n),
		)
	}
}

// startHTTPServer adds the API server and WebSocket hub to g. The server is
// shut down gracefully when ctx is cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	hub := ws.NewHub(deps.Bus, a.logger, ws.Config{
		Mode:           a.cfg.Mode,
		StartedAt:      a.startedAt,
		AllowedOrigins: a.cfg.Server.CORSOrigins,
	})
	g.Go(func() error {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("ws hub: %w", err)
		}
		return nil
	})

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(deps.Checks, a.logger),
		Status: handler.NewStatusHandler(handler.StatusInfo{
			Mode:            a.cfg.Mode,
			ScanCron:        a.cfg.Scanner.Cron,
			Sports:          a.cfg.SportKeys(),
			MinProfitMargin: a.cfg.Scanner.MinProfitMargin,
			StartedAt:       a.startedAt,
		}, deps.Odds),
		Sports: handler.NewSportsHandler(deps.Scanner, a.logger),
		Arb:    handler.NewArbHandler(deps.Scanner, a.cfg.Server.DefaultStake, a.logger),
		Usage:  handler.NewUsageHandler(deps.Usage, a.logger),
	}
	if deps.ScanStore != nil {
		handlers.History = handler.NewHistoryHandler(deps.History, a.logger)
	}
	if deps.AuditStore != nil {
		handlers.Audit = handler.NewAuditHandler(deps.AuditStore, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
