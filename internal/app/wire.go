package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/sportsarb/internal/arbitrage"
	s3blob "github.com/alanyoungcy/sportsarb/internal/blob/s3"
	"github.com/alanyoungcy/sportsarb/internal/cache/redis"
	"github.com/alanyoungcy/sportsarb/internal/config"
	"github.com/alanyoungcy/sportsarb/internal/domain"
	"github.com/alanyoungcy/sportsarb/internal/notify"
	"github.com/alanyoungcy/sportsarb/internal/platform/oddsapi"
	"github.com/alanyoungcy/sportsarb/internal/server/handler"
	"github.com/alanyoungcy/sportsarb/internal/service"
	"github.com/alanyoungcy/sportsarb/internal/store/postgres"
)

// Dependencies bundles everything the application modes need. It is built by
// Wire and torn down by the returned cleanup function. Store and cache fields
// are nil when the backing service is disabled.
type Dependencies struct {
	Odds *oddsapi.Client

	// Stores
	ScanStore  domain.ScanStore
	UsageStore domain.UsageStore
	AuditStore domain.AuditStore

	// Caches and coordination. Locks and Bus fall back to in-process
	// implementations without Redis.
	OddsCache   domain.OddsCache
	RateLimiter domain.RateLimiter
	Locks       domain.LockManager
	Bus         domain.SignalBus

	Archiver domain.Archiver
	Notifier *notify.Notifier

	// Health probes keyed by dependency name.
	Checks map[string]handler.Check

	Scanner *service.ScanService
	Usage   *service.UsageService
	History *service.HistoryService
}

// needsS3 reports whether the mode archives scan history.
func needsS3(cfg *config.Config) bool {
	return cfg.Archive.Enabled && cfg.Mode == "full"
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Odds:   oddsapi.NewClient(cfg.OddsAPI.BaseURL, cfg.OddsAPI.APIKey),
		Checks: make(map[string]handler.Check),
	}

	// --- PostgreSQL ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.ScanStore = postgres.NewScanStore(pool)
		deps.UsageStore = postgres.NewUsageStore(pool)
		deps.AuditStore = postgres.NewAuditStore(pool)
		deps.Checks["postgres"] = pgClient.Ping
	}

	// --- Redis ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.OddsCache = redis.NewOddsCache(redisClient, cfg.OddsAPI.CacheTTL.Duration)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.Locks = redis.NewLockManager(redisClient)
		deps.Bus = redis.NewSignalBus(redisClient)
		deps.Checks["redis"] = redisClient.Ping
	} else {
		deps.Locks = service.NewLocalLocks()
		deps.Bus = service.NewLocalBus()
	}

	// --- S3 archive (needs Postgres as the source) ---
	if needsS3(cfg) {
		if deps.ScanStore == nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: archive requires postgres")
		}
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), deps.ScanStore, deps.AuditStore)
		deps.Checks["s3"] = s3Client.Health
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Services ---
	deps.Scanner = service.NewScanService(scanDeps(cfg, deps), scanConfig(cfg), logger)
	deps.Usage = service.NewUsageService(deps.UsageStore, deps.Odds)
	deps.History = service.NewHistoryService(deps.ScanStore)

	return deps, cleanup, nil
}

// shapes registers the configured outcome count of every sport.
func shapes(cfg *config.Config) *arbitrage.Shapes {
	s := arbitrage.NewShapes()
	for key, sc := range cfg.Sports {
		s.Register(key, sc.Outcomes)
	}
	return s
}

func scanDeps(cfg *config.Config, deps *Dependencies) service.ScanDeps {
	return service.ScanDeps{
		Provider: deps.Odds,
		Shapes:   shapes(cfg),
		Scans:    deps.ScanStore,
		Usage:    deps.UsageStore,
		Cache:    deps.OddsCache,
		Locks:    deps.Locks,
		Limiter:  deps.RateLimiter,
		Bus:      deps.Bus,
		Notifier: deps.Notifier,
	}
}

func scanConfig(cfg *config.Config) service.ScanConfig {
	titles := make(map[string]string, len(cfg.Sports))
	for key, sc := range cfg.Sports {
		titles[key] = sc.Title
	}
	return service.ScanConfig{
		Regions:             cfg.OddsAPI.Regions,
		Markets:             cfg.OddsAPI.Markets,
		Bookmakers:          cfg.OddsAPI.Bookmakers,
		MinProfitMargin:     cfg.Scanner.MinProfitMargin,
		Concurrency:         cfg.Scanner.Concurrency,
		SportTitles:         titles,
		ScanSports:          cfg.SportKeys(),
		BookmakerTitles:     cfg.Bookmakers,
		QuotaAlertThreshold: cfg.Scanner.QuotaAlertThreshold,
		LockTTL:             cfg.Scanner.LockTTL.Duration,
		RateLimit:           cfg.OddsAPI.RateLimit,
		RateWindow:          cfg.OddsAPI.RateWindow.Duration,
	}
}
