package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SPORTSARB_* environment variable overrides, and
// returns the final Config. A missing file is not an error so the scanner can
// run from the environment alone. The caller should invoke Validate.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides overwrites Config fields from well-known SPORTSARB_*
// variables that are set and non-empty. ODDS_API_KEY is honoured as well.
func applyEnvOverrides(cfg *Config) {
	// ── Odds API ──
	setStr(&cfg.OddsAPI.APIKey, "ODDS_API_KEY")
	setStr(&cfg.OddsAPI.APIKey, "SPORTSARB_ODDS_API_KEY")
	setStr(&cfg.OddsAPI.BaseURL, "SPORTSARB_ODDS_API_BASE_URL")
	setStringSlice(&cfg.OddsAPI.Regions, "SPORTSARB_ODDS_API_REGIONS")
	setStringSlice(&cfg.OddsAPI.Markets, "SPORTSARB_ODDS_API_MARKETS")
	setStringSlice(&cfg.OddsAPI.Bookmakers, "SPORTSARB_ODDS_API_BOOKMAKERS")
	setInt(&cfg.OddsAPI.RateLimit, "SPORTSARB_ODDS_API_RATE_LIMIT")
	setDuration(&cfg.OddsAPI.RateWindow, "SPORTSARB_ODDS_API_RATE_WINDOW")
	setDuration(&cfg.OddsAPI.CacheTTL, "SPORTSARB_ODDS_API_CACHE_TTL")

	// ── Scanner ──
	setFloat64(&cfg.Scanner.MinProfitMargin, "SPORTSARB_SCANNER_MIN_PROFIT_MARGIN")
	setInt(&cfg.Scanner.Concurrency, "SPORTSARB_SCANNER_CONCURRENCY")
	setStr(&cfg.Scanner.Cron, "SPORTSARB_SCANNER_CRON")
	setStringSlice(&cfg.Scanner.Sports, "SPORTSARB_SCANNER_SPORTS")
	setInt(&cfg.Scanner.QuotaAlertThreshold, "SPORTSARB_SCANNER_QUOTA_ALERT_THRESHOLD")
	setDuration(&cfg.Scanner.LockTTL, "SPORTSARB_SCANNER_LOCK_TTL")
	setDuration(&cfg.Scanner.ScanTimeout, "SPORTSARB_SCANNER_SCAN_TIMEOUT")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "SPORTSARB_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "SPORTSARB_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "SPORTSARB_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SPORTSARB_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SPORTSARB_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SPORTSARB_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SPORTSARB_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SPORTSARB_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SPORTSARB_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SPORTSARB_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SPORTSARB_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "SPORTSARB_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SPORTSARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SPORTSARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SPORTSARB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SPORTSARB_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SPORTSARB_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SPORTSARB_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "SPORTSARB_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SPORTSARB_S3_REGION")
	setStr(&cfg.S3.Bucket, "SPORTSARB_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SPORTSARB_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SPORTSARB_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SPORTSARB_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SPORTSARB_S3_FORCE_PATH_STYLE")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "SPORTSARB_ARCHIVE_ENABLED")
	setInt(&cfg.Archive.RetentionDays, "SPORTSARB_ARCHIVE_RETENTION_DAYS")
	setStr(&cfg.Archive.Cron, "SPORTSARB_ARCHIVE_CRON")

	// ── Server ──
	setInt(&cfg.Server.Port, "SPORTSARB_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SPORTSARB_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "SPORTSARB_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "SPORTSARB_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "SPORTSARB_SERVER_RATE_WINDOW")
	setFloat64(&cfg.Server.DefaultStake, "SPORTSARB_SERVER_DEFAULT_STAKE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SPORTSARB_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SPORTSARB_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SPORTSARB_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SPORTSARB_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SPORTSARB_MODE")
	setStr(&cfg.LogLevel, "SPORTSARB_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var cleaned []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) > 0 {
		*dst = cleaned
	}
}
