// Package config defines the top-level configuration for the arbitrage
// scanner and provides validation helpers.
package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SPORTSARB_* environment variables.
type Config struct {
	OddsAPI    OddsAPIConfig          `toml:"odds_api"`
	Scanner    ScannerConfig          `toml:"scanner"`
	Sports     map[string]SportConfig `toml:"sports"`
	Bookmakers map[string]string      `toml:"bookmakers"`
	Postgres   PostgresConfig         `toml:"postgres"`
	Redis      RedisConfig            `toml:"redis"`
	S3         S3Config               `toml:"s3"`
	Archive    ArchiveConfig          `toml:"archive"`
	Server     ServerConfig           `toml:"server"`
	Notify     NotifyConfig           `toml:"notify"`
	Mode       string                 `toml:"mode"`
	LogLevel   string                 `toml:"log_level"`
}

// OddsAPIConfig holds The Odds API credentials and request shape.
type OddsAPIConfig struct {
	APIKey  string   `toml:"api_key"`
	BaseURL string   `toml:"base_url"`
	Regions []string `toml:"regions"`
	Markets []string `toml:"markets"`
	// Bookmakers narrows odds requests; empty means every bookmaker in the
	// requested regions.
	Bookmakers []string `toml:"bookmakers"`
	// RateLimit caps provider calls per RateWindow across all instances
	// sharing Redis. Zero disables the limiter.
	RateLimit  int      `toml:"rate_limit"`
	RateWindow duration `toml:"rate_window"`
	CacheTTL   duration `toml:"cache_ttl"`
}

// ScannerConfig holds detection and scheduling parameters.
type ScannerConfig struct {
	MinProfitMargin     float64  `toml:"min_profit_margin"`
	Concurrency         int      `toml:"concurrency"`
	Cron                string   `toml:"cron"`
	Sports              []string `toml:"sports"`
	QuotaAlertThreshold int      `toml:"quota_alert_threshold"`
	LockTTL             duration `toml:"lock_ttl"`
	ScanTimeout         duration `toml:"scan_timeout"`
}

// SportConfig describes a supported sport.
type SportConfig struct {
	Title string `toml:"title"`
	// Outcomes is the number of h2h outcomes. Zero selects the default
	// (three for soccer, two otherwise).
	Outcomes int `toml:"outcomes"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ArchiveConfig controls moving old scan history to S3.
type ArchiveConfig struct {
	Enabled       bool   `toml:"enabled"`
	RetentionDays int    `toml:"retention_days"`
	Cron          string `toml:"cron"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIKey, when set, is required on every /api route except health.
	APIKey     string   `toml:"api_key"`
	RateLimit  int      `toml:"rate_limit"`
	RateWindow duration `toml:"rate_window"`
	// DefaultStake is used by /api/calculate when no stake is given.
	DefaultStake float64 `toml:"default_stake"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		OddsAPI: OddsAPIConfig{
			BaseURL:    "https://api.the-odds-api.com/v4",
			Regions:    []string{"us", "uk", "eu", "au"},
			Markets:    []string{"h2h"},
			RateLimit:  30,
			RateWindow: duration{time.Minute},
			CacheTTL:   duration{5 * time.Minute},
		},
		Scanner: ScannerConfig{
			MinProfitMargin:     0.001,
			Concurrency:         8,
			Cron:                "0 */15 * * * *",
			QuotaAlertThreshold: 50,
			LockTTL:             duration{2 * time.Minute},
			ScanTimeout:         duration{90 * time.Second},
		},
		Sports:     defaultSports(),
		Bookmakers: defaultBookmakers(),
		Postgres: PostgresConfig{
			Enabled:       true,
			Host:          "localhost",
			Port:          5432,
			Database:      "sportsarb",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  1,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    true,
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "sportsarb-archive",
			ForcePathStyle: true,
		},
		Archive: ArchiveConfig{
			Enabled:       false,
			RetentionDays: 30,
			Cron:          "0 0 4 * * *",
		},
		Server: ServerConfig{
			Port:         8000,
			CORSOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:    120,
			RateWindow:   duration{time.Minute},
			DefaultStake: 100,
		},
		Notify: NotifyConfig{
			Events: []string{"arb_detected", "quota_low", "scan_failed"},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

func defaultSports() map[string]SportConfig {
	return map[string]SportConfig{
		"americanfootball_nfl":      {Title: "NFL"},
		"americanfootball_ncaaf":    {Title: "NCAAF"},
		"basketball_nba":            {Title: "NBA"},
		"basketball_ncaab":          {Title: "NCAAB"},
		"baseball_mlb":              {Title: "MLB"},
		"icehockey_nhl":             {Title: "NHL"},
		"soccer_epl":                {Title: "EPL (England)", Outcomes: 3},
		"soccer_spain_la_liga":      {Title: "La Liga (Spain)", Outcomes: 3},
		"soccer_germany_bundesliga": {Title: "Bundesliga (Germany)", Outcomes: 3},
		"soccer_italy_serie_a":      {Title: "Serie A (Italy)", Outcomes: 3},
		"soccer_france_ligue_one":   {Title: "Ligue 1 (France)", Outcomes: 3},
		"soccer_usa_mls":            {Title: "MLS", Outcomes: 3},
		"tennis_atp_french_open":    {Title: "ATP French Open"},
		"tennis_wta_french_open":    {Title: "WTA French Open"},
		"mma_mixed_martial_arts":    {Title: "MMA/UFC"},
		"boxing_boxing":             {Title: "Boxing"},
	}
}

func defaultBookmakers() map[string]string {
	return map[string]string{
		"draftkings":  "DraftKings",
		"fanduel":     "FanDuel",
		"betmgm":      "BetMGM",
		"caesars":     "Caesars",
		"pointsbetus": "PointsBet",
		"betrivers":   "BetRivers",
		"unibet_us":   "Unibet",
		"wynnbet":     "WynnBET",
		"barstool":    "Barstool",
		"bet365":      "Bet365",
		"betfair":     "Betfair",
		"williamhill": "William Hill",
		"pinnacle":    "Pinnacle",
		"bovada":      "Bovada",
		"betonlineag": "BetOnline",
	}
}

// SportKeys returns the sports the scheduled scanner covers: Scanner.Sports
// when set, otherwise every configured sport, sorted.
func (c *Config) SportKeys() []string {
	if len(c.Scanner.Sports) > 0 {
		out := make([]string, len(c.Scanner.Sports))
		copy(out, c.Scanner.Sports)
		return out
	}
	keys := make([]string, 0, len(c.Sports))
	for k := range c.Sports {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server":  true,
	"scanner": true,
	"full":    true,
	"oneshot": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	mode := strings.ToLower(c.Mode)
	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, scanner, full, oneshot)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Odds API
	if c.OddsAPI.APIKey == "" && mode != "server" {
		errs = append(errs, "odds_api: api_key is required for mode "+c.Mode)
	}
	if _, err := url.ParseRequestURI(c.OddsAPI.BaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("odds_api: invalid base_url %q", c.OddsAPI.BaseURL))
	}
	if len(c.OddsAPI.Regions) == 0 {
		errs = append(errs, "odds_api: regions must not be empty")
	}
	if len(c.OddsAPI.Markets) == 0 {
		errs = append(errs, "odds_api: markets must not be empty")
	}
	if c.OddsAPI.RateLimit < 0 {
		errs = append(errs, "odds_api: rate_limit must be >= 0")
	}
	if c.OddsAPI.RateLimit > 0 && c.OddsAPI.RateWindow.Duration <= 0 {
		errs = append(errs, "odds_api: rate_window must be > 0 when rate_limit is set")
	}

	// Scanner
	if c.Scanner.MinProfitMargin < 0 || c.Scanner.MinProfitMargin >= 1 {
		errs = append(errs, fmt.Sprintf("scanner: min_profit_margin must be in [0, 1), got %v", c.Scanner.MinProfitMargin))
	}
	if c.Scanner.Concurrency < 1 {
		errs = append(errs, "scanner: concurrency must be >= 1")
	}
	if mode == "scanner" || mode == "full" {
		if _, err := cronParser.Parse(c.Scanner.Cron); err != nil {
			errs = append(errs, fmt.Sprintf("scanner: invalid cron %q: %v", c.Scanner.Cron, err))
		}
	}
	if c.Scanner.LockTTL.Duration <= 0 {
		errs = append(errs, "scanner: lock_ttl must be > 0")
	}
	for _, key := range c.Scanner.Sports {
		if _, ok := c.Sports[key]; !ok {
			errs = append(errs, fmt.Sprintf("scanner: sport %q is not configured under [sports]", key))
		}
	}

	// Sports
	if len(c.Sports) == 0 {
		errs = append(errs, "sports: at least one sport must be configured")
	}
	for key, s := range c.Sports {
		if s.Outcomes != 0 && s.Outcomes < 2 {
			errs = append(errs, fmt.Sprintf("sports: %s outcomes must be 0 (default) or >= 2, got %d", key, s.Outcomes))
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 || c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must be between 0 and pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Archive
	if c.Archive.Enabled {
		if !c.Postgres.Enabled {
			errs = append(errs, "archive: requires postgres.enabled")
		}
		if c.Archive.RetentionDays < 1 {
			errs = append(errs, "archive: retention_days must be >= 1")
		}
		if _, err := cronParser.Parse(c.Archive.Cron); err != nil {
			errs = append(errs, fmt.Sprintf("archive: invalid cron %q: %v", c.Archive.Cron, err))
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archive is enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when archive is enabled")
		}
	}

	// Server
	if mode == "server" || mode == "full" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.DefaultStake <= 0 {
			errs = append(errs, "server: default_stake must be > 0")
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
