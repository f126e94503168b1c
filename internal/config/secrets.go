package config

import "maps"

// RedactedConfig returns a copy of cfg with secrets replaced by "***", safe
// for logging. Slices and maps are copied so the result can be modified
// without touching cfg.
func RedactedConfig(cfg *Config) Config {
	out := *cfg

	redact(&out.OddsAPI.APIKey)
	redact(&out.Postgres.DSN)
	redact(&out.Postgres.Password)
	redact(&out.Redis.Password)
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)
	redact(&out.Server.APIKey)
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	out.OddsAPI.Regions = cloneStrings(cfg.OddsAPI.Regions)
	out.OddsAPI.Markets = cloneStrings(cfg.OddsAPI.Markets)
	out.OddsAPI.Bookmakers = cloneStrings(cfg.OddsAPI.Bookmakers)
	out.Scanner.Sports = cloneStrings(cfg.Scanner.Sports)
	out.Server.CORSOrigins = cloneStrings(cfg.Server.CORSOrigins)
	out.Notify.Events = cloneStrings(cfg.Notify.Events)
	out.Sports = maps.Clone(cfg.Sports)
	out.Bookmakers = maps.Clone(cfg.Bookmakers)

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
