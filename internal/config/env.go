package config

import (
	"fmt"
	"strconv"
	"time"
)

const envPrefix = "FACTURO_"

// parseEnv overlays non-empty FACTURO_* variables.
func parseEnv(cfg *Config, getenv func(string) string) error {
	get := func(key string) string { return getenv(envPrefix + key) }

	setString(&cfg.HTTPAddr, get("HTTP_ADDR"))
	setString(&cfg.DatabaseDSN, get("DATABASE_DSN"))
	setString(&cfg.Storage, get("STORAGE"))
	setString(&cfg.Secret, get("SECRET"))
	setString(&cfg.LogLevel, get("LOG_LEVEL"))

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SESSION_MAX_AGE", &cfg.SessionMaxAge},
		{"SESSION_CLEANUP_INTERVAL", &cfg.SessionCleanupInterval},
		{"CACHE_TTL", &cfg.CacheTTL},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		v := get(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", envPrefix, d.key, err)
		}
		*d.dst = parsed
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"CACHE_MAX_SIZE", &cfg.CacheMaxSize},
		{"BODY_LIMIT", &cfg.BodyLimit},
	}
	for _, i := range ints {
		v := get(i.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s value %q: %w", envPrefix, i.key, v, err)
		}
		*i.dst = n
	}

	if v := get("SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sSECURE_COOKIES value %q: %w", envPrefix, v, err)
		}
		cfg.SecureCookies = b
	}
	return nil
}
