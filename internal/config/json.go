package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lborres/facturo/internal/flagx"
)

// Duration decodes either a Go duration string ("24h") or an integer
// number of nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// JSONConfig mirrors Config for file decoding. Absent keys leave the
// current value untouched.
type JSONConfig struct {
	HTTPAddr               string   `json:"http_addr"`
	DatabaseDSN            string   `json:"database_dsn"`
	Storage                string   `json:"storage"`
	Secret                 string   `json:"secret"`
	SessionMaxAge          Duration `json:"session_max_age"`
	SessionCleanupInterval Duration `json:"session_cleanup_interval"`
	CacheTTL               Duration `json:"cache_ttl"`
	CacheMaxSize           int      `json:"cache_max_size"`
	ShutdownTimeout        Duration `json:"shutdown_timeout"`
	LogLevel               string   `json:"log_level"`
	SecureCookies          *bool    `json:"secure_cookies"`
	BodyLimit              int      `json:"body_limit"`
}

// parseJSON overlays the file named by -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var c JSONConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.HTTPAddr, c.HTTPAddr)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.Storage, c.Storage)
	setString(&cfg.Secret, c.Secret)
	setDuration(&cfg.SessionMaxAge, c.SessionMaxAge.Duration)
	setDuration(&cfg.SessionCleanupInterval, c.SessionCleanupInterval.Duration)
	setDuration(&cfg.CacheTTL, c.CacheTTL.Duration)
	if c.CacheMaxSize != 0 {
		cfg.CacheMaxSize = c.CacheMaxSize
	}
	setDuration(&cfg.ShutdownTimeout, c.ShutdownTimeout.Duration)
	setString(&cfg.LogLevel, c.LogLevel)
	if c.SecureCookies != nil {
		cfg.SecureCookies = *c.SecureCookies
	}
	if c.BodyLimit != 0 {
		cfg.BodyLimit = c.BodyLimit
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
