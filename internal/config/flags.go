package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/lborres/facturo/internal/flagx"
)

// parseFlags applies the server's short flags:
//
//	-a string     HTTP listen address (e.g. ":8080")
//	-d string     PostgreSQL DSN
//	-m string     storage backend, "postgres" or "memory"
//	-s string     session token secret
//	-t duration   session max age (e.g. "24h")
//	-l string     log level
//
// Other arguments, including -c, are ignored here.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"-a", "-d", "-m", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("facturo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "address and port to listen on")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.Storage, "m", cfg.Storage, "storage backend (postgres|memory)")
	fs.StringVar(&cfg.Secret, "s", cfg.Secret, "session token secret")
	fs.DurationVar(&cfg.SessionMaxAge, "t", cfg.SessionMaxAge, "session max age")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
