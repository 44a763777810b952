// Command facturo serves the account and dashboard API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/lborres/facturo"
	fiberadapter "github.com/lborres/facturo/adapters/fiber"
	"github.com/lborres/facturo/adapters/memory"
	pgxadapter "github.com/lborres/facturo/adapters/pgx"
	"github.com/lborres/facturo/internal/config"
	"github.com/lborres/facturo/internal/logging"
)

func logFormat() string {
	format := []string{
		// Timestamp & Request ID
		"${time}|${requestid}",

		// Response metadata
		"${status}|${latency}",

		// Client info
		"${ip}:${port}",

		// Transfer size
		"${bytesReceived}|${bytesSent}",

		// Request details; bodies and Authorization carry credentials
		"${method}|${path}|${queryParams}",

		"${errors}",
	}
	return strings.Join(format, "|") + "\n"
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	appCfg := fiberadapter.AppConfig(cfg.BodyLimit)
	appCfg.AppName = "facturo"
	app := fiber.New(appCfg)
	app.Use(logger.New(logger.Config{
		Format:     logFormat(),
		TimeFormat: "2006/01/02 15:04:05",
		TimeZone:   "Local",
	}))

	f, err := facturo.New(facturo.Config{
		Secret:        cfg.Secret,
		Database:      store,
		HTTP:          fiberadapter.New(app, fiberadapter.WithSecureCookies(cfg.SecureCookies)),
		CacheConfig:   &facturo.CacheConfig{TTL: cfg.CacheTTL, MaxSize: cfg.CacheMaxSize},
		SessionConfig: &facturo.SessionConfig{MaxAge: cfg.SessionMaxAge},
		Logger:        log,
	})
	if err != nil {
		return fmt.Errorf("could not create facturo instance: %w", err)
	}

	go f.RunSessionCleanup(ctx, cfg.SessionCleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTPAddr, "storage", cfg.Storage)
		errCh <- app.Listen(cfg.HTTPAddr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("app.Listen: %w", err)
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down", "timeout", cfg.ShutdownTimeout.String())
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStorage returns the configured store and a function releasing it.
func openStorage(ctx context.Context, cfg *config.Config) (facturo.AuthStorage, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.New(), func() {}, nil
	case config.StoragePostgres:
		db, err := pgxadapter.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, errors.New("unknown storage " + cfg.Storage)
	}
}
