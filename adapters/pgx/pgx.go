// Package pgx stores users, account links and sessions in PostgreSQL
// through a pgx connection pool. Schema migrations are embedded and run
// with goose.
package pgx

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/lborres/facturo/core"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB is the part of *pgxpool.Pool the adapter queries through.
// pgx.Tx satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Adapter struct {
	db   DB
	pool *pgxpool.Pool
}

var _ core.AuthStorage = (*Adapter)(nil)

func New(db DB) *Adapter {
	a := &Adapter{db: db}
	if pool, ok := db.(*pgxpool.Pool); ok {
		a.pool = pool
	}
	return a
}

// Open connects a pgx pool to dsn.
func Open(ctx context.Context, dsn string) (*Adapter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return New(pool), nil
}

// gooseUp is a seam for testing goose.UpContext.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate applies the embedded schema migrations. goose needs database/sql,
// so the pool is wrapped for the duration of the run.
func (a *Adapter) Migrate(ctx context.Context) error {
	if a.pool == nil {
		return errors.New("migrations need a *pgxpool.Pool")
	}

	db := stdlib.OpenDBFromPool(a.pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUp(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

func (a *Adapter) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func dbError(err error) error {
	return fmt.Errorf("db error: %w", err)
}
