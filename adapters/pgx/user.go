package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/facturo/core"
)

const userColumns = `id, email, name, image, password, email_verified, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*core.User, error) {
	u := &core.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.Password, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, dbError(err)
	}
	return u, nil
}

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	query :=
		`INSERT INTO users (id, email, name, image, password, email_verified)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`

	err := a.db.QueryRow(ctx, query,
		user.ID, user.Email, user.Name, user.Image, user.Password, user.EmailVerified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrUserExists
		}
		return dbError(err)
	}
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(a.db.QueryRow(ctx, query, id))
}

// FindUserByEmail returns the user with its linked accounts.
func (a *Adapter) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(a.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, err
	}

	user.Accounts, err = a.ListAccountsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserByEmail writes the non-nil fields of update. An empty update
// reads the current record without touching updated_at.
func (a *Adapter) UpdateUserByEmail(ctx context.Context, email string, update core.UserUpdate) (*core.User, error) {
	if update.IsEmpty() {
		return a.GetUserByEmail(ctx, email)
	}

	query :=
		`UPDATE users SET
		   name = COALESCE($2, name),
		   image = COALESCE($3, image),
		   password = COALESCE($4, password),
		   updated_at = now()
		 WHERE email = $1
		 RETURNING ` + userColumns

	return scanUser(a.db.QueryRow(ctx, query, email, update.Name, update.Image, update.Password))
}

// GetUserByEmail returns the user without its accounts.
func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(a.db.QueryRow(ctx, query, email))
}

// DeleteUserByEmail removes the user; foreign keys cascade to accounts and sessions.
func (a *Adapter) DeleteUserByEmail(ctx context.Context, email string) error {
	tag, err := a.db.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return dbError(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}
