package core

import "context"

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

type SessionStorage interface {
	CreateSession(ctx context.Context, session *Session) error

	// Query methods
	GetSessionByHash(ctx context.Context, tokenHash string) (*Session, error)
	GetSessionByID(ctx context.Context, id string) (*Session, error)
	GetUserSessions(ctx context.Context, userID string) ([]*Session, error)

	// Delete methods
	DeleteSessionByID(ctx context.Context, id string) error
	DeleteSessionByHash(ctx context.Context, tokenHash string) error
	DeleteUserSessions(ctx context.Context, userID string) (int, error)

	// Cleanup
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// UserStorage addresses users by email for every profile operation.
// Deleting a user removes its accounts and sessions.
type UserStorage interface {
	CreateUser(ctx context.Context, u *User) error

	GetUserByID(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)

	UpdateUserByEmail(ctx context.Context, email string, update UserUpdate) (*User, error)

	DeleteUserByEmail(ctx context.Context, email string) error
}

type AccountStorage interface {
	CreateAccount(ctx context.Context, a *Account) error
	ListAccountsByUser(ctx context.Context, userID string) ([]*Account, error)
}

type AuthStorage interface {
	UserStorage
	AccountStorage
	SessionStorage
}
