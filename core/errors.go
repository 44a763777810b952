package core

import "errors"

// Identity and account lookups.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Session resolution. They end as 401 at the HTTP boundary, except that
// revoking an unknown session ID is a 404.
var (
	ErrInvalidToken    = errors.New("invalid session token")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrCacheNotFound   = errors.New("session not found in cache")
)

// Request validation.
var (
	ErrInvalidBody      = errors.New("invalid request body")
	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")

	ErrSessionIDRequired = errors.New("session id is required")
)

// Password change.
var (
	ErrPasswordsRequired = errors.New("current and new password required")
	ErrNoPassword        = errors.New("user not found or no password set")
	ErrIncorrectPassword = errors.New("current password is incorrect")
)

// Wiring errors returned by facturo.New.
var (
	ErrDBAdapterRequired   = errors.New("database adapter is required")
	ErrHTTPAdapterRequired = errors.New("http adapter is required")
	ErrSecretRequired      = errors.New("secret is required")
	ErrSecretTooShort      = errors.New("secret too short")
)
