package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lborres/facturo/core"
	"github.com/lborres/facturo/internal/logging"
	"github.com/lborres/facturo/pkg/crypto"
)

type AuthService struct {
	db             core.AuthStorage
	passwordHasher crypto.PasswordHandler
	sessionManager *SessionManager
	logger         logging.Logger
}

func NewAuthService(db core.AuthStorage, sessionManager *SessionManager, passwordHasher crypto.PasswordHandler, logger logging.Logger) *AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &AuthService{
		db:             db,
		passwordHasher: passwordHasher,
		sessionManager: sessionManager,
		logger:         logger.With("component", "auth"),
	}
}

func validateSignUp(input core.SignUpInput) error {
	switch {
	case input.Email == "":
		return core.ErrEmailRequired
	case !strings.Contains(input.Email, "@"):
		return core.ErrInvalidEmail
	case input.Password == "":
		return core.ErrPasswordRequired
	case core.PasswordLength(input.Password) < core.MinPasswordLength:
		return core.ErrPasswordTooShort
	case len(input.Password) > core.MaxPasswordLength:
		return core.ErrPasswordTooLong
	}
	return nil
}

// SignUp registers a new user with email and password
func (s *AuthService) SignUp(ctx context.Context, input core.SignUpInput, ipAddress, userAgent string) (*core.AuthResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validateSignUp(input); err != nil {
		return nil, err
	}

	existing, err := s.db.FindUserByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, core.ErrUserExists
	}

	hashedPassword, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The password lives on the user. Account links are reserved for
	// external identity providers.
	user := &core.User{
		ID:       uuid.NewString(),
		Email:    input.Email,
		Name:     input.Name,
		Image:    input.Image,
		Password: &hashedPassword,
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrUserExists) {
			return nil, core.ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	result, err := s.sessionManager.Create(ctx, user.ID, ipAddress, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info(ctx, "user signed up", "op", "sign_up", "email", user.Email)

	return &core.AuthResult{User: user, Session: result.Session, Token: result.Token}, nil
}

// SignIn authenticates a user with email and password
func (s *AuthService) SignIn(ctx context.Context, input core.SignInInput, ipAddress, userAgent string) (*core.AuthResult, error) {
	if input.Email == "" {
		return nil, core.ErrEmailRequired
	}
	if input.Password == "" {
		return nil, core.ErrPasswordRequired
	}

	user, err := s.db.FindUserByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// federated-only users have no local password
	if !user.HasPassword() {
		return nil, core.ErrInvalidCredentials
	}

	valid, err := s.passwordHasher.Verify(input.Password, *user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		s.logger.Warn(ctx, "sign in rejected", "op", "sign_in", "email", user.Email)
		return nil, core.ErrInvalidCredentials
	}

	result, err := s.sessionManager.Create(ctx, user.ID, ipAddress, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &core.AuthResult{User: user, Session: result.Session, Token: result.Token}, nil
}

// SignOut invalidates the session behind token
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if err := s.sessionManager.Destroy(ctx, token); err != nil {
		if errors.Is(err, core.ErrSessionNotFound) || errors.Is(err, core.ErrInvalidToken) {
			return err
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// GetSession resolves a raw token to its session and user. A session whose
// user no longer exists is treated as missing.
func (s *AuthService) GetSession(ctx context.Context, token string) (*core.SessionData, error) {
	session, err := s.sessionManager.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.db.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &core.SessionData{User: user, Session: session}, nil
}

// ListSessions returns the caller's live sessions.
func (s *AuthService) ListSessions(ctx context.Context, id core.Identity) ([]*core.Session, error) {
	if id.IsZero() {
		return nil, core.ErrUnauthorized
	}
	return s.sessionManager.ListUserSessions(ctx, id.UserID)
}

// RevokeSession ends one of the caller's sessions, typically another device.
func (s *AuthService) RevokeSession(ctx context.Context, id core.Identity, sessionID string) error {
	if id.IsZero() {
		return core.ErrUnauthorized
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return core.ErrSessionIDRequired
	}

	if err := s.sessionManager.DestroyBySessionID(ctx, id.UserID, sessionID); err != nil {
		return err
	}

	s.logger.Info(ctx, "session revoked", "op", "revoke_session", "email", id.Email)
	return nil
}
