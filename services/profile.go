package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lborres/facturo/core"
	"github.com/lborres/facturo/internal/logging"
	"github.com/lborres/facturo/pkg/crypto"
)

// ProfileService implements the account-management operations. Every
// operation acts on the user behind the session identity, never on a
// client-supplied id.
type ProfileService struct {
	users          core.UserStorage
	sessionManager *SessionManager
	passwordHasher crypto.PasswordHandler
	logger         logging.Logger
}

func NewProfileService(users core.UserStorage, sessionManager *SessionManager, passwordHasher crypto.PasswordHandler, logger logging.Logger) *ProfileService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ProfileService{
		users:          users,
		sessionManager: sessionManager,
		passwordHasher: passwordHasher,
		logger:         logger.With("component", "profile"),
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, id core.Identity) (*core.Profile, error) {
	if id.IsZero() {
		return nil, core.ErrUnauthorized
	}

	user, err := s.users.FindUserByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return core.NewProfile(user), nil
}

// BuildUserUpdate keeps only the fields that are present and non-empty.
// An empty string cannot clear a field.
func BuildUserUpdate(in core.UpdateProfileInput) core.UserUpdate {
	var u core.UserUpdate
	if in.Name != nil && *in.Name != "" {
		u.Name = in.Name
	}
	if in.Image != nil && *in.Image != "" {
		u.Image = in.Image
	}
	return u
}

func (s *ProfileService) UpdateProfile(ctx context.Context, id core.Identity, in core.UpdateProfileInput) (*core.ProfileSummary, error) {
	if id.IsZero() {
		return nil, core.ErrUnauthorized
	}

	update := BuildUserUpdate(in)
	user, err := s.users.UpdateUserByEmail(ctx, id.Email, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if !update.IsEmpty() {
		s.logger.Info(ctx, "profile updated", "op", "update_profile", "email", id.Email,
			"name", update.Name != nil, "image", update.Image != nil)
	}

	return core.NewProfileSummary(user), nil
}

// ChangePassword replaces the stored hash after checking, in order: both
// passwords present, new password length, a stored hash, and the current
// password.
func (s *ProfileService) ChangePassword(ctx context.Context, id core.Identity, in core.ChangePasswordInput) error {
	if id.IsZero() {
		return core.ErrUnauthorized
	}
	if in.CurrentPassword == "" || in.NewPassword == "" {
		return core.ErrPasswordsRequired
	}
	if core.PasswordLength(in.NewPassword) < core.MinPasswordLength {
		return core.ErrPasswordTooShort
	}

	user, err := s.users.FindUserByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return core.ErrNoPassword
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if !user.HasPassword() {
		return core.ErrNoPassword
	}

	valid, err := s.passwordHasher.Verify(in.CurrentPassword, *user.Password)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		s.logger.Warn(ctx, "password change rejected", "op", "change_password", "email", id.Email)
		return core.ErrIncorrectPassword
	}

	// bcrypt refuses input above 72 bytes
	if len(in.NewPassword) > core.MaxPasswordLength {
		return core.ErrPasswordTooLong
	}

	hashed, err := s.passwordHasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.users.UpdateUserByEmail(ctx, id.Email, core.UserUpdate{Password: &hashed}); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}

	s.logger.Info(ctx, "password changed", "op", "change_password", "email", id.Email)
	return nil
}

// DeleteAccount removes the user; storage cascades accounts and sessions.
// Cached sessions are purged so the old token stops working immediately.
func (s *ProfileService) DeleteAccount(ctx context.Context, id core.Identity) error {
	if id.IsZero() {
		return core.ErrUnauthorized
	}

	if err := s.users.DeleteUserByEmail(ctx, id.Email); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if s.sessionManager != nil && id.UserID != "" {
		if _, err := s.sessionManager.DestroyAllUserSessions(ctx, id.UserID); err != nil {
			s.logger.Warn(ctx, "session purge failed", "op", "delete_account", "email", id.Email, "error", err)
		}
	}

	s.logger.Info(ctx, "account deleted", "op", "delete_account", "email", id.Email)
	return nil
}
