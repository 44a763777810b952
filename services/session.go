package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lborres/facturo/core"
	"github.com/lborres/facturo/pkg/crypto"
)

type SessionManager struct {
	config  core.SessionConfig
	storage core.SessionStorage
	cache   core.Cache // optional, nil when caching is disabled
	tokens  *crypto.TokenHasher
	newID   func() (string, error)
	now     func() time.Time
}

func NewSessionManager(config core.SessionConfig, storage core.SessionStorage, cache core.Cache, tokens *crypto.TokenHasher) *SessionManager {
	if config.MaxAge <= 0 {
		config = core.DefaultSessionConfig()
	}
	if tokens == nil {
		tokens = crypto.NewTokenHasher("")
	}
	return &SessionManager{
		config:  config,
		storage: storage,
		cache:   cache,
		tokens:  tokens,
		newID:   crypto.NewSessionID,
		now:     time.Now,
	}
}

func (sm *SessionManager) Create(ctx context.Context, userID, ip, userAgent string) (*core.CreateSessionResult, error) {
	pair, err := sm.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	sessionID, err := sm.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := sm.now()
	session := &core.Session{
		ID:        sessionID,
		UserID:    userID,
		TokenHash: pair.Hash,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(sm.config.MaxAge),
	}

	if err := sm.storage.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if sm.cache != nil {
		// a cache failure never fails the request
		_ = sm.cache.Set(pair.Hash, session)
	}

	return &core.CreateSessionResult{Session: session, Token: pair.Token}, nil
}

// Verify resolves a raw token to its live session. Expired sessions are
// removed from cache and storage.
func (sm *SessionManager) Verify(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	tokenHash := sm.tokens.Hash(token)

	if sm.cache != nil {
		if session, err := sm.cache.Get(tokenHash); err == nil {
			if sm.now().After(session.ExpiresAt) {
				_ = sm.cache.Delete(tokenHash)
				_ = sm.storage.DeleteSessionByHash(ctx, tokenHash)
				return nil, core.ErrSessionExpired
			}
			return session, nil
		}
	}

	session, err := sm.storage.GetSessionByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			return nil, core.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, core.ErrSessionNotFound
	}

	if sm.now().After(session.ExpiresAt) {
		_ = sm.storage.DeleteSessionByID(ctx, session.ID)
		return nil, core.ErrSessionExpired
	}

	if sm.cache != nil {
		_ = sm.cache.Set(tokenHash, session)
	}

	return session, nil
}

func (sm *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return core.ErrInvalidToken
	}

	tokenHash := sm.tokens.Hash(token)

	if sm.cache != nil {
		_ = sm.cache.Delete(tokenHash)
	}

	return sm.storage.DeleteSessionByHash(ctx, tokenHash)
}

// ListUserSessions returns the unexpired sessions of userID, oldest first.
func (sm *SessionManager) ListUserSessions(ctx context.Context, userID string) ([]*core.Session, error) {
	sessions, err := sm.storage.GetUserSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	now := sm.now()
	live := make([]*core.Session, 0, len(sessions))
	for _, s := range sessions {
		if now.After(s.ExpiresAt) {
			continue
		}
		live = append(live, s)
	}
	return live, nil
}

// DestroyBySessionID revokes one session of userID. A session owned by
// someone else is reported as not found.
func (sm *SessionManager) DestroyBySessionID(ctx context.Context, userID, sessionID string) error {
	if sessionID == "" {
		return core.ErrSessionNotFound
	}

	session, err := sm.storage.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			return core.ErrSessionNotFound
		}
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != userID {
		return core.ErrSessionNotFound
	}

	if sm.cache != nil {
		_ = sm.cache.Delete(session.TokenHash)
	}

	return sm.storage.DeleteSessionByID(ctx, sessionID)
}

// DestroyAllUserSessions removes every session of userID. The cache is
// purged even when storage already lost the rows through a user delete.
func (sm *SessionManager) DestroyAllUserSessions(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, core.ErrUserNotFound
	}

	if sm.cache != nil {
		_ = sm.cache.DeleteUser(userID)
	}

	count, err := sm.storage.DeleteUserSessions(ctx, userID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Cleanup deletes expired sessions from storage.
func (sm *SessionManager) Cleanup(ctx context.Context) (int, error) {
	return sm.storage.DeleteExpiredSessions(ctx)
}
