package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lborres/facturo/adapters/memory"
	"github.com/lborres/facturo/core"
	"github.com/lborres/facturo/pkg/crypto"
)

var errStorage = errors.New("storage unavailable")

func strPtr(s string) *string { return &s }

// cheapHasher keeps bcrypt fast in tests.
func cheapHasher() crypto.PasswordHandler {
	return crypto.NewBcrypt(4)
}

func newTestSessionManager(storage core.SessionStorage, cache core.Cache) *SessionManager {
	return NewSessionManager(core.SessionConfig{MaxAge: 24 * time.Hour}, storage, cache, crypto.NewTokenHasher("0123456789abcdef0123456789abcdef"))
}

// seedUser stores a user with the given plain password (empty for none)
// and returns its identity.
func seedUser(t *testing.T, store core.UserStorage, id, email, password string) core.Identity {
	t.Helper()

	u := &core.User{ID: id, Email: email}
	if password != "" {
		hash, err := cheapHasher().Hash(password)
		if err != nil {
			t.Fatalf("Hash() error = %v", err)
		}
		u.Password = &hash
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return core.Identity{UserID: id, Email: email}
}

// failingStore wraps the memory store and fails selected user operations.
type failingStore struct {
	*memory.Store
	findErr   error
	updateErr error
	deleteErr error
}

func (f *failingStore) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.Store.FindUserByEmail(ctx, email)
}

func (f *failingStore) UpdateUserByEmail(ctx context.Context, email string, u core.UserUpdate) (*core.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.Store.UpdateUserByEmail(ctx, email, u)
}

func (f *failingStore) DeleteUserByEmail(ctx context.Context, email string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Store.DeleteUserByEmail(ctx, email)
}

// recordingCache is a core.Cache that records DeleteUser calls.
type recordingCache struct {
	sessions     map[string]*core.Session
	deletedUsers []string
	failSet      bool
}

func newRecordingCache() *recordingCache {
	return &recordingCache{sessions: make(map[string]*core.Session)}
}

func (c *recordingCache) Get(tokenHash string) (*core.Session, error) {
	s, ok := c.sessions[tokenHash]
	if !ok {
		return nil, core.ErrCacheNotFound
	}
	return s, nil
}

func (c *recordingCache) Set(tokenHash string, s *core.Session) error {
	if c.failSet {
		return errors.New("cache set failed")
	}
	c.sessions[tokenHash] = s
	return nil
}

func (c *recordingCache) Delete(tokenHash string) error {
	delete(c.sessions, tokenHash)
	return nil
}

func (c *recordingCache) DeleteUser(userID string) error {
	c.deletedUsers = append(c.deletedUsers, userID)
	for k, s := range c.sessions {
		if s.UserID == userID {
			delete(c.sessions, k)
		}
	}
	return nil
}
