// Package memory is a mutex-guarded in-process implementation of
// core.AuthStorage for development and tests.
//
// Deleting a user removes its accounts and sessions, matching the
// ON DELETE CASCADE foreign keys of the PostgreSQL schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lborres/facturo/core"
)

var _ core.AuthStorage = (*Store)(nil)

type Store struct {
	mu       sync.RWMutex
	users    map[string]*core.User    // key: user ID
	byEmail  map[string]string        // email -> user ID
	accounts map[string]*core.Account // key: account ID
	sessions map[string]*core.Session // key: token hash
	now      func() time.Time
}

func New() *Store {
	return &Store{
		users:    make(map[string]*core.User),
		byEmail:  make(map[string]string),
		accounts: make(map[string]*core.Account),
		sessions: make(map[string]*core.Session),
		now:      time.Now,
	}
}

func copyUser(u *core.User) *core.User {
	c := *u
	c.Accounts = nil
	return &c
}

// ============================================
// USERS
// ============================================

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[u.Email]; exists {
		return core.ErrUserExists
	}
	if _, exists := s.users[u.ID]; exists {
		return core.ErrUserExists
	}

	now := s.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	s.users[u.ID] = copyUser(u)
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, core.ErrUserNotFound
	}

	u := copyUser(s.users[id])
	u.Accounts = s.accountsOfLocked(id)
	return u, nil
}

func (s *Store) UpdateUserByEmail(_ context.Context, email string, update core.UserUpdate) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, core.ErrUserNotFound
	}

	u := s.users[id]
	if update.Name != nil {
		name := *update.Name
		u.Name = &name
	}
	if update.Image != nil {
		image := *update.Image
		u.Image = &image
	}
	if update.Password != nil {
		password := *update.Password
		u.Password = &password
	}
	if !update.IsEmpty() {
		u.UpdatedAt = s.now()
	}

	return copyUser(u), nil
}

func (s *Store) DeleteUserByEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return core.ErrUserNotFound
	}

	for k, a := range s.accounts {
		if a.UserID == id {
			delete(s.accounts, k)
		}
	}
	for k, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, k)
		}
	}
	delete(s.users, id)
	delete(s.byEmail, email)
	return nil
}

// ============================================
// ACCOUNTS
// ============================================

func (s *Store) CreateAccount(_ context.Context, a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[a.UserID]; !ok {
		return core.ErrUserNotFound
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	c := *a
	s.accounts[a.ID] = &c
	return nil
}

func (s *Store) ListAccountsByUser(_ context.Context, userID string) ([]*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountsOfLocked(userID), nil
}

func (s *Store) accountsOfLocked(userID string) []*core.Account {
	var out []*core.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	return out
}

// ============================================
// SESSIONS
// ============================================

func (s *Store) CreateSession(_ context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return core.ErrUserNotFound
	}
	c := *session
	s.sessions[session.TokenHash] = &c
	return nil
}

func (s *Store) GetSessionByHash(_ context.Context, tokenHash string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	c := *sess
	return &c, nil
}

func (s *Store) GetSessionByID(_ context.Context, id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if sess.ID == id {
			c := *sess
			return &c, nil
		}
	}
	return nil, core.ErrSessionNotFound
}

func (s *Store) GetUserSessions(_ context.Context, userID string) ([]*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			c := *sess
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteSessionByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, sess := range s.sessions {
		if sess.ID == id {
			delete(s.sessions, k)
			return nil
		}
	}
	return core.ErrSessionNotFound
}

func (s *Store) DeleteSessionByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[tokenHash]; !ok {
		return core.ErrSessionNotFound
	}
	delete(s.sessions, tokenHash)
	return nil
}

func (s *Store) DeleteUserSessions(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for k, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, k)
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for k, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, k)
			count++
		}
	}
	return count, nil
}
