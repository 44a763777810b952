package core

import "time"

const (
	DefaultCacheTTL      = 5 * time.Minute
	DefaultCacheMaxSize  = 500
	DefaultSessionMaxAge = 24 * time.Hour
)

// Cache keeps recently verified sessions keyed by token hash so that
// protected requests can skip the session table. Implementations must be
// safe for concurrent use; a miss is reported as ErrCacheNotFound.
type Cache interface {
	Get(tokenHash string) (*Session, error)
	Set(tokenHash string, session *Session) error
	Delete(tokenHash string) error
	// DeleteUser drops every session of userID, used when an account is deleted.
	DeleteUser(userID string) error
}

type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig tunes a Cache. Zero values select the defaults.
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// SessionConfig controls session lifetime.
type SessionConfig struct {
	MaxAge time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{MaxAge: DefaultSessionMaxAge}
}
