package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lborres/facturo/core"
)

var _ core.CacheWithStats = (*InMemoryCache)(nil)

// InMemoryCache is a size-bounded TTL map. When full, the entry cached
// longest ago is evicted. Counters are updated atomically.
type InMemoryCache struct {
	records map[string]*cachedRecord // key: token hash
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type cachedRecord struct {
	session  *core.Session
	cachedAt time.Time
}

func NewInMemoryCache(c core.CacheConfig) *InMemoryCache {
	if c.TTL <= 0 {
		c.TTL = core.DefaultCacheTTL
	}
	if c.MaxSize <= 0 {
		c.MaxSize = core.DefaultCacheMaxSize
	}

	return &InMemoryCache{
		records: make(map[string]*cachedRecord),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		now:     time.Now,
	}
}

// Get retrieves a session from cache. Entries older than the TTL are dropped.
func (c *InMemoryCache) Get(tokenHash string) (*core.Session, error) {
	c.mu.RLock()
	record, exists := c.records[tokenHash]
	c.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, core.ErrCacheNotFound
	}

	if c.now().Sub(record.cachedAt) > c.ttl {
		atomic.AddInt64(&c.misses, 1)
		_ = c.Delete(tokenHash)
		return nil, core.ErrCacheNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	return record.session, nil
}

func (c *InMemoryCache) Set(tokenHash string, session *core.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, replacing := c.records[tokenHash]; !replacing && len(c.records) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.records[tokenHash] = &cachedRecord{
		session:  session,
		cachedAt: c.now(),
	}

	atomic.AddInt64(&c.sets, 1)
	return nil
}

func (c *InMemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, r := range c.records {
		if oldestKey == "" || r.cachedAt.Before(oldest) {
			oldestKey, oldest = k, r.cachedAt
		}
	}
	if oldestKey != "" {
		delete(c.records, oldestKey)
		atomic.AddInt64(&c.evictions, 1)
	}
}

func (c *InMemoryCache) Delete(tokenHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.records[tokenHash]; existed {
		delete(c.records, tokenHash)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

// DeleteUser removes every cached session that belongs to userID
func (c *InMemoryCache) DeleteUser(userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, r := range c.records {
		if r.session.UserID == userID {
			delete(c.records, k)
			atomic.AddInt64(&c.deletes, 1)
		}
	}
	return nil
}

func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *InMemoryCache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
