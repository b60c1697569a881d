// Package cache provides an in-memory session-verification cache keyed
// by token hash.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/medgate/medgate/core"
)

// Config configures cache behavior.
type Config struct {
	TTL     time.Duration
	MaxSize int
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// InMemoryCache implements core.Cache over a map with TTL expiry and a
// crude size cap.
type InMemoryCache struct {
	cache   map[string]*cachedRecord
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type cachedRecord struct {
	record   *core.SessionRecord
	cachedAt time.Time
}

var _ core.Cache = (*InMemoryCache)(nil)

// NewInMemoryCache creates a new in-memory cache.
func NewInMemoryCache(c Config) *InMemoryCache {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.MaxSize == 0 {
		c.MaxSize = 500
	}

	return &InMemoryCache{
		cache:   make(map[string]*cachedRecord),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
	}
}

// Get retrieves a session record from cache.
func (c *InMemoryCache) Get(tokenHash string) (*core.SessionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.cache[tokenHash]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, core.ErrCacheNotFound
	}

	if time.Since(entry.cachedAt) > c.ttl {
		delete(c.cache, tokenHash)
		atomic.AddInt64(&c.misses, 1)
		return nil, core.ErrCacheNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	return entry.record, nil
}

// Set stores a session record in cache.
func (c *InMemoryCache) Set(tokenHash string, rec *core.SessionRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple eviction if full
	if len(c.cache) >= c.maxSize {
		for k := range c.cache {
			delete(c.cache, k)
			atomic.AddInt64(&c.evictions, 1)
			break
		}
	}

	c.cache[tokenHash] = &cachedRecord{
		record:   rec,
		cachedAt: time.Now(),
	}

	atomic.AddInt64(&c.sets, 1)
	return nil
}

// Delete removes a session record from cache.
func (c *InMemoryCache) Delete(tokenHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.cache[tokenHash]; existed {
		delete(c.cache, tokenHash)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

// Clear removes all session records from cache.
func (c *InMemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*cachedRecord)
	return nil
}

// Len returns the number of cached records.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Stats returns cache statistics.
func (c *InMemoryCache) Stats() Stats {
	return Stats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
