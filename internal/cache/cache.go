// SPDX-License-Identifier: MIT

// Package cache stores serialized guide responses with a TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Cache provides thread-safe byte caching with expiration support.
type Cache interface {
	// Get retrieves a value. The bool is false when missing or expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a value with the specified TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Delete removes a value.
	Delete(ctx context.Context, key string)
	// Stats returns cache statistics.
	Stats() Stats
	// Close releases background resources.
	Close() error
}

// Stats holds cache performance counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Sets        int64 `json:"sets"`
	Evictions   int64 `json:"evictions"`
	CurrentSize int   `json:"current_size"`
}

// Backend names.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options configures New.
type Options struct {
	Backend string
	Redis   RedisConfig
}

// New builds the configured cache. An unreachable Redis falls back to memory.
func New(opts Options, logger zerolog.Logger) (Cache, error) {
	switch opts.Backend {
	case BackendNone:
		return NewNoOpCache(), nil
	case "", BackendMemory:
		return NewMemoryCache(time.Minute), nil
	case BackendRedis:
		c, err := NewRedisCache(opts.Redis, logger)
		if err != nil {
			logger.Warn().Err(err).Str("addr", opts.Redis.Addr).Msg("redis cache unavailable, falling back to memory")
			return NewMemoryCache(time.Minute), nil
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", opts.Backend)
	}
}

// GetJSON decodes a cached JSON value into T.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var out T
	raw, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		c.Delete(ctx, key)
		return out, false
	}
	return out, true
}

// SetJSON encodes v as JSON and caches it.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.Set(ctx, key, raw, ttl)
	return nil
}

type entry struct {
	value      []byte
	expiration time.Time
}

func (e *entry) isExpired(now time.Time) bool {
	return now.After(e.expiration)
}

type counters struct {
	hits, misses, sets, evictions atomic.Int64
}

// memoryCache is an in-memory implementation of Cache.
type memoryCache struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	stats    counters
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryCache creates an in-memory cache. A positive cleanupInterval
// starts a janitor that removes expired entries until Close.
func NewMemoryCache(cleanupInterval time.Duration) Cache {
	c := &memoryCache{
		entries: make(map[string]*entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}
	return c
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || e.isExpired(c.now()) {
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return e.value, true
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{value: value, expiration: c.now().Add(ttl)}
	c.stats.sets.Add(1)
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *memoryCache) Stats() Stats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	return Stats{
		Hits:        c.stats.hits.Load(),
		Misses:      c.stats.misses.Load(),
		Sets:        c.stats.sets.Load(),
		Evictions:   c.stats.evictions.Load(),
		CurrentSize: size,
	}
}

// deleteExpired removes expired entries and returns how many were dropped.
func (c *memoryCache) deleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for key, e := range c.entries {
		if e.isExpired(now) {
			delete(c.entries, key)
			count++
		}
	}
	c.stats.evictions.Add(int64(count))
	return count
}

func (c *memoryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

// noOpCache is a cache that does nothing.
type noOpCache struct{}

// NewNoOpCache creates a cache that doesn't cache anything.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (noOpCache) Set(context.Context, string, []byte, time.Duration) {}
func (noOpCache) Delete(context.Context, string)                     {}
func (noOpCache) Stats() Stats                                       { return Stats{} }
func (noOpCache) Close() error                                       { return nil }
