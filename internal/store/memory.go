package store

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/scavin/discourse-bilibili-onebox/internal/resolver"
)

// DefaultMemorySize bounds MemoryCache when no size is configured.
const DefaultMemorySize = 10_000

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is a bounded in-process cache. Expired entries are dropped
// lazily on read; the least recently used entry is evicted when full.
type MemoryCache struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemoryCache creates a cache holding at most size entries.
func NewMemoryCache(size int) *MemoryCache {
	if size <= 0 {
		size = DefaultMemorySize
	}

	// NewLRU only fails for a non-positive size.
	lru, _ := simplelru.NewLRU[string, memoryEntry](size, nil)

	return &MemoryCache{lru: lru, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(key)
	if !ok {
		return "", resolver.ErrCacheMiss
	}

	if !c.now().Before(entry.expiresAt) {
		c.lru.Remove(key)

		return "", resolver.ErrCacheMiss
	}

	return entry.value, nil
}

func (c *MemoryCache) Put(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, memoryEntry{value: value, expiresAt: c.now().Add(ttl)})

	return nil
}

// Len returns the number of entries, including expired ones not yet read.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

// Ping always succeeds.
func (c *MemoryCache) Ping(context.Context) error {
	return nil
}

// Shutdown is a no-op for MemoryCache.
func (c *MemoryCache) Shutdown() error {
	return nil
}

var _ resolver.Cache = (*MemoryCache)(nil)
