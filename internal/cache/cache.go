// Package cache is a typed wrapper over an in-memory TTL cache.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCleanupInterval is how often expired entries are purged.
const DefaultCleanupInterval = 10 * time.Minute

// Memory holds values of a single type keyed by string.
type Memory[V any] struct {
	ttl   time.Duration
	cache *gocache.Cache
}

// NewMemory creates a cache whose entries expire after ttl.
func NewMemory[V any](ttl, cleanupInterval time.Duration) *Memory[V] {
	return &Memory[V]{
		ttl:   ttl,
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Get returns the value stored under key.
func (c *Memory[V]) Get(key string) (V, bool) {
	var zero V
	value, found := c.cache.Get(key)
	if !found {
		return zero, false
	}
	v, ok := value.(V)
	if !ok {
		return zero, false
	}
	return v, true
}

// Touch returns the value under key and restarts its TTL. A key deleted
// concurrently stays deleted.
func (c *Memory[V]) Touch(key string) (V, bool) {
	var zero V
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	if err := c.cache.Replace(key, v, c.ttl); err != nil {
		return zero, false
	}
	return v, true
}

// Set stores value under key with the default TTL.
func (c *Memory[V]) Set(key string, value V) {
	c.cache.Set(key, value, c.ttl)
}

// Add stores value only if key is absent.
func (c *Memory[V]) Add(key string, value V) error {
	return c.cache.Add(key, value, c.ttl)
}

// Delete removes key.
func (c *Memory[V]) Delete(key string) {
	c.cache.Delete(key)
}

// Len is the number of entries, including expired ones not yet purged.
func (c *Memory[V]) Len() int {
	return c.cache.ItemCount()
}

// OnEvicted registers a callback for entries removed by expiry or Delete.
func (c *Memory[V]) OnEvicted(fn func(key string, value V)) {
	c.cache.OnEvicted(func(key string, value interface{}) {
		if v, ok := value.(V); ok {
			fn(key, v)
		}
	})
}
