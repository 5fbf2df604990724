// Package cache provides a generic in-memory TTL cache.
package cache

import (
	"sync"
	"time"
)

// entry pairs a value with its absolute expiry.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a thread-safe map whose entries expire ttl after being set.
// Expired entries are never returned; they are physically removed by a
// background sweep every cleanupInterval.
//
//	users := cache.New[string, *models.User](30*time.Second, time.Minute)
//	users.Set(id, u)
//	u, ok := users.Get(id)
type TTLCache[K comparable, V any] struct {
	mu          sync.RWMutex
	entries     map[K]entry[V]
	ttl         time.Duration
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// New creates a cache and starts its sweep goroutine.
func New[K comparable, V any](ttl, cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries:     make(map[K]entry[V]),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.evictExpired()
			case <-c.stopCleanup:
				return
			}
		}
	}()

	return c
}

// Get returns the live value for key.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the cache TTL.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete invalidates key.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Len counts stored entries, expired ones included until the next sweep.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Close stops the sweep goroutine.
func (c *TTLCache[K, V]) Close() {
	c.closeOnce.Do(func() { close(c.stopCleanup) })
}

// evictExpired is the sweep: it takes the write lock once and drops every
// entry past its expiry. Get already hides expired entries; the sweep only
// bounds memory.
func (c *TTLCache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
