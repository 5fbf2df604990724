package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	count       int
	windowStart time.Time
}

// MemoryLimiter is an in-process fixed-window limiter. Expired buckets are
// swept by a background goroutine until Close is called.
type MemoryLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	limit       int
	window      time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// NewMemoryLimiter allows limit hits per key in each window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	rl := &MemoryLimiter{
		buckets:     make(map[string]*bucket),
		limit:       limit,
		window:      window,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow implements Limiter. It never returns an error.
func (rl *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.windowStart) >= rl.window {
		rl.buckets[key] = &bucket{count: 1, windowStart: now}
		return Decision{Allowed: true, Remaining: rl.limit - 1}, nil
	}

	b.count++
	if b.count <= rl.limit {
		return Decision{Allowed: true, Remaining: rl.limit - b.count}, nil
	}

	return Decision{
		Allowed:    false,
		RetryAfter: b.windowStart.Add(rl.window).Sub(now),
	}, nil
}

// Reset forgets key, e.g. after a successful login.
func (rl *MemoryLimiter) Reset(_ context.Context, key string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, key)
	return nil
}

// Close stops the cleanup goroutine.
func (rl *MemoryLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.stopCleanup) })
}

func (rl *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *MemoryLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, b := range rl.buckets {
		if now.Sub(b.windowStart) >= rl.window {
			delete(rl.buckets, key)
		}
	}
}
