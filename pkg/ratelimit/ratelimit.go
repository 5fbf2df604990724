// Package ratelimit provides keyed fixed-window rate limiting.
//
// Two implementations share the Limiter interface: RedisLimiter keeps the
// counters in Redis so quotas survive restarts and are shared between
// processes, MemoryLimiter keeps them in process for single-node setups.
// Keys are caller-defined (client IP for login, user id for writes).
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // zero when Allowed
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, at least 1.
func (d Decision) RetryAfterSeconds() int {
	secs := int((d.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// Limiter counts one hit against key and decides whether it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}

// ExtractIP returns the client address of r, preferring the first
// X-Forwarded-For entry, then X-Real-IP, then RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
