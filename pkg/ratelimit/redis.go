package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript increments the window counter and starts its TTL on the first
// hit of a window, atomically. Returns {count, remaining ttl in ms}.
var hitScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// RedisLimiter is a fixed-window limiter whose counters live in Redis and
// expire with the window.
type RedisLimiter struct {
	rdb    redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter allows limit hits per key in each window. prefix namespaces
// the keys, e.g. "rso:rl:login".
func NewRedisLimiter(rdb redis.UniversalClient, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

func (rl *RedisLimiter) key(key string) string {
	return rl.prefix + ":" + key
}

// Allow implements Limiter.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := hitScript.Run(ctx, rl.rdb, []string{rl.key(key)}, rl.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit store: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit store: unexpected reply %v", res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if count <= rl.limit {
		return Decision{Allowed: true, Remaining: rl.limit - count}, nil
	}
	return Decision{Allowed: false, RetryAfter: ttl}, nil
}

// Reset deletes the counter for key.
func (rl *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := rl.rdb.Del(ctx, rl.key(key)).Err(); err != nil {
		return fmt.Errorf("rate limit store: %w", err)
	}
	return nil
}
