package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/handlers"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/ratelimit"
)

// KeyFunc picks the identity a request is counted against.
type KeyFunc func(r *http.Request) string

// ByIP counts requests per client address.
func ByIP(r *http.Request) string {
	return "ip:" + ratelimit.ExtractIP(r)
}

// ByUser counts requests per authenticated user, falling back to the
// client address when no user is in the context.
func ByUser(r *http.Request) string {
	if user, ok := r.Context().Value(handlers.UserContextKey).(*models.User); ok {
		return "user:" + user.ID
	}
	return ByIP(r)
}

// RateLimit rejects requests over the limiter's quota with 429 and a
// Retry-After header. If the limiter's store fails the request is let
// through.
type RateLimit struct {
	limiter ratelimit.Limiter
	key     KeyFunc
	log     *zap.Logger
}

func NewRateLimit(limiter ratelimit.Limiter, key KeyFunc, log *zap.Logger) *RateLimit {
	return &RateLimit{limiter: limiter, key: key, log: log}
}

func (m *RateLimit) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := m.key(r)

		decision, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			m.log.Warn("rate limiter unavailable, allowing request", zap.String("key", key), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if !decision.Allowed {
			pkg.RateLimited(w, decision.RetryAfterSeconds())
			return
		}

		next.ServeHTTP(w, r)
	})
}
