package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/handlers"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/cache"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/ratelimit"
	"github.com/photosunthesis/rate-stuff.online-sub001/services"
)

type fakeAuth struct {
	services.AuthService
	lookups int
}

func (f *fakeAuth) ValidateAccessToken(token string) (*models.TokenClaims, error) {
	switch token {
	case "good":
		return &models.TokenClaims{UserID: "u1"}, nil
	case "ghost":
		return &models.TokenClaims{UserID: "gone"}, nil
	}
	return nil, pkg.ErrUnauthorized
}

func (f *fakeAuth) GetUser(_ context.Context, id string) (*models.User, error) {
	f.lookups++
	if id != "u1" {
		return nil, pkg.ErrNotFound
	}
	return &models.User{ID: "u1", Username: "alice", PasswordHash: "secret"}, nil
}

// echoUser writes the context user's id, or "none".
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if u, ok := r.Context().Value(handlers.UserContextKey).(*models.User); ok {
		_, _ = w.Write([]byte(u.ID + ":" + u.PasswordHash))
		return
	}
	_, _ = w.Write([]byte("none"))
})

func TestAuthRequire(t *testing.T) {
	users := cache.New[string, *models.User](time.Minute, time.Minute)
	defer users.Close()

	auth := &fakeAuth{}
	h := NewAuthMiddleware(auth, users).Require(echoUser)

	call := func(header string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"empty bearer": "Bearer ",
		"bad token":    "Bearer nope",
		"deleted user": "Bearer ghost",
	} {
		assert.Equal(t, http.StatusUnauthorized, call(header).Code, name)
	}

	rec := call("Bearer good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1:", rec.Body.String(), "password hash must be stripped")

	lookups := auth.lookups
	call("Bearer good")
	assert.Equal(t, lookups, auth.lookups, "second request served from cache")
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("store down")
}

func (brokenLimiter) Reset(context.Context, string) error { return nil }

func TestRateLimitByUser(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(1, time.Minute)
	defer limiter.Close()

	h := NewRateLimit(limiter, ByUser, zap.NewNop()).Handler(echoUser)

	call := func(userID string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/stuff/s1/ratings", nil)
		r = r.WithContext(context.WithValue(r.Context(), handlers.UserContextKey, &models.User{ID: userID}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("alice").Code)

	rec := call("alice")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, call("bob").Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	h := NewRateLimit(brokenLimiter{}, ByIP, zap.NewNop()).Handler(echoUser)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestKeyFuncs(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "ip:192.0.2.7", ByIP(r))
	assert.Equal(t, "ip:192.0.2.7", ByUser(r))

	r = r.WithContext(context.WithValue(r.Context(), handlers.UserContextKey, &models.User{ID: "u9"}))
	assert.Equal(t, "user:u9", ByUser(r))
}
