// Package middleware holds the func(http.Handler) http.Handler layers
// wrapped around handlers: authentication and keyed rate limiting.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/photosunthesis/rate-stuff.online-sub001/handlers"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/cache"
	"github.com/photosunthesis/rate-stuff.online-sub001/services"
)

// AuthMiddleware validates Bearer access tokens and puts the user in the
// request context under handlers.UserContextKey.
type AuthMiddleware struct {
	authService services.AuthService
	users       *cache.TTLCache[string, *models.User]
}

// NewAuthMiddleware builds the middleware. users caches lookups by id so
// feed polling does not hit the users table on every request; it may be
// nil.
func NewAuthMiddleware(authService services.AuthService, users *cache.TTLCache[string, *models.User]) *AuthMiddleware {
	return &AuthMiddleware{authService: authService, users: users}
}

// Require rejects requests without a valid token with 401.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		user, err := m.lookup(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
				return
			}
			pkg.Error(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) lookup(ctx context.Context, userID string) (*models.User, error) {
	if m.users != nil {
		if user, ok := m.users.Get(userID); ok {
			return user, nil
		}
	}

	user, err := m.authService.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""

	if m.users != nil {
		m.users.Set(userID, user)
	}
	return user, nil
}
