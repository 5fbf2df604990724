package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/middleware"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/cache"
	"github.com/photosunthesis/rate-stuff.online-sub001/services"
)

// initRoutes builds the middleware chains and binds every endpoint. It
// returns the user cache so main can stop its sweeper on shutdown.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	authService services.AuthService,
	limiters *RateLimiters,
	log *zap.Logger,
) *cache.TTLCache[string, *models.User] {
	// ─── Middleware ───
	users := cache.New[string, *models.User](30*time.Second, time.Minute)
	authMw := middleware.NewAuthMiddleware(authService, users)
	writeMw := middleware.NewRateLimit(limiters.Write, middleware.ByUser, log.Named("ratelimit"))

	// ─── Middleware Chain Helpers ───
	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(http.HandlerFunc(handler))
	}
	authLimited := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(writeMw.Handler(http.HandlerFunc(handler)))
	}

	// Health
	mux.HandleFunc("GET /api/health", h.Health.Health)

	// Auth
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)

	// Users
	mux.Handle("GET /api/users/me", auth(h.Auth.Me))
	mux.Handle("GET /api/users/{username}/ratings", auth(h.Rating.ListByUser))

	// Invites
	mux.Handle("GET /api/invites", auth(h.Invite.List))
	mux.Handle("POST /api/invites", auth(h.Invite.Create))

	// Stuff
	mux.Handle("POST /api/stuff", auth(h.Stuff.Create))
	mux.Handle("GET /api/stuff/{id}", auth(h.Stuff.Get))
	mux.Handle("GET /api/stuff/{id}/ratings", auth(h.Rating.ListByStuff))
	mux.Handle("POST /api/stuff/{id}/ratings", authLimited(h.Rating.Create))

	// Tags
	mux.Handle("GET /api/tags/{name}/ratings", auth(h.Rating.ListByTag))

	// Ratings
	mux.Handle("GET /api/ratings", auth(h.Rating.ListAll))
	mux.Handle("DELETE /api/ratings/{id}", auth(h.Rating.Delete))
	mux.Handle("POST /api/ratings/{id}/vote", auth(h.Vote.Vote))
	mux.Handle("GET /api/ratings/{id}/comments", auth(h.Comment.List))
	mux.Handle("POST /api/ratings/{id}/comments", authLimited(h.Comment.Create))

	// Comments
	mux.Handle("DELETE /api/comments/{id}", auth(h.Comment.Delete))

	// Activities
	mux.Handle("GET /api/activities", auth(h.Activity.List))
	mux.Handle("GET /api/activities/unread", auth(h.Activity.Unread))
	mux.Handle("POST /api/activities/read", auth(h.Activity.MarkRead))

	// WebSocket: browsers cannot send headers on upgrade, so the handler
	// authenticates the ?token= query parameter itself.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)

	return users
}
