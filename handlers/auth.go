package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/ratelimit"
	"github.com/photosunthesis/rate-stuff.online-sub001/services"
)

type AuthHandler struct {
	authService  services.AuthService
	loginLimiter ratelimit.Limiter
	log          *zap.Logger
}

// NewAuthHandler builds the handler. A nil loginLimiter disables login
// throttling.
func NewAuthHandler(authService services.AuthService, loginLimiter ratelimit.Limiter, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
		log:          log,
	}
}

// Register godoc
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, tokens)
}

// Login godoc
// POST /api/auth/login
//
// Attempts are counted per client IP. A successful login clears the
// counter so a legitimate user is never locked out by earlier typos.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ExtractIP(r)

	if h.loginLimiter != nil {
		decision, err := h.loginLimiter.Allow(r.Context(), ip)
		if err != nil {
			h.log.Warn("login limiter unavailable, allowing", zap.Error(err))
		} else if !decision.Allowed {
			secs := decision.RetryAfterSeconds()
			w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
			pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
				fmt.Sprintf("too many login attempts, try again in %d seconds", secs))
			return
		}
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if h.loginLimiter != nil {
		if err := h.loginLimiter.Reset(r.Context(), ip); err != nil {
			h.log.Warn("failed to reset login limiter", zap.Error(err))
		}
	}

	pkg.JSON(w, http.StatusOK, tokens)
}

// Refresh godoc
// POST /api/auth/refresh
// Body: { "refresh_token": "..." }
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, tokens)
}

// Logout godoc
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me godoc
// GET /api/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	pkg.JSON(w, http.StatusOK, user)
}
