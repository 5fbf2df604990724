package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
)

// TokenValidator checks the access token passed in the query string.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// Options tunes connection liveness. PingInterval must be below PongWait.
type Options struct {
	PingInterval time.Duration
	PongWait     time.Duration
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 512,
	// browsers cannot set headers on WebSocket requests, so the token is
	// the credential and any origin is accepted
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades GET /ws?token=... into a notification channel.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
	opts           Options
	log            *zap.Logger
}

func NewHandler(hub *Hub, tokenValidator TokenValidator, opts Options, log *zap.Logger) *Handler {
	return &Handler{
		hub:            hub,
		tokenValidator: tokenValidator,
		opts:           opts,
		log:            log,
	}
}

func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("upgrade failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return
	}

	client := newClient(h.hub, conn, claims.UserID, h.opts, h.log)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump()
}
