package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health godoc
// GET /api/health
// 503 when the datastore does not answer a ping within two seconds.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		pkg.Error(w, pkg.ErrUnavailable)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
