package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/services"
)

type InviteHandler struct {
	inviteService services.InviteService
}

func NewInviteHandler(inviteService services.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// List godoc
// GET /api/invites
// Invites created by the caller.
func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	invites, err := h.inviteService.List(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, invites)
}

// Create godoc
// POST /api/invites
// Body: { "max_uses": 5, "expires_in": 1440 }
func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	invite, err := h.inviteService.Create(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, invite)
}
