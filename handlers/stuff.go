package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/services"
)

type StuffHandler struct {
	stuffService services.StuffService
}

func NewStuffHandler(stuffService services.StuffService) *StuffHandler {
	return &StuffHandler{stuffService: stuffService}
}

// Create godoc
// POST /api/stuff
// Body: { "name": "...", "description": "...", "tags": ["coffee"] }
func (h *StuffHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateStuffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stuff, err := h.stuffService.Create(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, stuff)
}

// Get godoc
// GET /api/stuff/{id}
func (h *StuffHandler) Get(w http.ResponseWriter, r *http.Request) {
	stuff, err := h.stuffService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, stuff)
}
