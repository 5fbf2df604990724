package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/services"
)

// RatingHandler serves rating writes and the four rating feeds. Every feed
// accepts ?limit= and ?cursor= and answers with a models.Page.
type RatingHandler struct {
	ratingService services.RatingService
}

func NewRatingHandler(ratingService services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// ListAll godoc
// GET /api/ratings
func (h *RatingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, err := h.ratingService.ListAll(r.Context(), pageRequest(r))
	writePage(w, page, err)
}

// ListByStuff godoc
// GET /api/stuff/{id}/ratings
func (h *RatingHandler) ListByStuff(w http.ResponseWriter, r *http.Request) {
	page, err := h.ratingService.ListByStuff(r.Context(), r.PathValue("id"), pageRequest(r))
	writePage(w, page, err)
}

// ListByTag godoc
// GET /api/tags/{name}/ratings
func (h *RatingHandler) ListByTag(w http.ResponseWriter, r *http.Request) {
	page, err := h.ratingService.ListByTag(r.Context(), r.PathValue("name"), pageRequest(r))
	writePage(w, page, err)
}

// ListByUser godoc
// GET /api/users/{username}/ratings
func (h *RatingHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	page, err := h.ratingService.ListByUser(r.Context(), r.PathValue("username"), pageRequest(r))
	writePage(w, page, err)
}

// Create godoc
// POST /api/stuff/{id}/ratings
// Body: { "score": 8, "content": "..." }
func (h *RatingHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rating, err := h.ratingService.Create(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, rating)
}

// Delete godoc
// DELETE /api/ratings/{id}
func (h *RatingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.ratingService.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "rating deleted"})
}

func writePage[T models.FeedItem](w http.ResponseWriter, page *models.Page[T], err error) {
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, page)
}
