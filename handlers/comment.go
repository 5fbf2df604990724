package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/services"
)

type CommentHandler struct {
	commentService services.CommentService
}

func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List godoc
// GET /api/ratings/{id}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.commentService.ListByRating(r.Context(), r.PathValue("id"), pageRequest(r))
	writePage(w, page, err)
}

// Create godoc
// POST /api/ratings/{id}/comments
// Body: { "content": "..." }
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, comment)
}

// Delete godoc
// DELETE /api/comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.commentService.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}
