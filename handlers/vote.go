package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/services"
)

type VoteHandler struct {
	voteService services.VoteService
}

func NewVoteHandler(voteService services.VoteService) *VoteHandler {
	return &VoteHandler{voteService: voteService}
}

// Vote godoc
// POST /api/ratings/{id}/vote
// Body: { "value": 1 }  (1 or -1; repeating the current value withdraws it)
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.voteService.Vote(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}
