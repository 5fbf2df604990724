package handlers

import (
	"net/http"

	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/services"
)

// ActivityHandler serves the caller's own activity feed. Clients re-fetch
// its first page when their notification channel says NEW_ACTIVITY.
type ActivityHandler struct {
	activityService services.ActivityService
}

func NewActivityHandler(activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// List godoc
// GET /api/activities?limit=&cursor=
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	page, err := h.activityService.List(r.Context(), user.ID, pageRequest(r))
	writePage(w, page, err)
}

// Unread godoc
// GET /api/activities/unread
func (h *ActivityHandler) Unread(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	count, err := h.activityService.UnreadCount(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, count)
}

// MarkRead godoc
// POST /api/activities/read
func (h *ActivityHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.activityService.MarkAllRead(r.Context(), user.ID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "activities marked read"})
}
