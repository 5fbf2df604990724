// Package handlers turns HTTP requests into service calls. Handlers stay
// thin: parse the request, call a service, write the envelope. Business
// rules live in services.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
)

type contextKey string

// UserContextKey holds the authenticated *models.User, set by
// middleware.AuthMiddleware.
const UserContextKey contextKey = "user"

func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return nil, false
	}
	return user, true
}

// pageRequest reads ?limit= and ?cursor=. A missing or non-numeric limit
// becomes 0, which the pager turns into its default.
func pageRequest(r *http.Request) models.PageRequest {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil {
		limit = 0
	}
	return models.PageRequest{Cursor: q.Get("cursor"), Limit: limit}
}
