package models

import (
	"strings"
	"time"
)

// Rating is one user's 1-10 score of a stuff. Ratings are feed items: they
// are ordered by (CreatedAt, ID) and soft-deleted.
type Rating struct {
	ID        string     `json:"id"`
	StuffID   string     `json:"stuff_id"`
	StuffName string     `json:"stuff_name"`
	UserID    string     `json:"user_id"`
	Username  string     `json:"username"`
	Score     int        `json:"score"`
	Content   string     `json:"content"`
	VoteScore int        `json:"vote_score"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"-"`
}

// PageKey implements FeedItem.
func (r Rating) PageKey() (time.Time, string) {
	return r.CreatedAt, r.ID
}

// CreateRatingRequest rates a stuff.
type CreateRatingRequest struct {
	Score   int    `json:"score" validate:"min=1,max=10"`
	Content string `json:"content" validate:"max=2000"`
}

func (r *CreateRatingRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	return validateStruct(r)
}
