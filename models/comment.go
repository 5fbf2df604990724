package models

import (
	"strings"
	"time"
)

// Comment is a reply to a rating.
type Comment struct {
	ID        string     `json:"id"`
	RatingID  string     `json:"rating_id"`
	UserID    string     `json:"user_id"`
	Username  string     `json:"username"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"-"`
}

// PageKey implements FeedItem.
func (c Comment) PageKey() (time.Time, string) {
	return c.CreatedAt, c.ID
}

// CreateCommentRequest posts a comment.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

func (r *CreateCommentRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	return validateStruct(r)
}
