package models

import "time"

// ActivityType says what happened to the recipient's rating.
type ActivityType string

const (
	ActivityVote    ActivityType = "vote"
	ActivityComment ActivityType = "comment"
)

// Activity is an entry in a user's own feed: someone voted on or commented
// on one of their ratings.
type Activity struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	ActorID       string       `json:"actor_id"`
	ActorUsername string       `json:"actor_username"`
	Type          ActivityType `json:"type"`
	RatingID      string       `json:"rating_id"`
	CommentID     *string      `json:"comment_id,omitempty"`
	Read          bool         `json:"read"`
	CreatedAt     time.Time    `json:"created_at"`
	DeletedAt     *time.Time   `json:"-"`
}

// PageKey implements FeedItem.
func (a Activity) PageKey() (time.Time, string) {
	return a.CreatedAt, a.ID
}

// UnreadCount is the body of GET /api/activities/unread.
type UnreadCount struct {
	Count int `json:"count"`
}
