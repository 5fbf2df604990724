package repository

import "context"

// VoteRepository stores one vote (+1 or -1) per user and rating.
type VoteRepository interface {
	// Get returns the user's vote on the rating, 0 when there is none.
	Get(ctx context.Context, ratingID, userID string) (int, error)
	Set(ctx context.Context, ratingID, userID string, value int) error
	Delete(ctx context.Context, ratingID, userID string) error
	Score(ctx context.Context, ratingID string) (int, error)
}
