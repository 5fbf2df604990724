package repository

import (
	"context"
	"time"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
)

// ActivityRepository stores per-recipient activity entries.
type ActivityRepository interface {
	// Create assigns ID and CreatedAt when they are zero.
	Create(ctx context.Context, activity *models.Activity) error
	ListByUser(ctx context.Context, userID string, ks Keyset) ([]models.Activity, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) error

	// The SoftDelete* methods hide activities whose subject went away and
	// return the affected recipients so their feeds can be refreshed.
	SoftDeleteByRating(ctx context.Context, ratingID string, at time.Time) ([]string, error)
	SoftDeleteByComment(ctx context.Context, commentID string, at time.Time) ([]string, error)
	SoftDeleteVote(ctx context.Context, ratingID, actorID string, at time.Time) ([]string, error)
}
