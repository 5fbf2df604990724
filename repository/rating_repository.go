package repository

import (
	"context"
	"time"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
)

// RatingFilter scopes a rating feed. Zero fields are ignored, so the zero
// filter is the global feed.
type RatingFilter struct {
	StuffID string
	UserID  string
	TagID   string
}

// RatingRepository stores ratings. Reads never return soft-deleted rows.
type RatingRepository interface {
	// Create assigns ID and CreatedAt when they are zero.
	Create(ctx context.Context, rating *models.Rating) error
	GetByID(ctx context.Context, id string) (*models.Rating, error)
	List(ctx context.Context, filter RatingFilter, ks Keyset) ([]models.Rating, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
}
