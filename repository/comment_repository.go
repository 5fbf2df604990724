package repository

import (
	"context"
	"time"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
)

// CommentRepository stores comments on ratings.
type CommentRepository interface {
	// Create assigns ID and CreatedAt when they are zero.
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByRating(ctx context.Context, ratingID string, ks Keyset) ([]models.Comment, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
}
