package repository

import (
	"context"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
)

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByUsername matches case-insensitively.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}
