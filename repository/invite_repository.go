package repository

import (
	"context"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
)

// InviteRepository stores registration codes.
type InviteRepository interface {
	Create(ctx context.Context, invite *models.Invite) error
	GetByCode(ctx context.Context, code string) (*models.Invite, error)
	ListByCreator(ctx context.Context, userID string) ([]models.Invite, error)
	// IncrementUses consumes one use. It returns pkg.ErrNotFound when the
	// code is unknown or already used up.
	IncrementUses(ctx context.Context, code string) error
}
