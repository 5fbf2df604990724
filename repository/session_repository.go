package repository

import (
	"context"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
)

// SessionRepository stores refresh-token sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByRefreshToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
}
