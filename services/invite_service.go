package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/repository"
)

// InviteService issues registration codes. Codes are consumed by
// AuthService.Register.
type InviteService interface {
	Create(ctx context.Context, createdBy string, req *models.CreateInviteRequest) (*models.Invite, error)
	List(ctx context.Context, userID string) ([]models.Invite, error)
}

type inviteService struct {
	inviteRepo repository.InviteRepository
}

func NewInviteService(inviteRepo repository.InviteRepository) InviteService {
	return &inviteService{inviteRepo: inviteRepo}
}

func (s *inviteService) Create(ctx context.Context, createdBy string, req *models.CreateInviteRequest) (*models.Invite, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	// 8 random bytes, 16 hex characters
	codeBytes := make([]byte, 8)
	if _, err := rand.Read(codeBytes); err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}

	invite := &models.Invite{
		Code:      hex.EncodeToString(codeBytes),
		CreatedBy: &createdBy,
		MaxUses:   req.MaxUses,
	}
	if req.ExpiresIn > 0 {
		expiresAt := time.Now().UTC().Add(time.Duration(req.ExpiresIn) * time.Minute)
		invite.ExpiresAt = &expiresAt
	}

	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *inviteService) List(ctx context.Context, userID string) ([]models.Invite, error) {
	return s.inviteRepo.ListByCreator(ctx, userID)
}
