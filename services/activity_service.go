package services

import (
	"context"
	"time"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/repository"
)

// ActivityService serves a user's own activity feed.
type ActivityService interface {
	List(ctx context.Context, userID string, req models.PageRequest) (*models.Page[models.Activity], error)
	UnreadCount(ctx context.Context, userID string) (*models.UnreadCount, error)
	MarkAllRead(ctx context.Context, userID string) error
}

type activityService struct {
	activityRepo repository.ActivityRepository
	pager        *Pager
}

func NewActivityService(activityRepo repository.ActivityRepository, pager *Pager) ActivityService {
	return &activityService{activityRepo: activityRepo, pager: pager}
}

func (s *activityService) List(ctx context.Context, userID string, req models.PageRequest) (*models.Page[models.Activity], error) {
	return fetchPage(ctx, s.pager, "activities", req, func(ctx context.Context, ks repository.Keyset) ([]models.Activity, error) {
		return s.activityRepo.ListByUser(ctx, userID, ks)
	})
}

func (s *activityService) UnreadCount(ctx context.Context, userID string) (*models.UnreadCount, error) {
	count, err := s.activityRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, s.pager.unavailable("unread activities", err)
	}
	return &models.UnreadCount{Count: count}, nil
}

func (s *activityService) MarkAllRead(ctx context.Context, userID string) error {
	return s.activityRepo.MarkAllRead(ctx, userID, time.Now().UTC())
}
