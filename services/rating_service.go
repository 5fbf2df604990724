package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/photosunthesis/rate-stuff.online-sub001/database"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/repository"
	"github.com/photosunthesis/rate-stuff.online-sub001/ws"
)

// RatingService writes ratings and serves the rating feeds.
//
// Every List method returns pkg.ErrNotFound when its scope (stuff, tag,
// user) does not exist, and an empty page when the scope exists but holds
// no visible ratings.
type RatingService interface {
	Create(ctx context.Context, userID, stuffID string, req *models.CreateRatingRequest) (*models.Rating, error)
	Get(ctx context.Context, ratingID string) (*models.Rating, error)
	Delete(ctx context.Context, userID, ratingID string) error

	ListAll(ctx context.Context, req models.PageRequest) (*models.Page[models.Rating], error)
	ListByStuff(ctx context.Context, stuffID string, req models.PageRequest) (*models.Page[models.Rating], error)
	ListByTag(ctx context.Context, tagName string, req models.PageRequest) (*models.Page[models.Rating], error)
	ListByUser(ctx context.Context, username string, req models.PageRequest) (*models.Page[models.Rating], error)
}

type ratingService struct {
	db         *sql.DB
	ratingRepo repository.RatingRepository
	stuffRepo  repository.StuffRepository
	tagRepo    repository.TagRepository
	userRepo   repository.UserRepository
	pager      *Pager
	notifier   ws.Notifier
}

func NewRatingService(
	db *sql.DB,
	ratingRepo repository.RatingRepository,
	stuffRepo repository.StuffRepository,
	tagRepo repository.TagRepository,
	userRepo repository.UserRepository,
	pager *Pager,
	notifier ws.Notifier,
) RatingService {
	return &ratingService{
		db:         db,
		ratingRepo: ratingRepo,
		stuffRepo:  stuffRepo,
		tagRepo:    tagRepo,
		userRepo:   userRepo,
		pager:      pager,
		notifier:   notifier,
	}
}

func (s *ratingService) Create(ctx context.Context, userID, stuffID string, req *models.CreateRatingRequest) (*models.Rating, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	exists, err := s.stuffRepo.Exists(ctx, stuffID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: stuff", pkg.ErrNotFound)
	}

	rating := &models.Rating{
		StuffID: stuffID,
		UserID:  userID,
		Score:   req.Score,
		Content: req.Content,
	}
	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		return nil, err
	}

	// re-read for the joined stuff name and username
	return s.ratingRepo.GetByID(ctx, rating.ID)
}

func (s *ratingService) Get(ctx context.Context, ratingID string) (*models.Rating, error) {
	return s.ratingRepo.GetByID(ctx, ratingID)
}

// Delete soft-deletes the rating and every activity about it. Recipients
// of those activities are told to re-fetch.
func (s *ratingService) Delete(ctx context.Context, userID, ratingID string) error {
	var recipients []string

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txRatings := repository.NewSQLiteRatingRepo(tx)

		rating, err := txRatings.GetByID(ctx, ratingID)
		if err != nil {
			return err
		}
		if rating.UserID != userID {
			return fmt.Errorf("%w: not your rating", pkg.ErrForbidden)
		}

		now := time.Now().UTC()
		if err := txRatings.SoftDelete(ctx, ratingID, now); err != nil {
			return err
		}

		recipients, err = repository.NewSQLiteActivityRepo(tx).SoftDeleteByRating(ctx, ratingID, now)
		return err
	})
	if err != nil {
		return err
	}

	notifyAll(s.notifier, recipients...)
	return nil
}

func (s *ratingService) ListAll(ctx context.Context, req models.PageRequest) (*models.Page[models.Rating], error) {
	return s.list(ctx, "ratings", repository.RatingFilter{}, req)
}

func (s *ratingService) ListByStuff(ctx context.Context, stuffID string, req models.PageRequest) (*models.Page[models.Rating], error) {
	exists, err := s.stuffRepo.Exists(ctx, stuffID)
	if err != nil {
		return nil, s.pager.unavailable("stuff ratings", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: stuff", pkg.ErrNotFound)
	}
	return s.list(ctx, "stuff ratings", repository.RatingFilter{StuffID: stuffID}, req)
}

func (s *ratingService) ListByTag(ctx context.Context, tagName string, req models.PageRequest) (*models.Page[models.Rating], error) {
	tag, err := s.tagRepo.GetByName(ctx, models.NormalizeTag(tagName))
	if err != nil {
		return nil, s.pager.scopeErr("tag", err)
	}
	return s.list(ctx, "tag ratings", repository.RatingFilter{TagID: tag.ID}, req)
}

func (s *ratingService) ListByUser(ctx context.Context, username string, req models.PageRequest) (*models.Page[models.Rating], error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, s.pager.scopeErr("user", err)
	}
	return s.list(ctx, "user ratings", repository.RatingFilter{UserID: user.ID}, req)
}

func (s *ratingService) list(ctx context.Context, feed string, filter repository.RatingFilter, req models.PageRequest) (*models.Page[models.Rating], error) {
	return fetchPage(ctx, s.pager, feed, req, func(ctx context.Context, ks repository.Keyset) ([]models.Rating, error) {
		return s.ratingRepo.List(ctx, filter, ks)
	})
}
