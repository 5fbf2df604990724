package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/photosunthesis/rate-stuff.online-sub001/database"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/repository"
)

// StuffService manages the things being rated.
type StuffService interface {
	Create(ctx context.Context, userID string, req *models.CreateStuffRequest) (*models.Stuff, error)
	Get(ctx context.Context, stuffID string) (*models.Stuff, error)
}

type stuffService struct {
	db        *sql.DB
	stuffRepo repository.StuffRepository
	tagRepo   repository.TagRepository
}

func NewStuffService(db *sql.DB, stuffRepo repository.StuffRepository, tagRepo repository.TagRepository) StuffService {
	return &stuffService{db: db, stuffRepo: stuffRepo, tagRepo: tagRepo}
}

// Create stores the stuff and links its tags, creating unknown tags.
func (s *stuffService) Create(ctx context.Context, userID string, req *models.CreateStuffRequest) (*models.Stuff, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	stuff := &models.Stuff{
		Name:      req.Name,
		CreatedBy: userID,
		Tags:      req.Tags,
	}
	if req.Description != "" {
		stuff.Description = &req.Description
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txStuff := repository.NewSQLiteStuffRepo(tx)
		txTags := repository.NewSQLiteTagRepo(tx)

		if err := txStuff.Create(ctx, stuff); err != nil {
			return err
		}
		for _, name := range req.Tags {
			tag, err := txTags.Upsert(ctx, name)
			if err != nil {
				return err
			}
			if err := txTags.Attach(ctx, stuff.ID, tag.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stuff, nil
}

func (s *stuffService) Get(ctx context.Context, stuffID string) (*models.Stuff, error) {
	stuff, err := s.stuffRepo.GetByID(ctx, stuffID)
	if err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.ListNamesByStuff(ctx, stuffID)
	if err != nil {
		return nil, err
	}
	stuff.Tags = tags
	return stuff, nil
}
