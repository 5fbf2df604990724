package repository

import (
	"context"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
)

// StuffRepository stores rateable things.
type StuffRepository interface {
	Create(ctx context.Context, stuff *models.Stuff) error
	// GetByID returns the stuff with its tag names and rating aggregates.
	GetByID(ctx context.Context, id string) (*models.Stuff, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// TagRepository stores tags and their stuff links.
type TagRepository interface {
	// Upsert returns the tag named name, creating it if needed.
	Upsert(ctx context.Context, name string) (*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	Attach(ctx context.Context, stuffID, tagID string) error
	ListNamesByStuff(ctx context.Context, stuffID string) ([]string, error)
}
