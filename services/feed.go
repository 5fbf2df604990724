package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/cursor"
	"github.com/photosunthesis/rate-stuff.online-sub001/repository"
)

// Pager turns a client's PageRequest into a repository Keyset and the
// fetched rows back into a Page. Every feed in the API goes through it:
// the global rating feed, the stuff/tag/user scopes, a rating's comments
// and a user's activities.
//
// One request flows like this:
//
//	PageRequest{Limit: 0, Cursor: "MTcw..."}
//	  -> Limit(0) = DefaultLimit, cursor.Parse -> Keyset{After, Limit+1}
//	  -> repository query under Timeout
//	  -> buildPage: trim the extra row, NextCursor from the last kept row
//
// Errors leave the pager in two shapes only: pkg.ErrNotFound when the
// feed's scope does not exist, pkg.ErrUnavailable for anything the
// datastore did wrong. A bad cursor is never an error.
type Pager struct {
	DefaultLimit int
	MaxLimit     int
	Timeout      time.Duration

	log *zap.Logger
}

// NewPager builds a pager. defaultLimit must not exceed maxLimit; config.Load
// enforces that for the server.
func NewPager(defaultLimit, maxLimit int, timeout time.Duration, log *zap.Logger) *Pager {
	return &Pager{
		DefaultLimit: defaultLimit,
		MaxLimit:     maxLimit,
		Timeout:      timeout,
		log:          log,
	}
}

// Limit clamps a requested page size into [1, MaxLimit]; zero or negative
// means DefaultLimit.
func (p *Pager) Limit(requested int) int {
	if requested <= 0 {
		return p.DefaultLimit
	}
	if requested > p.MaxLimit {
		return p.MaxLimit
	}
	return requested
}

// keyset asks for one row more than the page holds. The extra row only
// tells whether another page exists; it is never returned.
func (p *Pager) keyset(req models.PageRequest) (repository.Keyset, int) {
	limit := p.Limit(req.Limit)
	after, _ := cursor.Parse(req.Cursor)
	return repository.Keyset{After: after, Limit: limit + 1}, limit
}

// unavailable logs a datastore failure and reports it as retryable.
func (p *Pager) unavailable(feed string, err error) error {
	p.log.Warn("feed query failed", zap.String("feed", feed), zap.Error(err))
	return fmt.Errorf("%w: %s feed", pkg.ErrUnavailable, feed)
}

// scopeErr maps a failed scope lookup: a missing parent stays ErrNotFound,
// anything else is a datastore failure.
func (p *Pager) scopeErr(feed string, err error) error {
	if errors.Is(err, pkg.ErrNotFound) {
		return fmt.Errorf("%w: %s", pkg.ErrNotFound, feed)
	}
	return p.unavailable(feed, err)
}

// fetchPage runs fetch under the pager's timeout and builds the page.
// A malformed cursor silently restarts at the first page.
func fetchPage[T models.FeedItem](
	ctx context.Context,
	p *Pager,
	feed string,
	req models.PageRequest,
	fetch func(ctx context.Context, ks repository.Keyset) ([]T, error),
) (*models.Page[T], error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	ks, limit := p.keyset(req)
	rows, err := fetch(ctx, ks)
	if err != nil {
		return nil, p.unavailable(feed, err)
	}
	return buildPage(rows, limit), nil
}

// buildPage trims the look-ahead row. The next cursor points at the last
// row returned and is only set when the look-ahead row existed.
func buildPage[T models.FeedItem](rows []T, limit int) *models.Page[T] {
	if rows == nil {
		rows = []T{}
	}
	if len(rows) <= limit {
		return &models.Page[T]{Items: rows}
	}

	items := rows[:limit]
	createdAt, id := items[limit-1].PageKey()
	return &models.Page[T]{Items: items, NextCursor: cursor.Encode(createdAt, id)}
}
