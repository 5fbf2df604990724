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

// VoteService casts and withdraws votes on ratings.
type VoteService interface {
	// Vote sets the caller's vote to req.Value. Sending the current value
	// again withdraws the vote.
	Vote(ctx context.Context, userID, ratingID string, req *models.VoteRequest) (*models.VoteResult, error)
}

type voteService struct {
	db       *sql.DB
	notifier ws.Notifier
}

func NewVoteService(db *sql.DB, notifier ws.Notifier) VoteService {
	return &voteService{db: db, notifier: notifier}
}

// Vote keeps at most one live vote activity per (rating, voter): a changed
// vote replaces it, a withdrawn vote removes it. Self-votes count toward
// the score but create no activity.
func (s *voteService) Vote(ctx context.Context, userID, ratingID string, req *models.VoteRequest) (*models.VoteResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	result := &models.VoteResult{RatingID: ratingID}
	var recipients []string

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		rating, err := repository.NewSQLiteRatingRepo(tx).GetByID(ctx, ratingID)
		if err != nil {
			return err
		}

		votes := repository.NewSQLiteVoteRepo(tx)
		activities := repository.NewSQLiteActivityRepo(tx)
		now := time.Now().UTC()

		current, err := votes.Get(ctx, ratingID, userID)
		if err != nil {
			return err
		}

		if current == req.Value {
			if err := votes.Delete(ctx, ratingID, userID); err != nil {
				return err
			}
			recipients, err = activities.SoftDeleteVote(ctx, ratingID, userID, now)
			if err != nil {
				return err
			}
		} else {
			if err := votes.Set(ctx, ratingID, userID, req.Value); err != nil {
				return err
			}
			result.Value = req.Value

			if rating.UserID != userID {
				if current != 0 {
					if _, err := activities.SoftDeleteVote(ctx, ratingID, userID, now); err != nil {
						return err
					}
				}
				if err := activities.Create(ctx, &models.Activity{
					UserID:    rating.UserID,
					ActorID:   userID,
					Type:      models.ActivityVote,
					RatingID:  ratingID,
					CreatedAt: now,
				}); err != nil {
					return err
				}
				recipients = []string{rating.UserID}
			}
		}

		result.VoteScore, err = votes.Score(ctx, ratingID)
		return err
	})
	if err != nil {
		return nil, err
	}

	notifyAll(s.notifier, recipients...)
	return result, nil
}
