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

// CommentService writes comments and serves a rating's comment feed.
type CommentService interface {
	Create(ctx context.Context, userID, ratingID string, req *models.CreateCommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, userID, commentID string) error
	ListByRating(ctx context.Context, ratingID string, req models.PageRequest) (*models.Page[models.Comment], error)
}

type commentService struct {
	db          *sql.DB
	commentRepo repository.CommentRepository
	ratingRepo  repository.RatingRepository
	pager       *Pager
	notifier    ws.Notifier
}

func NewCommentService(
	db *sql.DB,
	commentRepo repository.CommentRepository,
	ratingRepo repository.RatingRepository,
	pager *Pager,
	notifier ws.Notifier,
) CommentService {
	return &commentService{
		db:          db,
		commentRepo: commentRepo,
		ratingRepo:  ratingRepo,
		pager:       pager,
		notifier:    notifier,
	}
}

// Create stores the comment and, when the commenter is not the rating's
// owner, an activity for the owner in the same transaction. The owner is
// signalled after commit.
func (s *commentService) Create(ctx context.Context, userID, ratingID string, req *models.CreateCommentRequest) (*models.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	comment := &models.Comment{
		RatingID: ratingID,
		UserID:   userID,
		Content:  req.Content,
	}
	var recipient string

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		rating, err := repository.NewSQLiteRatingRepo(tx).GetByID(ctx, ratingID)
		if err != nil {
			return err
		}

		if err := repository.NewSQLiteCommentRepo(tx).Create(ctx, comment); err != nil {
			return err
		}

		if rating.UserID == userID {
			return nil
		}

		activity := &models.Activity{
			UserID:    rating.UserID,
			ActorID:   userID,
			Type:      models.ActivityComment,
			RatingID:  ratingID,
			CommentID: &comment.ID,
			CreatedAt: comment.CreatedAt,
		}
		if err := repository.NewSQLiteActivityRepo(tx).Create(ctx, activity); err != nil {
			return err
		}
		recipient = rating.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifyAll(s.notifier, recipient)

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *commentService) Delete(ctx context.Context, userID, commentID string) error {
	var recipients []string

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txComments := repository.NewSQLiteCommentRepo(tx)

		comment, err := txComments.GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		if comment.UserID != userID {
			return fmt.Errorf("%w: not your comment", pkg.ErrForbidden)
		}

		now := time.Now().UTC()
		if err := txComments.SoftDelete(ctx, commentID, now); err != nil {
			return err
		}

		recipients, err = repository.NewSQLiteActivityRepo(tx).SoftDeleteByComment(ctx, commentID, now)
		return err
	})
	if err != nil {
		return err
	}

	notifyAll(s.notifier, recipients...)
	return nil
}

// ListByRating returns pkg.ErrNotFound when the rating is missing or
// deleted.
func (s *commentService) ListByRating(ctx context.Context, ratingID string, req models.PageRequest) (*models.Page[models.Comment], error) {
	if _, err := s.ratingRepo.GetByID(ctx, ratingID); err != nil {
		return nil, s.pager.scopeErr("rating", err)
	}

	return fetchPage(ctx, s.pager, "comments", req, func(ctx context.Context, ks repository.Keyset) ([]models.Comment, error) {
		return s.commentRepo.ListByRating(ctx, ratingID, ks)
	})
}
