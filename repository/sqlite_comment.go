package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/photosunthesis/rate-stuff.online-sub001/database"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/ids"
)

type sqliteCommentRepo struct {
	db database.TxQuerier
}

func NewSQLiteCommentRepo(db database.TxQuerier) CommentRepository {
	return &sqliteCommentRepo{db: db}
}

const commentColumns = `
		SELECT c.id, c.rating_id, c.user_id, u.username, c.content, c.created_at, c.deleted_at
		FROM comments c
		JOIN users u ON u.id = c.user_id`

func (r *sqliteCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	if comment.ID == "" {
		comment.ID = ids.NewULID(comment.CreatedAt)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO comments (id, rating_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		comment.ID, comment.RatingID, comment.UserID, comment.Content, toNanos(comment.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *sqliteCommentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := commentColumns + `
		WHERE c.id = ? AND c.deleted_at IS NULL`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

func (r *sqliteCommentRepo) ListByRating(ctx context.Context, ratingID string, ks Keyset) ([]models.Comment, error) {
	query, args := appendKeyset(commentColumns+`
		WHERE c.rating_id = ?`, []any{ratingID}, "c", ks)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0, ks.Limit)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

func (r *sqliteCommentRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, toNanos(at), id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if err := rowsAffectedOrNotFound(res); err != nil {
		if errors.Is(err, errNoRows) {
			return pkg.ErrNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

func scanComment(s rowScanner) (*models.Comment, error) {
	var (
		comment   models.Comment
		createdAt int64
		deletedAt sql.NullInt64
	)
	err := s.Scan(
		&comment.ID, &comment.RatingID, &comment.UserID, &comment.Username,
		&comment.Content, &createdAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	comment.CreatedAt = fromNanos(createdAt)
	comment.DeletedAt = fromNullNanos(deletedAt)
	return &comment, nil
}
