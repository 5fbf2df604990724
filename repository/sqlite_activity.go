package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/photosunthesis/rate-stuff.online-sub001/database"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/ids"
)

type sqliteActivityRepo struct {
	db database.TxQuerier
}

func NewSQLiteActivityRepo(db database.TxQuerier) ActivityRepository {
	return &sqliteActivityRepo{db: db}
}

func (r *sqliteActivityRepo) Create(ctx context.Context, a *models.Activity) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.ID == "" {
		a.ID = ids.NewULID(a.CreatedAt)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activities (id, user_id, actor_id, type, rating_id, comment_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.ActorID, a.Type, a.RatingID, a.CommentID, toNanos(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (r *sqliteActivityRepo) ListByUser(ctx context.Context, userID string, ks Keyset) ([]models.Activity, error) {
	query, args := appendKeyset(`
		SELECT a.id, a.user_id, a.actor_id, u.username, a.type, a.rating_id, a.comment_id,
			a.read_at IS NOT NULL, a.created_at
		FROM activities a
		JOIN users u ON u.id = a.actor_id
		WHERE a.user_id = ?`, []any{userID}, "a", ks)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]models.Activity, 0, ks.Limit)
	for rows.Next() {
		var (
			a         models.Activity
			createdAt int64
		)
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.ActorID, &a.ActorUsername, &a.Type, &a.RatingID, &a.CommentID,
			&a.Read, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.CreatedAt = fromNanos(createdAt)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}
	return activities, nil
}

func (r *sqliteActivityRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM activities
		WHERE user_id = ? AND read_at IS NULL AND deleted_at IS NULL`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread activities: %w", err)
	}
	return count, nil
}

func (r *sqliteActivityRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE activities SET read_at = ?
		WHERE user_id = ? AND read_at IS NULL AND deleted_at IS NULL`, toNanos(at), userID)
	if err != nil {
		return fmt.Errorf("failed to mark activities read: %w", err)
	}
	return nil
}

func (r *sqliteActivityRepo) SoftDeleteByRating(ctx context.Context, ratingID string, at time.Time) ([]string, error) {
	return r.softDelete(ctx, `rating_id = ?`, toNanos(at), ratingID)
}

func (r *sqliteActivityRepo) SoftDeleteByComment(ctx context.Context, commentID string, at time.Time) ([]string, error) {
	return r.softDelete(ctx, `comment_id = ?`, toNanos(at), commentID)
}

func (r *sqliteActivityRepo) SoftDeleteVote(ctx context.Context, ratingID, actorID string, at time.Time) ([]string, error) {
	return r.softDelete(ctx, `rating_id = ? AND actor_id = ? AND type = 'vote'`, toNanos(at), ratingID, actorID)
}

func (r *sqliteActivityRepo) softDelete(ctx context.Context, where string, at int64, args ...any) ([]string, error) {
	query := `
		UPDATE activities SET deleted_at = ?
		WHERE deleted_at IS NULL AND ` + where + `
		RETURNING user_id`

	rows, err := r.db.QueryContext(ctx, query, append([]any{at}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete activities: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var recipients []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan activity recipient: %w", err)
		}
		if !seen[userID] {
			seen[userID] = true
			recipients = append(recipients, userID)
		}
	}
	return recipients, rows.Err()
}

