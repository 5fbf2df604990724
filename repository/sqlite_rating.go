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

type sqliteRatingRepo struct {
	db database.TxQuerier
}

func NewSQLiteRatingRepo(db database.TxQuerier) RatingRepository {
	return &sqliteRatingRepo{db: db}
}

const ratingColumns = `
		SELECT r.id, r.stuff_id, s.name, r.user_id, u.username, r.score, r.content,
			COALESCE((SELECT SUM(v.value) FROM votes v WHERE v.rating_id = r.id), 0),
			r.created_at, r.deleted_at
		FROM ratings r
		JOIN stuff s ON s.id = r.stuff_id
		JOIN users u ON u.id = r.user_id`

func (r *sqliteRatingRepo) Create(ctx context.Context, rating *models.Rating) error {
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}
	if rating.ID == "" {
		rating.ID = ids.NewULID(rating.CreatedAt)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (id, stuff_id, user_id, score, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rating.ID, rating.StuffID, rating.UserID, rating.Score, rating.Content, toNanos(rating.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

func (r *sqliteRatingRepo) GetByID(ctx context.Context, id string) (*models.Rating, error) {
	query := ratingColumns + `
		WHERE r.id = ? AND r.deleted_at IS NULL`

	rating, err := scanRating(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return rating, nil
}

func (r *sqliteRatingRepo) List(ctx context.Context, filter RatingFilter, ks Keyset) ([]models.Rating, error) {
	query := ratingColumns + `
		WHERE 1 = 1`
	var args []any

	if filter.StuffID != "" {
		query += ` AND r.stuff_id = ?`
		args = append(args, filter.StuffID)
	}
	if filter.UserID != "" {
		query += ` AND r.user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.TagID != "" {
		query += ` AND r.stuff_id IN (SELECT st.stuff_id FROM stuff_tags st WHERE st.tag_id = ?)`
		args = append(args, filter.TagID)
	}

	query, args = appendKeyset(query, args, "r", ks)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]models.Rating, 0, ks.Limit)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, *rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ratings: %w", err)
	}
	return ratings, nil
}

func (r *sqliteRatingRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ratings SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, toNanos(at), id)
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	if err := rowsAffectedOrNotFound(res); err != nil {
		if errors.Is(err, errNoRows) {
			return pkg.ErrNotFound
		}
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRating(s rowScanner) (*models.Rating, error) {
	var (
		rating    models.Rating
		createdAt int64
		deletedAt sql.NullInt64
	)
	err := s.Scan(
		&rating.ID, &rating.StuffID, &rating.StuffName, &rating.UserID, &rating.Username,
		&rating.Score, &rating.Content, &rating.VoteScore, &createdAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	rating.CreatedAt = fromNanos(createdAt)
	rating.DeletedAt = fromNullNanos(deletedAt)
	return &rating, nil
}
