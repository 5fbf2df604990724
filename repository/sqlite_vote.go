package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/photosunthesis/rate-stuff.online-sub001/database"
)

type sqliteVoteRepo struct {
	db database.TxQuerier
}

func NewSQLiteVoteRepo(db database.TxQuerier) VoteRepository {
	return &sqliteVoteRepo{db: db}
}

func (r *sqliteVoteRepo) Get(ctx context.Context, ratingID, userID string) (int, error) {
	var value int
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM votes WHERE rating_id = ? AND user_id = ?`, ratingID, userID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get vote: %w", err)
	}
	return value, nil
}

func (r *sqliteVoteRepo) Set(ctx context.Context, ratingID, userID string, value int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO votes (rating_id, user_id, value) VALUES (?, ?, ?)
		ON CONFLICT(rating_id, user_id) DO UPDATE SET value = excluded.value`,
		ratingID, userID, value)
	if err != nil {
		return fmt.Errorf("failed to set vote: %w", err)
	}
	return nil
}

func (r *sqliteVoteRepo) Delete(ctx context.Context, ratingID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM votes WHERE rating_id = ? AND user_id = ?`, ratingID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

func (r *sqliteVoteRepo) Score(ctx context.Context, ratingID string) (int, error) {
	var score int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(value), 0) FROM votes WHERE rating_id = ?`, ratingID).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("failed to sum votes: %w", err)
	}
	return score, nil
}
