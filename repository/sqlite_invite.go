package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/photosunthesis/rate-stuff.online-sub001/database"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
)

type sqliteInviteRepo struct {
	db database.TxQuerier
}

func NewSQLiteInviteRepo(db database.TxQuerier) InviteRepository {
	return &sqliteInviteRepo{db: db}
}

func (r *sqliteInviteRepo) Create(ctx context.Context, invite *models.Invite) error {
	var expiresAt any
	if invite.ExpiresAt != nil {
		expiresAt = invite.ExpiresAt.UTC()
	}

	query := `
		INSERT INTO invites (code, created_by, max_uses, expires_at)
		VALUES (?, ?, ?, ?)
		RETURNING uses, created_at`

	err := r.db.QueryRowContext(ctx, query,
		invite.Code, invite.CreatedBy, invite.MaxUses, expiresAt,
	).Scan(&invite.Uses, &invite.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: invite code", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (r *sqliteInviteRepo) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	query := `
		SELECT code, created_by, max_uses, uses, expires_at, created_at
		FROM invites WHERE code = ?`

	inv := &models.Invite{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&inv.Code, &inv.CreatedBy, &inv.MaxUses, &inv.Uses, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return inv, nil
}

func (r *sqliteInviteRepo) ListByCreator(ctx context.Context, userID string) ([]models.Invite, error) {
	query := `
		SELECT code, created_by, max_uses, uses, expires_at, created_at
		FROM invites WHERE created_by = ?
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	invites := []models.Invite{}
	for rows.Next() {
		var inv models.Invite
		if err := rows.Scan(&inv.Code, &inv.CreatedBy, &inv.MaxUses, &inv.Uses, &inv.ExpiresAt, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (r *sqliteInviteRepo) IncrementUses(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invites SET uses = uses + 1
		WHERE code = ? AND (max_uses = 0 OR uses < max_uses)`, code)
	if err != nil {
		return fmt.Errorf("failed to use invite: %w", err)
	}
	if err := rowsAffectedOrNotFound(res); err != nil {
		if errors.Is(err, errNoRows) {
			return pkg.ErrNotFound
		}
		return fmt.Errorf("failed to use invite: %w", err)
	}
	return nil
}
