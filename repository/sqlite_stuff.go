package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/photosunthesis/rate-stuff.online-sub001/database"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/ids"
)

type sqliteStuffRepo struct {
	db database.TxQuerier
}

func NewSQLiteStuffRepo(db database.TxQuerier) StuffRepository {
	return &sqliteStuffRepo{db: db}
}

func (r *sqliteStuffRepo) Create(ctx context.Context, stuff *models.Stuff) error {
	if stuff.ID == "" {
		stuff.ID = ids.NewUUID()
	}

	query := `
		INSERT INTO stuff (id, name, description, created_by)
		VALUES (?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		stuff.ID, stuff.Name, stuff.Description, stuff.CreatedBy,
	).Scan(&stuff.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create stuff: %w", err)
	}
	return nil
}

func (r *sqliteStuffRepo) GetByID(ctx context.Context, id string) (*models.Stuff, error) {
	query := `
		SELECT s.id, s.name, s.description, s.created_by, s.created_at,
			(SELECT COUNT(*) FROM ratings r WHERE r.stuff_id = s.id AND r.deleted_at IS NULL),
			(SELECT AVG(r.score) FROM ratings r WHERE r.stuff_id = s.id AND r.deleted_at IS NULL)
		FROM stuff s WHERE s.id = ?`

	stuff := &models.Stuff{}
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&stuff.ID, &stuff.Name, &stuff.Description, &stuff.CreatedBy, &stuff.CreatedAt,
		&stuff.RatingCount, &avg,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stuff: %w", err)
	}
	if avg.Valid {
		stuff.AverageScore = &avg.Float64
	}
	return stuff, nil
}

func (r *sqliteStuffRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM stuff WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check stuff: %w", err)
	}
	return exists, nil
}

type sqliteTagRepo struct {
	db database.TxQuerier
}

func NewSQLiteTagRepo(db database.TxQuerier) TagRepository {
	return &sqliteTagRepo{db: db}
}

func (r *sqliteTagRepo) Upsert(ctx context.Context, name string) (*models.Tag, error) {
	// the no-op update makes RETURNING yield the existing row on conflict
	query := `
		INSERT INTO tags (id, name) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET name = excluded.name
		RETURNING id, name`

	tag := &models.Tag{}
	if err := r.db.QueryRowContext(ctx, query, ids.NewUUID(), name).Scan(&tag.ID, &tag.Name); err != nil {
		return nil, fmt.Errorf("failed to upsert tag: %w", err)
	}
	return tag, nil
}

func (r *sqliteTagRepo) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE name = ?`, name).Scan(&tag.ID, &tag.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return tag, nil
}

func (r *sqliteTagRepo) Attach(ctx context.Context, stuffID, tagID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO stuff_tags (stuff_id, tag_id) VALUES (?, ?)`, stuffID, tagID)
	if err != nil {
		return fmt.Errorf("failed to attach tag: %w", err)
	}
	return nil
}

func (r *sqliteTagRepo) ListNamesByStuff(ctx context.Context, stuffID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.name FROM tags t
		JOIN stuff_tags st ON st.tag_id = t.id
		WHERE st.stuff_id = ?
		ORDER BY t.name`, stuffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
