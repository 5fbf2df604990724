package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/photosunthesis/rate-stuff.online-sub001/database"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "rso.db"), database.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *database.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, NewSQLiteUserRepo(db.Conn).Create(context.Background(), u))
	return u
}

func seedStuff(t *testing.T, db *database.DB, owner *models.User, name string) *models.Stuff {
	t.Helper()
	s := &models.Stuff{Name: name, CreatedBy: owner.ID}
	require.NoError(t, NewSQLiteStuffRepo(db.Conn).Create(context.Background(), s))
	return s
}
