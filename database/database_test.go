package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := `
-- leading comment; with a semicolon
CREATE TABLE a (x TEXT DEFAULT 'a;b');
INSERT INTO a VALUES ('it''s');
SELECT 1`

	stmts := splitStatements(sql)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE a (x TEXT DEFAULT 'a;b')", stmts[0])
	assert.Equal(t, "INSERT INTO a VALUES ('it''s')", stmts[1])
	assert.Equal(t, "SELECT 1", stmts[2])
}

func TestNewAppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rso.db")

	db, err := New(path, Migrations())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// second open must not re-run 001_init.sql
	db, err = New(path, Migrations())
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	var name string
	require.NoError(t, db.Conn.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='activities'",
	).Scan(&name))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "rso.db"), Migrations())
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	err = WithTx(context.Background(), db.Conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO tags (id, name) VALUES ('t1', 'coffee')"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM tags").Scan(&count))
	assert.Zero(t, count)
}
