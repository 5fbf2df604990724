// Package repository is the datastore access layer. Each repository is an
// interface with a SQLite implementation taking a database.TxQuerier, so
// the same code runs on the pool or inside database.WithTx.
package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Feed tables store timestamps as INTEGER Unix nanoseconds.
func toNanos(t time.Time) int64 {
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func fromNullNanos(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromNanos(n.Int64)
	return &t
}

// rowsAffectedOrNotFound maps a zero-row UPDATE/DELETE to errNoRows so
// callers can translate it to pkg.ErrNotFound.
func rowsAffectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNoRows
	}
	return nil
}

var errNoRows = errors.New("no rows affected")
