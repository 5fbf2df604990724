package repository

import (
	"fmt"
	"strings"

	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/cursor"
)

// Keyset selects one page of a feed table: the rows strictly after After in
// (created_at DESC, id DESC) order, at most Limit of them. A nil After
// starts at the newest row.
type Keyset struct {
	After *cursor.Position
	Limit int
}

// appendKeyset completes a feed query whose WHERE clause is open. It adds
// the soft-delete filter, the cursor predicate, the feed order and the
// limit, qualified by the table alias.
//
// The predicate compares by value, never by looking up the cursor row, so
// a cursor stays valid after its row is deleted, and rows sharing a
// created_at are split by id without skips or repeats.
func appendKeyset(query string, args []any, alias string, ks Keyset) (string, []any) {
	var b strings.Builder
	b.WriteString(query)

	fmt.Fprintf(&b, "\n\t\tAND %s.deleted_at IS NULL", alias)

	if ks.After != nil {
		fmt.Fprintf(&b, "\n\t\tAND (%[1]s.created_at < ? OR (%[1]s.created_at = ? AND %[1]s.id < ?))", alias)
		ts := toNanos(ks.After.CreatedAt)
		args = append(args, ts, ts, ks.After.ID)
	}

	fmt.Fprintf(&b, "\n\t\tORDER BY %[1]s.created_at DESC, %[1]s.id DESC\n\t\tLIMIT ?", alias)
	args = append(args, ks.Limit)

	return b.String(), args
}
