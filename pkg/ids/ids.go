// Package ids generates identifiers.
//
// Feed items (ratings, comments, activities) get ULIDs whose timestamp is
// the item's created_at, so ids sort the same way as creation time and ties
// on created_at are broken by a unique, monotonic value.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewULID returns a ULID string for an item created at t. Within the same
// millisecond successive ids are strictly increasing.
func NewULID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewUUID returns a random UUID string for non-feed entities.
func NewUUID() string {
	return uuid.NewString()
}
