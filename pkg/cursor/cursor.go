// Package cursor encodes feed positions as opaque continuation tokens.
//
// A token names the last item a client has seen by its (created_at, id)
// pair. The next page is everything strictly after that pair in
// (created_at DESC, id DESC) order, so tokens stay valid when the item
// they were derived from is deleted.
package cursor

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalid is returned by Decode for any malformed token. Callers treat it
// as "no cursor" and serve the first page.
var ErrInvalid = errors.New("invalid cursor")

const separator = ":"

// Position is a decoded cursor.
type Position struct {
	CreatedAt time.Time
	ID        string
}

// Encode returns the token for the item at (createdAt, id). The timestamp
// keeps full nanosecond precision.
func Encode(createdAt time.Time, id string) string {
	raw := strconv.FormatInt(createdAt.UnixNano(), 10) + separator + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Token re-encodes p.
func (p Position) Token() string {
	return Encode(p.CreatedAt, p.ID)
}

// Decode parses a token produced by Encode.
func Decode(token string) (Position, error) {
	if token == "" {
		return Position{}, ErrInvalid
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Position{}, ErrInvalid
	}

	// ids never contain the separator, but split on the first one anyway
	tsPart, id, ok := strings.Cut(string(raw), separator)
	if !ok || id == "" {
		return Position{}, ErrInvalid
	}

	// signed: pre-1970 timestamps encode as negative nanos
	nanos, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return Position{}, ErrInvalid
	}

	return Position{CreatedAt: time.Unix(0, nanos).UTC(), ID: id}, nil
}

// Parse decodes token and reports whether it was usable. An empty or
// malformed token yields (nil, false).
func Parse(token string) (*Position, bool) {
	p, err := Decode(token)
	if err != nil {
		return nil, false
	}
	return &p, true
}
