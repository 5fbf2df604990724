// Package pkg holds utilities shared by every layer. This file defines the
// domain-level sentinel errors; handlers map them to HTTP status codes.
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")

	// ErrUnavailable marks a datastore failure the client may retry.
	ErrUnavailable = errors.New("service unavailable")
	// ErrRateLimited is returned when a keyed limiter rejects a request.
	ErrRateLimited = errors.New("too many requests")
)
