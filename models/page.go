package models

import "time"

// FeedItem is anything served through cursor pagination.
type FeedItem interface {
	PageKey() (createdAt time.Time, id string)
}

// Page is one slice of a feed. NextCursor is empty at the end of the feed.
type Page[T FeedItem] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// PageRequest is the client's paging input. Cursor may be empty or garbage;
// both mean "first page".
type PageRequest struct {
	Cursor string
	Limit  int
}
