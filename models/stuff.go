package models

import (
	"strings"
	"time"
)

// Stuff is anything that can be rated.
type Stuff struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	CreatedBy    string    `json:"created_by"`
	Tags         []string  `json:"tags"`
	RatingCount  int       `json:"rating_count"`
	AverageScore *float64  `json:"average_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateStuffRequest creates a stuff with up to ten tags.
type CreateStuffRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=1000"`
	Tags        []string `json:"tags" validate:"max=10,dive,min=1,max=32,username"`
}

// Validate trims the payload and lower-cases and de-duplicates tags.
func (r *CreateStuffRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Tags = NormalizeTags(r.Tags)
	return validateStruct(r)
}

// NormalizeTags lower-cases, trims and de-duplicates tag names, dropping
// empty ones and keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = NormalizeTag(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// NormalizeTag is the canonical form used for storage and lookup.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Tag is a lower-case label attached to stuff.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
