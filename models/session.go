package models

import "time"

// Session is a refresh-token session. Access tokens are short lived JWTs;
// sessions let a user obtain new ones and let the server revoke them.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
