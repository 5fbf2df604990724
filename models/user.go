package models

import (
	"strings"
	"time"
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  *string   `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUserRequest is the registration payload.
type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32,username"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"max=32"`
	InviteCode  string `json:"invite_code" validate:"max=64"`
}

// Validate trims the payload and checks it. Passwords are capped at 72
// bytes because bcrypt ignores anything longer.
func (r *CreateUserRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.InviteCode = strings.TrimSpace(r.InviteCode)
	return validateStruct(r)
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	return validateStruct(r)
}

// RefreshRequest carries a refresh token for rotation or logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (r *RefreshRequest) Validate() error {
	return validateStruct(r)
}

// AuthTokens is returned by register, login and refresh.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}
