package models

import "time"

// Invite is a registration code. MaxUses 0 means unlimited, a nil ExpiresAt
// never expires.
type Invite struct {
	Code      string     `json:"code"`
	CreatedBy *string    `json:"created_by"`
	MaxUses   int        `json:"max_uses"`
	Uses      int        `json:"uses"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Usable reports whether the invite can still admit a new user at now.
func (i *Invite) Usable(now time.Time) bool {
	if i.ExpiresAt != nil && !now.Before(*i.ExpiresAt) {
		return false
	}
	return i.MaxUses == 0 || i.Uses < i.MaxUses
}

// CreateInviteRequest creates an invite; ExpiresIn is in minutes, 0 = never.
type CreateInviteRequest struct {
	MaxUses   int `json:"max_uses" validate:"gte=0,lte=1000"`
	ExpiresIn int `json:"expires_in" validate:"gte=0,lte=525600"`
}

func (r *CreateInviteRequest) Validate() error {
	return validateStruct(r)
}
