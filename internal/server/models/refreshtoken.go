package models

import "time"

// RefreshToken is one server-stored opaque refresh token. Rotated on every
// refresh and deleted on sign-out.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
