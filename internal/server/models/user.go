// Package models defines the server-side persistence models.
package models

import "time"

// User is an account keyed by its verified phone number. Users are created
// implicitly on the first successful verification.
type User struct {
	ID        string
	Phone     string
	CreatedAt time.Time
}
