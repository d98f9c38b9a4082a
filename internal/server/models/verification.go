package models

import "time"

// PhoneVerification is one outstanding verification: the bcrypt hash of the
// SMS code, its expiry, and how many confirm attempts were consumed.
type PhoneVerification struct {
	ID        string
	Phone     string
	CodeHash  string
	Attempts  int
	Confirmed bool
	SentAt    time.Time
	ExpiresAt time.Time
}
