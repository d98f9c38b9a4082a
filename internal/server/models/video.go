package models

import "time"

// Video is one feed record. Immutable once created.
type Video struct {
	ID        string
	URL       string
	UserID    string
	Caption   string
	CreatedAt time.Time
}
