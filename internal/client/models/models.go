// Package models defines the client-side state and read models: the
// authentication session, an in-flight upload attempt, and the video record
// consumed by the feed.
package models

import "time"

// SessionPhase is the tagged authentication state. Exactly one phase is
// active at a time; illegal flag combinations are unrepresentable.
type SessionPhase int

const (
	// SessionUnauthenticated is the initial phase: no verification pending.
	SessionUnauthenticated SessionPhase = iota
	// SessionCodeSent means a verification was started and a code is awaited.
	SessionCodeSent
	// SessionAuthenticated means the verification was confirmed (or a session
	// was restored by the credential provider).
	SessionAuthenticated
)

func (p SessionPhase) String() string {
	switch p {
	case SessionCodeSent:
		return "code_sent"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session is the current authentication attempt and outcome.
//
// Invariants:
//   - Phase == SessionCodeSent implies VerificationID != "".
//   - Loading is true only while a provider call (or simulated delay) is in
//     flight.
type Session struct {
	Phase          SessionPhase
	PhoneNumber    string
	VerificationID string
	Loading        bool
	Err            string
}

// UploadPhase tracks one video submission through its two-step save.
type UploadPhase int

const (
	UploadIdle UploadPhase = iota
	UploadingBlob
	SavingMetadata
	UploadSucceeded
	UploadFailed
)

func (p UploadPhase) String() string {
	switch p {
	case UploadingBlob:
		return "uploading_blob"
	case SavingMetadata:
		return "saving_metadata"
	case UploadSucceeded:
		return "succeeded"
	case UploadFailed:
		return "failed"
	default:
		return "idle"
	}
}

// UploadAttempt is one in-flight video submission. Each Submit call owns its
// own attempt value; attempts are never shared between calls.
//
// Invariant: Phase == UploadSucceeded implies both the blob upload and the
// metadata write completed, and LocatorURL is set.
type UploadAttempt struct {
	FileName   string
	Caption    string
	Phase      UploadPhase
	LocatorURL string
	Err        string
}

// VideoRecord is the immutable read model produced by the document store and
// consumed by the feed.
type VideoRecord struct {
	ID        string
	URL       string
	UserID    string
	Caption   string
	CreatedAt time.Time
}
