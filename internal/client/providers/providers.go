// Package providers declares the capability contracts the client core depends
// on. The backend is opaque behind these three interfaces; production
// implementations live in providers/httpapi and test doubles next to each
// consumer.
package providers

import (
	"context"

	"github.com/clipfeed/clipfeed/internal/client/models"
)

// CredentialProvider drives phone-number verification and owns the persisted
// session.
type CredentialProvider interface {
	// StartPhoneVerification begins verification for an E.164 number and
	// returns an opaque verification id.
	StartPhoneVerification(ctx context.Context, e164Number string) (string, error)

	// ConfirmVerification confirms a pending verification with the code the
	// user received.
	ConfirmVerification(ctx context.Context, verificationID, code string) error

	// SignOut ends the current session.
	SignOut(ctx context.Context) error

	// CurrentUserID returns the session user id, or "" when signed out.
	CurrentUserID() string

	// OnSessionChange registers fn to be called whenever the session appears
	// or disappears. fn is invoked immediately with the current state, then on
	// every change. The returned function releases the registration; it is
	// safe to call more than once.
	OnSessionChange(fn func(authenticated bool)) (unsubscribe func())
}

// NewVideoRecord is the payload for appending one video metadata record.
type NewVideoRecord struct {
	URL            string
	UserID         string
	Caption        string
	CreatedAtEpoch int64
}

// BlobStore uploads binary content and returns a retrievable locator URL.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, destinationKey, contentType string) (string, error)
}

// DocumentStore is the append-only feed of video metadata records.
type DocumentStore interface {
	AppendRecord(ctx context.Context, rec NewVideoRecord) error
	QueryRecent(ctx context.Context, limit int) ([]models.VideoRecord, error)
}
