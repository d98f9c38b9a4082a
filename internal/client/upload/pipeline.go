// Package upload persists one recorded video as a blob plus a metadata
// record: a two-step sequence with no automatic rollback.
package upload

import (
	"context"
	"time"

	"github.com/clipfeed/clipfeed/internal/client/models"
	"github.com/clipfeed/clipfeed/internal/client/providers"
	"github.com/clipfeed/clipfeed/internal/common"
	"github.com/clipfeed/clipfeed/internal/logging"
	"github.com/google/uuid"
)

// Wakelock is a scoped background-execution token. It is acquired before a
// blob upload begins and released unconditionally when the upload call
// returns, so an in-flight transfer survives host backgrounding.
type Wakelock interface {
	Acquire() (release func())
}

// NoopWakelock satisfies Wakelock for hosts without background-task limits.
type NoopWakelock struct{}

func (NoopWakelock) Acquire() func() { return func() {} }

// test seams
var (
	timeNow     = time.Now
	newFileName = func() string { return "vid_" + uuid.NewString() + ".mp4" }
)

// Pipeline performs the two-phase save. It holds no per-attempt mutable
// state: every Submit call owns its own UploadAttempt, so concurrent submits
// are independent by construction.
type Pipeline struct {
	blobs    providers.BlobStore
	docs     providers.DocumentStore
	creds    providers.CredentialProvider
	wakelock Wakelock
	logger   logging.Logger
}

// NewPipeline wires the pipeline to its three providers. wakelock may be nil,
// in which case a no-op lock is used.
func NewPipeline(blobs providers.BlobStore, docs providers.DocumentStore, creds providers.CredentialProvider, wakelock Wakelock, logger logging.Logger) *Pipeline {
	if wakelock == nil {
		wakelock = NoopWakelock{}
	}
	return &Pipeline{
		blobs:    blobs,
		docs:     docs,
		creds:    creds,
		wakelock: wakelock,
		logger:   logger.With("module", "upload"),
	}
}

// Submit uploads videoBytes under a freshly generated unique name, then
// appends the metadata record. The returned attempt carries the final phase
// and, on failure, the provider's message verbatim.
//
// Failure semantics are deliberate and must stay this way:
//   - blob upload fails  -> Failed, the metadata write is never attempted;
//   - metadata write fails -> Failed, the already-uploaded blob stays behind
//     as an orphan (no cleanup, no retry);
//   - a retried Submit re-uploads under a new name; locators are never reused.
func (p *Pipeline) Submit(ctx context.Context, videoBytes []byte, caption string) (models.UploadAttempt, error) {
	attempt := models.UploadAttempt{
		FileName: newFileName(),
		Caption:  caption,
		Phase:    models.UploadIdle,
	}

	attempt.Phase = models.UploadingBlob
	locator, err := p.uploadBlob(ctx, videoBytes, attempt.FileName)
	if err != nil {
		attempt.Phase = models.UploadFailed
		attempt.Err = err.Error()
		p.logger.Warn(ctx, "blob upload failed", "file", attempt.FileName, "error", err)
		return attempt, err
	}
	attempt.LocatorURL = locator

	attempt.Phase = models.SavingMetadata
	userID := p.creds.CurrentUserID()
	if userID == "" {
		userID = common.AnonymousUserID
	}
	rec := providers.NewVideoRecord{
		URL:            locator,
		UserID:         userID,
		Caption:        caption,
		CreatedAtEpoch: timeNow().Unix(),
	}
	if err := p.docs.AppendRecord(ctx, rec); err != nil {
		// The blob stays behind without a referencing record. Known
		// partial-failure outcome, not corrected automatically.
		attempt.Phase = models.UploadFailed
		attempt.Err = err.Error()
		p.logger.Warn(ctx, "metadata write failed, blob orphaned",
			"file", attempt.FileName, "locator", locator, "error", err)
		return attempt, err
	}

	attempt.Phase = models.UploadSucceeded
	p.logger.Info(ctx, "upload finished", "file", attempt.FileName, "user", userID)
	return attempt, nil
}

// uploadBlob runs the blob-store call under the wakelock. The lock is
// released on both outcomes before the result is inspected.
func (p *Pipeline) uploadBlob(ctx context.Context, data []byte, fileName string) (string, error) {
	release := p.wakelock.Acquire()
	defer release()
	return p.blobs.Upload(ctx, data, fileName, common.VideoContentType)
}
