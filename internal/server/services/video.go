package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/clipfeed/clipfeed/internal/common"
	"github.com/clipfeed/clipfeed/internal/logging"
	"github.com/clipfeed/clipfeed/internal/server/models"
	"github.com/clipfeed/clipfeed/internal/server/repositories/repomanager"
)

const (
	// DefaultFeedLimit applies when the client does not specify one.
	DefaultFeedLimit = 20
	// MaxFeedLimit caps a single feed page.
	MaxFeedLimit = 100
)

// BlobStore stores a blob and returns its download URL.
type BlobStore interface {
	Upload(ctx context.Context, key string, contentType string, data io.Reader) (string, error)
}

// NewRecord is the metadata payload appended after a blob upload.
type NewRecord struct {
	URL            string
	UserID         string
	Caption        string
	CreatedAtEpoch int64
}

// VideoService stores video blobs and feed records. Blob and record writes
// are separate operations by design: a failed record append leaves the
// already-uploaded blob in place.
type VideoService struct {
	db     *sql.DB
	repos  repomanager.RepoManager
	blobs  BlobStore
	logger logging.Logger
}

func NewVideoService(db *sql.DB, repos repomanager.RepoManager,
	blobs BlobStore, logger logging.Logger) *VideoService {
	return &VideoService{db: db, repos: repos, blobs: blobs, logger: logger}
}

// UploadBlob stores the blob under the videos/ prefix and returns its
// download URL.
func (s *VideoService) UploadBlob(ctx context.Context, key string, contentType string, data io.Reader) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: blob key is required", common.ErrValidation)
	}
	if contentType == "" {
		contentType = common.VideoContentType
	}

	url, err := s.blobs.Upload(ctx, "videos/"+key, contentType, data)
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "blob uploaded", "key", key)
	return url, nil
}

// Append stores a feed record for an already-uploaded blob.
func (s *VideoService) Append(ctx context.Context, rec NewRecord) (*models.Video, error) {
	if rec.URL == "" {
		return nil, fmt.Errorf("%w: url is required", common.ErrValidation)
	}
	if rec.UserID == "" {
		rec.UserID = common.AnonymousUserID
	}

	createdAt := time.Unix(rec.CreatedAtEpoch, 0).UTC()
	if rec.CreatedAtEpoch == 0 {
		createdAt = timeNow().UTC()
	}

	video := &models.Video{
		ID:        uuid.NewString(),
		URL:       rec.URL,
		UserID:    rec.UserID,
		Caption:   rec.Caption,
		CreatedAt: createdAt,
	}
	if err := s.repos.Videos(s.db).Insert(ctx, video); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "video appended", "id", video.ID, "user_id", video.UserID)
	return video, nil
}

// Recent returns the newest records first. Out-of-range limits are clamped.
func (s *VideoService) Recent(ctx context.Context, limit int) ([]*models.Video, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	return s.repos.Videos(s.db).SelectRecent(ctx, limit)
}
