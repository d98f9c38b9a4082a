// Package feedcache caches the most recently fetched feed records locally so
// the feed stays readable when the document store is unreachable.
package feedcache

import (
	"context"

	"github.com/clipfeed/clipfeed/internal/client/models"
)

// Repository is the local feed cache. ReplaceAll swaps the whole cache for
// the given records; ListRecent returns cached records newest first.
type Repository interface {
	ReplaceAll(ctx context.Context, records []models.VideoRecord) error
	ListRecent(ctx context.Context, limit int) ([]models.VideoRecord, error)
}
