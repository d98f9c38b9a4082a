// Package feed loads the vertically-paged video feed: the most recent
// records from the document store, with a local cache for offline reads.
package feed

import (
	"context"

	"github.com/clipfeed/clipfeed/internal/client/models"
	"github.com/clipfeed/clipfeed/internal/client/providers"
	"github.com/clipfeed/clipfeed/internal/client/repositories/feedcache"
	"github.com/clipfeed/clipfeed/internal/logging"
)

// DefaultLimit is how many records one feed page requests.
const DefaultLimit = 20

// Service reads the feed. After a successful upload the caller re-queries via
// Load to observe the new record; nothing pushes records into the cache
// directly.
type Service struct {
	docs   providers.DocumentStore
	cache  feedcache.Repository
	logger logging.Logger
	limit  int
}

// NewService builds a feed service. cache may be nil to disable offline
// fallback.
func NewService(docs providers.DocumentStore, cache feedcache.Repository, logger logging.Logger) *Service {
	return &Service{
		docs:   docs,
		cache:  cache,
		logger: logger.With("module", "feed"),
		limit:  DefaultLimit,
	}
}

// Load queries the most recent records, newest first. On success the local
// cache is replaced (best effort). On a provider failure the cached records
// are returned together with the provider's error, so the caller can render
// stale content alongside the message.
func (s *Service) Load(ctx context.Context) ([]models.VideoRecord, error) {
	records, err := s.docs.QueryRecent(ctx, s.limit)
	if err != nil {
		s.logger.Warn(ctx, "feed query failed", "error", err)
		if s.cache == nil {
			return nil, err
		}
		cached, cacheErr := s.cache.ListRecent(ctx, s.limit)
		if cacheErr != nil {
			s.logger.Warn(ctx, "feed cache read failed", "error", cacheErr)
			return nil, err
		}
		return cached, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.ReplaceAll(ctx, records); cacheErr != nil {
			s.logger.Warn(ctx, "feed cache update failed", "error", cacheErr)
		}
	}
	return records, nil
}
