package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clipfeed/clipfeed/internal/client/models"
	"github.com/clipfeed/clipfeed/internal/client/providers"
	"github.com/clipfeed/clipfeed/internal/logging"
	"github.com/stretchr/testify/require"
)

type fakeDocs struct {
	Ret []models.VideoRecord
	Err error

	LastLimit int
}

func (f *fakeDocs) AppendRecord(ctx context.Context, rec providers.NewVideoRecord) error {
	return nil
}

func (f *fakeDocs) QueryRecent(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	f.LastLimit = limit
	return f.Ret, f.Err
}

type fakeCache struct {
	stored  []models.VideoRecord
	listErr error
	saveErr error
}

func (f *fakeCache) ReplaceAll(ctx context.Context, records []models.VideoRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored = append([]models.VideoRecord(nil), records...)
	return nil
}

func (f *fakeCache) ListRecent(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.stored, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func records(ids ...string) []models.VideoRecord {
	out := make([]models.VideoRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.VideoRecord{ID: id, URL: "https://x/" + id, UserID: "u", CreatedAt: time.Unix(1700000000, 0)})
	}
	return out
}

func TestLoad_SuccessUpdatesCache(t *testing.T) {
	docs := &fakeDocs{Ret: records("a", "b")}
	cache := &fakeCache{}
	s := NewService(docs, cache, logging.NewJSON(discard{}))

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, DefaultLimit, docs.LastLimit)
	require.Equal(t, got, cache.stored)
}

func TestLoad_ProviderFailureFallsBackToCache(t *testing.T) {
	boom := errors.New("backend down")
	docs := &fakeDocs{Err: boom}
	cache := &fakeCache{stored: records("cached")}
	s := NewService(docs, cache, logging.NewJSON(discard{}))

	got, err := s.Load(context.Background())
	require.ErrorIs(t, err, boom)
	require.Len(t, got, 1)
	require.Equal(t, "cached", got[0].ID)
}

func TestLoad_ProviderAndCacheFailure(t *testing.T) {
	boom := errors.New("backend down")
	docs := &fakeDocs{Err: boom}
	cache := &fakeCache{listErr: errors.New("cache broken")}
	s := NewService(docs, cache, logging.NewJSON(discard{}))

	got, err := s.Load(context.Background())
	require.ErrorIs(t, err, boom)
	require.Nil(t, got)
}

func TestLoad_NilCache(t *testing.T) {
	docs := &fakeDocs{Ret: records("a")}
	s := NewService(docs, nil, logging.NewJSON(discard{}))

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestLoad_CacheSaveErrorIsNonFatal(t *testing.T) {
	docs := &fakeDocs{Ret: records("a")}
	cache := &fakeCache{saveErr: errors.New("disk full")}
	s := NewService(docs, cache, logging.NewJSON(discard{}))

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
}
