package feedcache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/clipfeed/clipfeed/internal/client/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:feedcache?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE feed_cache (
  id         TEXT PRIMARY KEY,
  url        TEXT NOT NULL,
  user_id    TEXT NOT NULL,
  caption    TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func record(id string, createdAt time.Time) models.VideoRecord {
	return models.VideoRecord{
		ID:        id,
		URL:       "https://blobs.example/" + id + ".mp4",
		UserID:    "user-1",
		Caption:   "clip " + id,
		CreatedAt: createdAt,
	}
}

func TestReplaceAllAndListRecent(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	require.NoError(t, repo.ReplaceAll(ctx, []models.VideoRecord{
		record("a", base),
		record("b", base.Add(time.Minute)),
		record("c", base.Add(2*time.Minute)),
	}))

	got, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "c", got[0].ID)
	require.Equal(t, "b", got[1].ID)
	require.Equal(t, base.Add(time.Minute).Unix(), got[1].CreatedAt.Unix())
}

func TestReplaceAll_SwapsPreviousContent(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	require.NoError(t, repo.ReplaceAll(ctx, []models.VideoRecord{record("old", base)}))
	require.NoError(t, repo.ReplaceAll(ctx, []models.VideoRecord{record("new", base)}))

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "new", got[0].ID)
}

func TestListRecent_Empty(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	got, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, got)
}
