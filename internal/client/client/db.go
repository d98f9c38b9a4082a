// Package client holds client-side infrastructure shared by the services:
// the local sqlite database used for session state and the feed cache.
package client

import (
	"context"
	"database/sql"
	"fmt"
)

// InitDatabase opens (or creates) the client's sqlite database at path and
// ensures the schema exists. The caller owns the returned handle.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS local_state (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS feed_cache (
  id         TEXT PRIMARY KEY,
  url        TEXT NOT NULL,
  user_id    TEXT NOT NULL,
  caption    TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema init error: %w", err)
	}

	return db, nil
}
