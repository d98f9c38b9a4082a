package feedcache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/clipfeed/clipfeed/internal/client/models"
	"github.com/clipfeed/clipfeed/internal/dbx"
)

// SQLiteRepository persists feed records in the feed_cache table.
// Timestamps are stored as Unix seconds.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []models.VideoRecord) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM feed_cache`); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		for _, rec := range records {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO feed_cache (id, url, user_id, caption, created_at)
				VALUES (?, ?, ?, ?, ?)`,
				rec.ID, rec.URL, rec.UserID, rec.Caption, rec.CreatedAt.Unix())
			if err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, url, user_id, caption, created_at
		FROM feed_cache
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.VideoRecord
	for rows.Next() {
		var rec models.VideoRecord
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.URL, &rec.UserID, &rec.Caption, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
