// Package videos provides the PostgreSQL-backed repository for feed records.
package videos

import (
	"context"
	"fmt"

	"github.com/clipfeed/clipfeed/internal/dbx"
	"github.com/clipfeed/clipfeed/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (id, url, user_id, caption, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query,
		video.ID, video.URL, video.UserID, video.Caption, video.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SelectRecent returns the newest records first.
func (r *PostgresRepository) SelectRecent(ctx context.Context, limit int) ([]*models.Video, error) {
	query := `
		SELECT id, url, user_id, caption, created_at
		FROM videos
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select videos: %w", err)
	}
	defer rows.Close()

	var result []*models.Video
	for rows.Next() {
		var item models.Video
		if err := rows.Scan(&item.ID, &item.URL, &item.UserID, &item.Caption, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
