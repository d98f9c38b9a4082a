package videos

import (
	"context"

	"github.com/clipfeed/clipfeed/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, video *models.Video) error
	SelectRecent(ctx context.Context, limit int) ([]*models.Video, error)
}
