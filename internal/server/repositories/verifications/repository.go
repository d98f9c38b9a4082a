package verifications

import (
	"context"
	"time"

	"github.com/clipfeed/clipfeed/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, v *models.PhoneVerification) error
	GetByID(ctx context.Context, id string) (*models.PhoneVerification, error)
	IncrementAttempts(ctx context.Context, id string) (int, error)
	MarkConfirmed(ctx context.Context, id string) error
	CountRecentByPhone(ctx context.Context, phone string, since time.Time) (int, error)
}
