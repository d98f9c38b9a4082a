package users

import (
	"context"

	"github.com/clipfeed/clipfeed/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
