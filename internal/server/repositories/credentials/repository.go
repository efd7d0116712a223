package credentials

import (
	"context"

	"github.com/frankly034/userdir/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, hash string) (*models.Credentials, error)
	Update(ctx context.Context, id string, hash string) (*models.Credentials, error)
	Delete(ctx context.Context, id string) error
}
