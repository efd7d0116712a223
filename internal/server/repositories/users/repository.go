package users

import (
	"context"
	"time"

	"github.com/frankly034/userdir/internal/server/models"
)

// Filter narrows a user listing. Name and Email are substring matches
// combined with OR; the remaining conditions are AND-combined.
type Filter struct {
	Name               string
	Email              string
	IDs                []string
	UpdatedSince       time.Time // inclusive lower bound on updated_at
	Limit              int
	Offset             int
	IncludeCredentials bool
}

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string, includeCredentials bool) (*models.User, error)
	GetByEmail(ctx context.Context, email string, includeCredentials bool) (*models.User, error)
	List(ctx context.Context, filter Filter) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	SoftDelete(ctx context.Context, id string) (*models.User, error)
}
