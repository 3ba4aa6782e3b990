package locations

import (
	"context"

	"pawpath/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, location *models.Location) (*models.Location, error)
	GetByID(ctx context.Context, id int64) (*models.Location, error)
	ListByVerified(ctx context.Context, verified bool) ([]*models.Location, error)
	Approve(ctx context.Context, id int64) error
}
