package reviews

import (
	"context"

	"pawpath/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	ListByVerified(ctx context.Context, verified bool) ([]*models.Review, error)
	Approve(ctx context.Context, id int64) error
}
