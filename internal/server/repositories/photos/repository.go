package photos

import (
	"context"

	"pawpath/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, photo *models.Photo) (*models.Photo, error)
	ListByOwner(ctx context.Context, ownerKind string, ownerID int64) ([]*models.Photo, error)
}
