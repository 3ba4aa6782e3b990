package sessions

import (
	"context"
	"time"

	"pawpath/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID int64, sessionID string, validity time.Duration) error
	Find(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
}
