package users

import (
	"context"

	"pawpath/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByLoginAndEmail(ctx context.Context, login, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	SetBanned(ctx context.Context, id int64, banned bool) error
	SetRole(ctx context.Context, id int64, role string) error
}
