// Package photos provides a PostgreSQL-backed repository for photo
// attachment rows linking stored blobs to their owning content item.
package photos

import (
	"context"
	"fmt"

	"pawpath/internal/dbx"
	"pawpath/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, photo *models.Photo) (*models.Photo, error) {

	query :=
		`INSERT INTO photos (owner_kind, owner_id, storage_key)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		photo.OwnerKind, photo.OwnerID, photo.StorageKey).Scan(&photo.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return photo, nil
}

// ListByOwner returns the owner's photos in storage (insertion) order.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerKind string, ownerID int64) ([]*models.Photo, error) {
	query :=
		`SELECT id, owner_kind, owner_id, storage_key
		 FROM photos
		 WHERE owner_kind = $1 AND owner_id = $2
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerKind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Photo
	for rows.Next() {
		photo := &models.Photo{}
		if err := rows.Scan(&photo.ID, &photo.OwnerKind, &photo.OwnerID, &photo.StorageKey); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
