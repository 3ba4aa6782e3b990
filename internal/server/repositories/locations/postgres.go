// Package locations provides a PostgreSQL-backed repository for map
// locations and their moderation state.
package locations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pawpath/internal/common"
	"pawpath/internal/dbx"
	"pawpath/internal/server/models"
)

// PostgresRepository implements CRUD operations for locations over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a location in the submitted (unverified) state.
func (r *PostgresRepository) Create(ctx context.Context, location *models.Location) (*models.Location, error) {

	query :=
		`INSERT INTO locations (title, description, latitude, longitude, place_type, creator_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		location.Title, location.Description, location.Latitude, location.Longitude,
		location.PlaceType, location.CreatorID).Scan(&location.ID, &location.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return location, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	query :=
		`SELECT id, title, description, latitude, longitude, place_type, creator_id, verified, created_at
		 FROM locations
		 WHERE id = $1
		 `

	location := &models.Location{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&location.ID, &location.Title, &location.Description, &location.Latitude,
		&location.Longitude, &location.PlaceType, &location.CreatorID,
		&location.Verified, &location.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return location, nil
}

// ListByVerified returns all locations in the given moderation state,
// oldest first.
func (r *PostgresRepository) ListByVerified(ctx context.Context, verified bool) ([]*models.Location, error) {
	query :=
		`SELECT id, title, description, latitude, longitude, place_type, creator_id, verified, created_at
		 FROM locations
		 WHERE verified = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, verified)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Location
	for rows.Next() {
		location := &models.Location{}
		if err := rows.Scan(
			&location.ID, &location.Title, &location.Description, &location.Latitude,
			&location.Longitude, &location.PlaceType, &location.CreatorID,
			&location.Verified, &location.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Approve flips verified to true. The plain UPDATE makes concurrent approvals
// converge on the same row state; re-approving is a no-op. Unknown ids yield
// common.ErrorNotFound.
func (r *PostgresRepository) Approve(ctx context.Context, id int64) error {
	query :=
		`UPDATE locations SET verified = TRUE
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
