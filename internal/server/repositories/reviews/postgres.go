// Package reviews provides a PostgreSQL-backed repository for location
// reviews and their moderation state.
package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pawpath/internal/common"
	"pawpath/internal/dbx"
	"pawpath/internal/server/models"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a review in the submitted (unverified) state. A foreign-key
// violation on location_id maps to common.ErrorNotFound as a backstop behind
// the service-level existence check.
func (r *PostgresRepository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {

	query :=
		`INSERT INTO reviews (location_id, creator_id, rating, review_text)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		review.LocationID, review.CreatorID, review.Rating, review.Text).
		Scan(&review.ID, &review.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return review, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	query :=
		`SELECT id, location_id, creator_id, rating, review_text, verified, created_at
		 FROM reviews
		 WHERE id = $1
		 `

	review := &models.Review{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&review.ID, &review.LocationID, &review.CreatorID, &review.Rating,
		&review.Text, &review.Verified, &review.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return review, nil
}

func (r *PostgresRepository) ListByVerified(ctx context.Context, verified bool) ([]*models.Review, error) {
	query :=
		`SELECT id, location_id, creator_id, rating, review_text, verified, created_at
		 FROM reviews
		 WHERE verified = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, verified)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Review
	for rows.Next() {
		review := &models.Review{}
		if err := rows.Scan(
			&review.ID, &review.LocationID, &review.CreatorID, &review.Rating,
			&review.Text, &review.Verified, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Approve flips verified to true; idempotent for already-verified rows.
func (r *PostgresRepository) Approve(ctx context.Context, id int64) error {
	query :=
		`UPDATE reviews SET verified = TRUE
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
