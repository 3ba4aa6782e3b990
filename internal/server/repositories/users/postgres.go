package users

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

const userColumns = `id, name, email, login, password_hash,
		        COALESCE(pet_name, ''), COALESCE(pet_breed, ''),
		        totp_secret, banned, role, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user row. A unique-index violation on email or login
// surfaces as common.ErrorConflict; the index is the authority under
// concurrent registrations, not any pre-check the caller may have done.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (name, email, login, password_hash, pet_name, pet_breed, totp_secret, banned, role)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.Login, user.PasswordHash,
		user.PetName, user.PetBreed, user.TOTPSecret, user.Banned, user.Role).Scan(&user.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByLoginAndEmail(ctx context.Context, login, email string) (*models.User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users
		 WHERE login = $1 AND email = $2
		 `, userColumns)

	return r.scanOne(r.db.QueryRowContext(ctx, query, login, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users
		 WHERE id = $1
		 `, userColumns)

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users
		 WHERE login = $1
		 `, userColumns)

	return r.scanOne(r.db.QueryRowContext(ctx, query, login))
}

// SetBanned updates the banned flag. Unknown ids yield common.ErrorNotFound.
func (r *PostgresRepository) SetBanned(ctx context.Context, id int64, banned bool) error {
	query :=
		`UPDATE users SET banned = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, banned)
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

// SetRole updates the role column. Used by the admin bootstrap tool only.
func (r *PostgresRepository) SetRole(ctx context.Context, id int64, role string) error {
	query :=
		`UPDATE users SET role = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, role)
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

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Login, &user.PasswordHash,
		&user.PetName, &user.PetBreed, &user.TOTPSecret, &user.Banned, &user.Role, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
