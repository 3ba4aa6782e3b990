package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"pawpath/internal/common"
	"pawpath/internal/server/models"
	"pawpath/internal/server/repositories/repomanager"
)

// UserService owns user records: registration, password verification, and
// ban administration.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	totpIssuer  string
}

// NewUserService constructs a UserService using repositories and the
// configured TOTP issuer label.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, totpIssuer string) *UserService {
	return &UserService{db: db, repomanager: m, totpIssuer: totpIssuer}
}

// Register creates a new user with role "user". The password is stored as an
// adaptive salted hash; the one-time-code secret is generated here, once for
// the lifetime of the account. Duplicate email or login yields
// common.ErrorConflict, decided by the database unique index rather than any
// pre-check, so concurrent registrations cannot race past it.
func (s *UserService) Register(ctx context.Context, name, email, login, password, petName, petBreed string) (*models.User, error) {
	if name == "" || email == "" || login == "" || password == "" {
		return nil, common.ErrorValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	secret, err := generateTOTPSecret(s.totpIssuer, email)
	if err != nil {
		return nil, fmt.Errorf("error generating totp secret: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Login:        login,
		PasswordHash: string(hash),
		PetName:      petName,
		PetBreed:     petBreed,
		TOTPSecret:   secret,
		Role:         models.RoleUser,
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// VerifyPassword authenticates by exact login+email match plus password
// check. Any mismatch is the same common.ErrorUnauthorized; the caller never
// learns which of the three was wrong. Banned accounts fail with
// common.ErrorForbidden regardless of password correctness.
func (s *UserService) VerifyPassword(ctx context.Context, login, email, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByLoginAndEmail(ctx, login, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if user.Banned {
		return nil, common.ErrorForbidden
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// GetByID returns the user or common.ErrorNotFound.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// Block bans a user. Banning an already-banned user is a validation error,
// matching the 400 contract for "already in that state".
func (s *UserService) Block(ctx context.Context, id int64) error {
	return s.setBanned(ctx, id, true)
}

// Unblock lifts a ban. Unblocking a user who is not banned is a validation
// error.
func (s *UserService) Unblock(ctx context.Context, id int64) error {
	return s.setBanned(ctx, id, false)
}

// Promote grants the admin role to an existing user, looked up by login.
// There is no HTTP operation for this; role changes happen only through
// direct administrative action.
func (s *UserService) Promote(ctx context.Context, login string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByLogin(ctx, login)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return common.ErrorValidation
	}

	return repo.SetRole(ctx, user.ID, models.RoleAdmin)
}

func (s *UserService) setBanned(ctx context.Context, id int64, banned bool) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Banned == banned {
		return common.ErrorValidation
	}

	return repo.SetBanned(ctx, id, banned)
}
