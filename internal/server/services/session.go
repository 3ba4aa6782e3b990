package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pawpath/internal/common"
	"pawpath/internal/server/auth"
	"pawpath/internal/server/config"
	"pawpath/internal/server/repositories/repomanager"
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID    int64
	SessionID string
	Role      string
}

// SessionService issues and validates login sessions. A session is a signed
// token referencing a server-stored row; logout deletes the row, which
// invalidates the token even before its expiry.
type SessionService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	users           *UserService
	jwtSecret       []byte
	sessionValidity time.Duration
}

// NewSessionService constructs a SessionService over the credential service
// and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, users *UserService, cfg *config.Config) *SessionService {
	return &SessionService{
		db:              db,
		repomanager:     m,
		users:           users,
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidityDuration,
	}
}

// Login verifies credentials and establishes a session, returning the token
// and the user's role. The session is fully valid for protected operations
// immediately; submitting a one-time code afterwards is a separate,
// client-driven step that the server does not require.
func (s *SessionService) Login(ctx context.Context, login, email, password string) (string, string, error) {
	user, err := s.users.VerifyPassword(ctx, login, email, password)
	if err != nil {
		return "", "", err
	}

	sessionID, err := common.MakeRandHexString(16)
	if err != nil {
		return "", "", common.ErrorInternal
	}

	if err := s.repomanager.Sessions(s.db).Create(ctx, user.ID, sessionID, s.sessionValidity); err != nil {
		return "", "", common.ErrorInternal
	}

	token, err := auth.GenerateToken(user.ID, sessionID, user.Role, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return "", "", common.ErrorInternal
	}

	return token, user.Role, nil
}

// Authenticate resolves a token to an Identity. The token must verify and
// its session row must still exist and be unexpired; otherwise the caller
// gets common.ErrorUnauthorized.
//
// The role and ban status were fixed at login time: a ban applied after
// login does not cut off an existing session.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	session, err := s.repomanager.Sessions(s.db).Find(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if session.Expires.Before(time.Now()) {
		return nil, common.ErrorUnauthorized
	}

	return &Identity{UserID: claims.UserID, SessionID: claims.SessionID, Role: claims.Role}, nil
}

// Logout invalidates the session. Idempotent: logging out an already-deleted
// session succeeds.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID); err != nil {
		return common.ErrorInternal
	}
	return nil
}
