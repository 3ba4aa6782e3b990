package httpapi

import (
	"context"
	"net/http"
	"strings"

	"pawpath/internal/server/models"
	"pawpath/internal/server/services"
)

type contextKey string

const identityContextKey contextKey = "identity"

// IdentityFromContext returns the authenticated principal stored by
// RequireSession, or nil for unauthenticated requests.
func IdentityFromContext(ctx context.Context) *services.Identity {
	identity, ok := ctx.Value(identityContextKey).(*services.Identity)
	if !ok {
		return nil
	}
	return identity
}

// RequireSession rejects requests without a valid session token. The token
// travels in the Authorization header as "Bearer <token>"; on success the
// resolved identity is stored in the request context.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		identity, err := s.sessions.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated non-admin callers with 403.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return s.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity == nil || identity.Role != models.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}
