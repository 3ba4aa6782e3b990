// Package httpapi is the HTTP transport: it parses requests, delegates to
// the services, and renders results and the error taxonomy as JSON.
package httpapi

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"pawpath/internal/logging"
	"pawpath/internal/server/models"
	"pawpath/internal/server/services"
)

type userSvc interface {
	Register(ctx context.Context, name, email, login, password, petName, petBreed string) (*models.User, error)
	Block(ctx context.Context, id int64) error
	Unblock(ctx context.Context, id int64) error
}

type sessionSvc interface {
	Login(ctx context.Context, login, email, password string) (string, string, error)
	Authenticate(ctx context.Context, token string) (*services.Identity, error)
	Logout(ctx context.Context, sessionID string) error
}

type totpSvc interface {
	ProvisioningMaterial(ctx context.Context, userID int64) (string, []byte, error)
	VerifyCode(ctx context.Context, userID int64, code string) (bool, error)
}

type contentSvc interface {
	SubmitLocation(ctx context.Context, creatorID *int64, in services.LocationInput, photos []services.Upload) (*models.Location, error)
	SubmitReview(ctx context.Context, creatorID int64, in services.ReviewInput, photos []services.Upload) (*models.Review, error)
	Approve(ctx context.Context, kind string, id int64) error
	ListPublicLocations(ctx context.Context) ([]*models.Location, error)
	ListPendingLocations(ctx context.Context) ([]*models.Location, error)
	ListPublicReviews(ctx context.Context) ([]*models.Review, error)
	ListPendingReviews(ctx context.Context) ([]*models.Review, error)
}

type photoSvc interface {
	Paths(ctx context.Context, ownerKind string, ownerID int64) ([]string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type Server struct {
	address  string
	logger   logging.Logger
	users    userSvc
	sessions sessionSvc
	totp     totpSvc
	content  contentSvc
	photos   photoSvc
}

func NewServer(a string, l logging.Logger, us *services.UserService, ss *services.SessionService,
	ts *services.TOTPService, cs *services.ContentService, ps *services.PhotoService) *Server {
	return &Server{
		address:  a,
		logger:   l.With("module", "http_server"),
		users:    us,
		sessions: ss,
		totp:     ts,
		content:  cs,
		photos:   ps,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/verify-code", s.handleVerifyCode)
	mux.HandleFunc("GET /api/users/{id}/totp.png", s.handleTOTPImage)

	mux.Handle("POST /api/logout", s.RequireSession(http.HandlerFunc(s.handleLogout)))
	mux.Handle("POST /api/locations", s.RequireSession(http.HandlerFunc(s.handleSubmitLocation)))
	mux.Handle("POST /api/reviews", s.RequireSession(http.HandlerFunc(s.handleSubmitReview)))

	mux.HandleFunc("GET /api/locations", s.handleListLocations)
	mux.HandleFunc("GET /api/reviews", s.handleListReviews)
	mux.HandleFunc("GET /api/photos/{kind}/{id}", s.handlePhotoPaths)
	mux.HandleFunc("GET /api/photos/{key...}", s.handlePhotoContent)

	mux.Handle("GET /api/admin/locations/pending", s.RequireAdmin(http.HandlerFunc(s.handlePendingLocations)))
	mux.Handle("GET /api/admin/reviews/pending", s.RequireAdmin(http.HandlerFunc(s.handlePendingReviews)))
	mux.Handle("POST /api/admin/{kind}/{id}/approve", s.RequireAdmin(http.HandlerFunc(s.handleApprove)))
	mux.Handle("POST /api/admin/users/{id}/block", s.RequireAdmin(http.HandlerFunc(s.handleBlockUser)))
	mux.Handle("POST /api/admin/users/{id}/unblock", s.RequireAdmin(http.HandlerFunc(s.handleUnblockUser)))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
