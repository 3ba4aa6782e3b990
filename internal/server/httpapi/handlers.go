package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"pawpath/internal/common"
	"pawpath/internal/server/models"
	"pawpath/internal/server/services"
)

// maxUploadBytes bounds a whole multipart submission (3 images plus fields).
const maxUploadBytes = 32 << 20

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Login    string `json:"login"`
	Password string `json:"password"`
	PetName  string `json:"pet_name"`
	PetBreed string `json:"pet_breed"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Email, req.Login, req.Password, req.PetName, req.PetBreed)
	if err != nil {
		if !isClientError(err) {
			s.logger.Error(r.Context(), "registration failed", "error", err)
		}
		writeServiceError(w, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "login", req.Login)
	writeJSON(w, http.StatusCreated, map[string]any{"id": user.ID})
}

type loginRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, role, err := s.sessions.Login(r.Context(), req.Login, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorUnauthorized):
			// bad credentials are the client's mistake on this endpoint
			writeError(w, http.StatusBadRequest, "invalid credentials")
		case errors.Is(err, common.ErrorForbidden):
			writeError(w, http.StatusForbidden, "account is blocked")
		default:
			s.logger.Error(r.Context(), "login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token, "role": role})
}

type verifyCodeRequest struct {
	UserID int64  `json:"user_id"`
	Code   string `json:"code"`
}

func (s *Server) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid, err := s.totp.VerifyCode(r.Context(), req.UserID, req.Code)
	if err != nil {
		if !isClientError(err) {
			s.logger.Error(r.Context(), "code verification failed", "error", err)
		}
		writeServiceError(w, err)
		return
	}

	if !valid {
		writeJSON(w, http.StatusBadRequest, map[string]any{"valid": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

func (s *Server) handleTOTPImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	_, img, err := s.totp.ProvisioningMaterial(r.Context(), id)
	if err != nil {
		if !isClientError(err) {
			s.logger.Error(r.Context(), "provisioning material failed", "error", err)
		}
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	if err := s.sessions.Logout(r.Context(), identity.SessionID); err != nil {
		s.logger.Error(r.Context(), "logout failed", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleSubmitLocation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := services.LocationInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Latitude:    formFloat(r, "latitude"),
		Longitude:   formFloat(r, "longitude"),
		PlaceType:   r.FormValue("place_type"),
	}

	photos, closers, err := formUploads(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid photo upload")
		return
	}
	defer closeAll(closers)

	identity := IdentityFromContext(r.Context())
	creatorID := &identity.UserID

	location, err := s.content.SubmitLocation(r.Context(), creatorID, in, photos)
	if err != nil {
		if !isClientError(err) {
			s.logger.Error(r.Context(), "location submission failed", "error", err)
		}
		writeServiceError(w, err)
		return
	}

	s.logger.Info(r.Context(), "location submitted", "id", location.ID, "user", identity.UserID)
	writeJSON(w, http.StatusCreated, map[string]any{"id": location.ID, "photos": location.PhotoPaths})
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	locationID, _ := strconv.ParseInt(r.FormValue("location_id"), 10, 64)
	rating, _ := strconv.Atoi(r.FormValue("rating"))

	in := services.ReviewInput{
		LocationID: locationID,
		Rating:     rating,
		Text:       r.FormValue("text"),
	}

	photos, closers, err := formUploads(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid photo upload")
		return
	}
	defer closeAll(closers)

	identity := IdentityFromContext(r.Context())

	review, err := s.content.SubmitReview(r.Context(), identity.UserID, in, photos)
	if err != nil {
		if !isClientError(err) {
			s.logger.Error(r.Context(), "review submission failed", "error", err)
		}
		writeServiceError(w, err)
		return
	}

	s.logger.Info(r.Context(), "review submitted", "id", review.ID, "user", identity.UserID)
	writeJSON(w, http.StatusCreated, map[string]any{"id": review.ID, "photos": review.PhotoPaths})
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	items, err := s.content.ListPublicLocations(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "listing locations failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locationsToJSON(items))
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	items, err := s.content.ListPublicReviews(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "listing reviews failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewsToJSON(items))
}

func (s *Server) handlePendingLocations(w http.ResponseWriter, r *http.Request) {
	items, err := s.content.ListPendingLocations(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "listing pending locations failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locationsToJSON(items))
}

func (s *Server) handlePendingReviews(w http.ResponseWriter, r *http.Request) {
	items, err := s.content.ListPendingReviews(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "listing pending reviews failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewsToJSON(items))
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	kind, err := ownerKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown content kind")
		return
	}

	if err := s.content.Approve(r.Context(), kind, id); err != nil {
		if !isClientError(err) {
			s.logger.Error(r.Context(), "approval failed", "error", err)
		}
		writeServiceError(w, err)
		return
	}

	identity := IdentityFromContext(r.Context())
	s.logger.Info(r.Context(), "content approved", "kind", kind, "id", id, "admin", identity.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (s *Server) handleBlockUser(w http.ResponseWriter, r *http.Request) {
	s.setUserBlocked(w, r, true)
}

func (s *Server) handleUnblockUser(w http.ResponseWriter, r *http.Request) {
	s.setUserBlocked(w, r, false)
}

func (s *Server) setUserBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if blocked {
		err = s.users.Block(r.Context(), id)
	} else {
		err = s.users.Unblock(r.Context(), id)
	}
	if err != nil {
		if !isClientError(err) {
			s.logger.Error(r.Context(), "ban update failed", "error", err)
		}
		writeServiceError(w, err)
		return
	}

	identity := IdentityFromContext(r.Context())
	s.logger.Info(r.Context(), "ban flag updated", "user", id, "banned", blocked, "admin", identity.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePhotoPaths(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	kind, err := ownerKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown content kind")
		return
	}

	paths, err := s.photos.Paths(r.Context(), kind, id)
	if err != nil {
		s.logger.Error(r.Context(), "listing photos failed", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"photos": paths})
}

func (s *Server) handlePhotoContent(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	rc, err := s.photos.Open(r.Context(), key)
	if err != nil {
		if !isClientError(err) {
			s.logger.Error(r.Context(), "opening photo failed", "key", key, "error", err)
		}
		writeServiceError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	io.Copy(w, rc)
}

// ---- helpers ----

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// formFloat returns nil when the field is absent or not a number, so the
// service's required-field validation catches it.
func formFloat(r *http.Request, name string) *float64 {
	v, err := strconv.ParseFloat(r.FormValue(name), 64)
	if err != nil {
		return nil
	}
	return &v
}

func ownerKind(raw string) (string, error) {
	switch raw {
	case "locations", models.OwnerLocation:
		return models.OwnerLocation, nil
	case "reviews", models.OwnerReview:
		return models.OwnerReview, nil
	default:
		return "", common.ErrorValidation
	}
}

// formUploads extracts the "photos" files from a parsed multipart form. The
// returned closers must be closed by the caller after the uploads are
// consumed.
func formUploads(r *http.Request) ([]services.Upload, []io.Closer, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}

	var uploads []services.Upload
	var closers []io.Closer
	for _, header := range r.MultipartForm.File["photos"] {
		f, err := header.Open()
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		uploads = append(uploads, services.Upload{Filename: header.Filename, Content: f})
		closers = append(closers, f)
	}
	return uploads, closers, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}

// isClientError reports whether err belongs to the 4xx part of the taxonomy;
// everything else is unexpected and gets logged before rendering.
func isClientError(err error) bool {
	return errors.Is(err, common.ErrorValidation) ||
		errors.Is(err, common.ErrorConflict) ||
		errors.Is(err, common.ErrorUnauthorized) ||
		errors.Is(err, common.ErrorForbidden) ||
		errors.Is(err, common.ErrorNotFound)
}

func locationsToJSON(items []*models.Location) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, l := range items {
		out = append(out, map[string]any{
			"id":          l.ID,
			"title":       l.Title,
			"description": l.Description,
			"latitude":    l.Latitude,
			"longitude":   l.Longitude,
			"place_type":  l.PlaceType,
			"photos":      photoList(l.PhotoPaths),
		})
	}
	return out
}

func reviewsToJSON(items []*models.Review) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, rv := range items {
		out = append(out, map[string]any{
			"id":          rv.ID,
			"location_id": rv.LocationID,
			"rating":      rv.Rating,
			"text":        rv.Text,
			"photos":      photoList(rv.PhotoPaths),
		})
	}
	return out
}

func photoList(paths []string) []string {
	if paths == nil {
		return []string{}
	}
	return paths
}
