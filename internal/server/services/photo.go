// Package services contains server-side business logic: accounts and
// credentials, one-time codes, login sessions, content moderation, and
// photo attachments.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"pawpath/internal/dbx"
	"pawpath/internal/server/models"
	"pawpath/internal/server/repositories/repomanager"
	"pawpath/internal/server/storage"
)

// MaxPhotosPerItem caps attachments per submitted content item.
const MaxPhotosPerItem = 3

// allowedExtensions is the attachment allow-list. Files outside it are
// skipped silently, they never fail the submission.
var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// Upload is one client-supplied file: its original name (used only for the
// extension check) and its content.
type Upload struct {
	Filename string
	Content  io.Reader
}

// PhotoService validates, stores, and links uploaded images to their owning
// content item.
type PhotoService struct {
	db          *sql.DB
	blobs       storage.Store
	repomanager repomanager.RepositoryManager
}

// NewPhotoService constructs a PhotoService over a blob store and repositories.
func NewPhotoService(db *sql.DB, blobs storage.Store, m repomanager.RepositoryManager) *PhotoService {
	return &PhotoService{db: db, blobs: blobs, repomanager: m}
}

// Attach stores each allowed file and links it to the owner, returning the
// storage keys in order. Files with a disallowed extension are skipped
// without error. The caller is responsible for the per-item count limit and
// for running this inside the owner's insert transaction.
func (s *PhotoService) Attach(ctx context.Context, tx dbx.DBTX, ownerKind string, ownerID int64, files []Upload) ([]string, error) {
	repo := s.repomanager.Photos(tx)

	var keys []string
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(filepath.Base(f.Filename)))
		if _, ok := allowedExtensions[ext]; !ok {
			continue
		}

		// keys are server-generated, so concurrent uploads of identically
		// named files cannot collide
		key := fmt.Sprintf("%s/%d/%s%s", ownerKind, ownerID, uuid.New(), ext)

		if err := s.blobs.Save(ctx, key, f.Content); err != nil {
			return nil, fmt.Errorf("error storing photo: %w", err)
		}

		if _, err := repo.Create(ctx, &models.Photo{OwnerKind: ownerKind, OwnerID: ownerID, StorageKey: key}); err != nil {
			return nil, err
		}

		keys = append(keys, key)
	}

	return keys, nil
}

// Paths returns the owner's stored photo keys in storage order.
func (s *PhotoService) Paths(ctx context.Context, ownerKind string, ownerID int64) ([]string, error) {
	rows, err := s.repomanager.Photos(s.db).ListByOwner(ctx, ownerKind, ownerID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(rows))
	for _, p := range rows {
		keys = append(keys, p.StorageKey)
	}
	return keys, nil
}

// Open returns the stored image content for a key.
func (s *PhotoService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.blobs.Open(ctx, key)
}
