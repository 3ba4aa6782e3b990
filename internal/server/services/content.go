package services

import (
	"context"
	"database/sql"
	"fmt"

	"pawpath/internal/common"
	"pawpath/internal/dbx"
	"pawpath/internal/server/models"
	"pawpath/internal/server/repositories/repomanager"
)

// LocationInput carries the submitted fields for a new map location.
// Latitude and Longitude are pointers so a missing coordinate is
// distinguishable from a real (0, 0).
type LocationInput struct {
	Title       string
	Description string
	Latitude    *float64
	Longitude   *float64
	PlaceType   string
}

// ReviewInput carries the submitted fields for a new review.
type ReviewInput struct {
	LocationID int64
	Rating     int
	Text       string
}

// ContentService runs the moderation workflow: submissions start unverified,
// an admin approves them exactly once, and only verified items are publicly
// listable. There is no reject or delete transition; unapproved items simply
// stay out of public listings.
type ContentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	photos      *PhotoService
}

// NewContentService constructs a ContentService over repositories and the
// photo attachment service.
func NewContentService(db *sql.DB, m repomanager.RepositoryManager, photos *PhotoService) *ContentService {
	return &ContentService{db: db, repomanager: m, photos: photos}
}

// SubmitLocation validates and inserts a location in the submitted state,
// attaching up to MaxPhotosPerItem photos in the same transaction. The photo
// count is checked before anything is written.
func (s *ContentService) SubmitLocation(ctx context.Context, creatorID *int64, in LocationInput, photos []Upload) (*models.Location, error) {
	if in.Title == "" || in.PlaceType == "" || in.Latitude == nil || in.Longitude == nil {
		return nil, common.ErrorValidation
	}
	if len(photos) > MaxPhotosPerItem {
		return nil, common.ErrorValidation
	}

	location := &models.Location{
		Title:       in.Title,
		Description: in.Description,
		Latitude:    *in.Latitude,
		Longitude:   *in.Longitude,
		PlaceType:   in.PlaceType,
		CreatorID:   creatorID,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		location, err = s.repomanager.Locations(tx).Create(ctx, location)
		if err != nil {
			return err
		}

		location.PhotoPaths, err = s.photos.Attach(ctx, tx, models.OwnerLocation, location.ID, photos)
		return err
	}); err != nil {
		return nil, fmt.Errorf("error submitting location: %w", err)
	}

	return location, nil
}

// SubmitReview validates and inserts a review in the submitted state. The
// target location must exist; reviews always carry a creator.
func (s *ContentService) SubmitReview(ctx context.Context, creatorID int64, in ReviewInput, photos []Upload) (*models.Review, error) {
	if in.Rating == 0 || in.Text == "" || in.LocationID == 0 {
		return nil, common.ErrorValidation
	}
	if len(photos) > MaxPhotosPerItem {
		return nil, common.ErrorValidation
	}

	if _, err := s.repomanager.Locations(s.db).GetByID(ctx, in.LocationID); err != nil {
		return nil, err
	}

	review := &models.Review{
		LocationID: in.LocationID,
		CreatorID:  creatorID,
		Rating:     in.Rating,
		Text:       in.Text,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		review, err = s.repomanager.Reviews(tx).Create(ctx, review)
		if err != nil {
			return err
		}

		review.PhotoPaths, err = s.photos.Attach(ctx, tx, models.OwnerReview, review.ID, photos)
		return err
	}); err != nil {
		return nil, fmt.Errorf("error submitting review: %w", err)
	}

	return review, nil
}

// Approve moves a submitted item to verified. Approving an already-verified
// item is a no-op success; unknown ids yield common.ErrorNotFound. The
// repository UPDATE makes two admins approving concurrently converge on the
// same state.
func (s *ContentService) Approve(ctx context.Context, kind string, id int64) error {
	switch kind {
	case models.OwnerLocation:
		return s.repomanager.Locations(s.db).Approve(ctx, id)
	case models.OwnerReview:
		return s.repomanager.Reviews(s.db).Approve(ctx, id)
	default:
		return common.ErrorValidation
	}
}

// ListPublicLocations returns verified locations with resolved photo paths.
func (s *ContentService) ListPublicLocations(ctx context.Context) ([]*models.Location, error) {
	return s.listLocations(ctx, true)
}

// ListPendingLocations returns locations awaiting moderation.
func (s *ContentService) ListPendingLocations(ctx context.Context) ([]*models.Location, error) {
	return s.listLocations(ctx, false)
}

// ListPublicReviews returns verified reviews with resolved photo paths.
func (s *ContentService) ListPublicReviews(ctx context.Context) ([]*models.Review, error) {
	return s.listReviews(ctx, true)
}

// ListPendingReviews returns reviews awaiting moderation.
func (s *ContentService) ListPendingReviews(ctx context.Context) ([]*models.Review, error) {
	return s.listReviews(ctx, false)
}

func (s *ContentService) listLocations(ctx context.Context, verified bool) ([]*models.Location, error) {
	items, err := s.repomanager.Locations(s.db).ListByVerified(ctx, verified)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		item.PhotoPaths, err = s.photos.Paths(ctx, models.OwnerLocation, item.ID)
		if err != nil {
			return nil, err
		}
	}

	return items, nil
}

func (s *ContentService) listReviews(ctx context.Context, verified bool) ([]*models.Review, error) {
	items, err := s.repomanager.Reviews(s.db).ListByVerified(ctx, verified)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		item.PhotoPaths, err = s.photos.Paths(ctx, models.OwnerReview, item.ID)
		if err != nil {
			return nil, err
		}
	}

	return items, nil
}
