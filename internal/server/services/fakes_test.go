package services

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"sync"
	"time"

	"pawpath/internal/common"
	"pawpath/internal/dbx"
	locationsrepo "pawpath/internal/server/repositories/locations"
	photosrepo "pawpath/internal/server/repositories/photos"
	"pawpath/internal/server/repositories/repomanager"
	reviewsrepo "pawpath/internal/server/repositories/reviews"
	sessionsrepo "pawpath/internal/server/repositories/sessions"
	usersrepo "pawpath/internal/server/repositories/users"

	"pawpath/internal/server/models"
)

// In-memory repositories backing the service tests. They ignore the DBTX
// handle; transactional behavior is covered by sqlmock expectations.

type fakeUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.User

	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{nextID: 1, rows: map[int64]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, row := range f.rows {
		if row.Email == u.Email || row.Login == u.Login {
			return nil, common.ErrorConflict
		}
	}
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.nextID++
	cp := *u
	f.rows[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByLoginAndEmail(ctx context.Context, login, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, row := range f.rows {
		if row.Login == login && row.Email == email {
			cp := *row
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeUsersRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Login == login {
			cp := *row
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) SetBanned(ctx context.Context, id int64, banned bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	row.Banned = banned
	return nil
}

func (f *fakeUsersRepo) SetRole(ctx context.Context, id int64, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	row.Role = role
	return nil
}

type fakeLocationsRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Location

	createErr error
}

func newFakeLocationsRepo() *fakeLocationsRepo {
	return &fakeLocationsRepo{nextID: 1, rows: map[int64]*models.Location{}}
}

func (f *fakeLocationsRepo) Create(ctx context.Context, l *models.Location) (*models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	l.ID = f.nextID
	l.CreatedAt = time.Now()
	f.nextID++
	cp := *l
	f.rows[l.ID] = &cp
	return l, nil
}

func (f *fakeLocationsRepo) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeLocationsRepo) ListByVerified(ctx context.Context, verified bool) ([]*models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Location
	for id := int64(1); id < f.nextID; id++ {
		if row, ok := f.rows[id]; ok && row.Verified == verified {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLocationsRepo) Approve(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	row.Verified = true
	return nil
}

type fakeReviewsRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Review
}

func newFakeReviewsRepo() *fakeReviewsRepo {
	return &fakeReviewsRepo{nextID: 1, rows: map[int64]*models.Review{}}
}

func (f *fakeReviewsRepo) Create(ctx context.Context, r *models.Review) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.nextID
	r.CreatedAt = time.Now()
	f.nextID++
	cp := *r
	f.rows[r.ID] = &cp
	return r, nil
}

func (f *fakeReviewsRepo) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeReviewsRepo) ListByVerified(ctx context.Context, verified bool) ([]*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Review
	for id := int64(1); id < f.nextID; id++ {
		if row, ok := f.rows[id]; ok && row.Verified == verified {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReviewsRepo) Approve(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	row.Verified = true
	return nil
}

type fakePhotosRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []*models.Photo
}

func newFakePhotosRepo() *fakePhotosRepo {
	return &fakePhotosRepo{nextID: 1}
}

func (f *fakePhotosRepo) Create(ctx context.Context, p *models.Photo) (*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID
	f.nextID++
	cp := *p
	f.rows = append(f.rows, &cp)
	return p, nil
}

func (f *fakePhotosRepo) ListByOwner(ctx context.Context, ownerKind string, ownerID int64) ([]*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Photo
	for _, row := range f.rows {
		if row.OwnerKind == ownerKind && row.OwnerID == ownerID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSessionsRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Session
}

func newFakeSessionsRepo() *fakeSessionsRepo {
	return &fakeSessionsRepo{rows: map[string]*models.Session{}}
}

func (f *fakeSessionsRepo) Create(ctx context.Context, userID int64, sessionID string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[sessionID] = &models.Session{
		ID:        sessionID,
		UserID:    userID,
		Expires:   time.Now().Add(validity),
		CreatedAt: time.Now(),
	}
	return nil
}

func (f *fakeSessionsRepo) Find(ctx context.Context, sessionID string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[sessionID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, sessionID)
	return nil
}

type fakeRepoManager struct {
	users     *fakeUsersRepo
	locations *fakeLocationsRepo
	reviews   *fakeReviewsRepo
	photos    *fakePhotosRepo
	sessions  *fakeSessionsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:     newFakeUsersRepo(),
		locations: newFakeLocationsRepo(),
		reviews:   newFakeReviewsRepo(),
		photos:    newFakePhotosRepo(),
		sessions:  newFakeSessionsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository         { return m.users }
func (m *fakeRepoManager) Locations(db dbx.DBTX) locationsrepo.Repository { return m.locations }
func (m *fakeRepoManager) Reviews(db dbx.DBTX) reviewsrepo.Repository     { return m.reviews }
func (m *fakeRepoManager) Photos(db dbx.DBTX) photosrepo.Repository       { return m.photos }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository   { return m.sessions }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

// fakeBlobStore records saved blobs in memory.
type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	saveErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}}
}

func (f *fakeBlobStore) Save(ctx context.Context, key string, r io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = b
	return nil
}

func (f *fakeBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blobs[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}
