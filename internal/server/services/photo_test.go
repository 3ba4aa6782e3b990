package services

import (
	"context"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawpath/internal/common"
	"pawpath/internal/server/models"
)

var keyPattern = regexp.MustCompile(`^location/5/[0-9a-f-]{36}\.(png|jpg|jpeg)$`)

func TestAttach_StoresAndLinks(t *testing.T) {
	rm := newFakeRepoManager()
	blobs := newFakeBlobStore()
	s := NewPhotoService(nil, blobs, rm)

	keys, err := s.Attach(context.Background(), nil, models.OwnerLocation, 5, []Upload{
		{Filename: "front.png", Content: strings.NewReader("front")},
		{Filename: "side.jpeg", Content: strings.NewReader("side")},
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)

	for _, key := range keys {
		assert.Regexp(t, keyPattern, key)
	}
	assert.NotEqual(t, keys[0], keys[1])

	assert.Equal(t, []byte("front"), blobs.blobs[keys[0]])
	assert.Equal(t, []byte("side"), blobs.blobs[keys[1]])

	rows, err := rm.photos.ListByOwner(context.Background(), models.OwnerLocation, 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, keys[0], rows[0].StorageKey)
	assert.Equal(t, keys[1], rows[1].StorageKey)
}

func TestAttach_SkipsDisallowedExtensions(t *testing.T) {
	rm := newFakeRepoManager()
	blobs := newFakeBlobStore()
	s := NewPhotoService(nil, blobs, rm)

	keys, err := s.Attach(context.Background(), nil, models.OwnerReview, 2, []Upload{
		{Filename: "notes.txt", Content: strings.NewReader("x")},
		{Filename: "pic.jpg", Content: strings.NewReader("y")},
		{Filename: "archive.png.zip", Content: strings.NewReader("z")},
		{Filename: "noext", Content: strings.NewReader("w")},
	})
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.True(t, strings.HasSuffix(keys[0], ".jpg"))
	assert.Len(t, blobs.blobs, 1)
}

func TestAttach_ExtensionCaseInsensitive(t *testing.T) {
	rm := newFakeRepoManager()
	s := NewPhotoService(nil, newFakeBlobStore(), rm)

	keys, err := s.Attach(context.Background(), nil, models.OwnerLocation, 1, []Upload{
		{Filename: "PHOTO.JPG", Content: strings.NewReader("a")},
	})
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.True(t, strings.HasSuffix(keys[0], ".jpg"))
}

func TestPaths_ReturnsKeysInStorageOrder(t *testing.T) {
	rm := newFakeRepoManager()
	s := NewPhotoService(nil, newFakeBlobStore(), rm)

	for _, key := range []string{"location/1/a.png", "location/1/b.png"} {
		_, err := rm.photos.Create(context.Background(), &models.Photo{OwnerKind: models.OwnerLocation, OwnerID: 1, StorageKey: key})
		require.NoError(t, err)
	}
	_, err := rm.photos.Create(context.Background(), &models.Photo{OwnerKind: models.OwnerReview, OwnerID: 1, StorageKey: "review/1/c.png"})
	require.NoError(t, err)

	paths, err := s.Paths(context.Background(), models.OwnerLocation, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"location/1/a.png", "location/1/b.png"}, paths)
}

func TestOpen_UnknownKey(t *testing.T) {
	s := NewPhotoService(nil, newFakeBlobStore(), newFakeRepoManager())

	_, err := s.Open(context.Background(), "location/1/missing.png")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestOpen_ReturnsContent(t *testing.T) {
	blobs := newFakeBlobStore()
	s := NewPhotoService(nil, blobs, newFakeRepoManager())

	require.NoError(t, blobs.Save(context.Background(), "review/9/x.png", strings.NewReader("bytes")))

	rc, err := s.Open(context.Background(), "review/9/x.png")
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), b)
}
