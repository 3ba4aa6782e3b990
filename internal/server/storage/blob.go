// Package storage abstracts the blob store holding photo attachments.
// Keys are server-generated, slash-separated paths; blobs are write-once.
package storage

import (
	"context"
	"io"
)

// Store is the file-blob store reachable by key.
type Store interface {
	// Save writes the blob under key. Keys are never reused.
	Save(ctx context.Context, key string, r io.Reader) error
	// Open returns a reader for the blob stored under key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
