package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"pawpath/internal/common"
	"pawpath/internal/filex"
)

// Local stores blobs as files under a base directory.
type Local struct {
	base string
}

// NewLocal prepares the base directory. Relative paths are created under the
// current working directory.
func NewLocal(dir string) (*Local, error) {
	if filepath.IsAbs(dir) {
		if err := os.MkdirAll(dir, 0o770); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
		return &Local{base: dir}, nil
	}

	base, err := filex.EnsureSubdDir(dir)
	if err != nil {
		return nil, err
	}
	return &Local{base: base}, nil
}

func (l *Local) path(key string) string {
	return filepath.Join(l.base, filepath.FromSlash(key))
}

// Save writes the blob under key. O_EXCL keeps blobs write-once: a key
// collision is a bug upstream, not something to paper over.
func (l *Local) Save(ctx context.Context, key string, r io.Reader) error {
	path := l.path(key)

	if err := os.MkdirAll(filepath.Dir(path), 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o660)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

// Open returns the blob content. An unknown key maps to
// common.ErrorNotFound so callers can render it as a 404.
func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(l.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}
