// internal/storage/storage.go
//
// Blob storage for uploaded images.
//
// Context
// -------
// The CMS accepts multipart uploads and hands the bytes here; the metadata
// row lives in internal/asset.  Store is a small interface so deployments
// can swap the local-disk implementation for an object store without
// touching the handlers.  Keys are relative paths such as
// "2026/08/3f2a….png"; the local implementation roots them under BasePath.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store is the blob contract the CMS depends on.
type Store interface {
	// Save writes r under key and returns the byte count.
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	// Open returns a reader for key.  Callers close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes the blob.  Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Local stores blobs on the filesystem under BasePath.
type Local struct {
	BasePath string
}

var _ Store = (*Local)(nil)

// NewLocal verifies BasePath exists (creating it if needed) and returns the
// store.
func NewLocal(basePath string) (*Local, error) {
	if basePath == "" {
		return nil, fmt.Errorf("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base path: %w", err)
	}
	return &Local{BasePath: basePath}, nil
}

// Save writes the blob, creating intermediate directories.  Partial writes
// are cleaned up on error.
func (l *Local) Save(_ context.Context, key string, r io.Reader) (int64, error) {
	full, err := l.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("storage: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("storage: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return 0, fmt.Errorf("storage: write %s: %w", key, err)
	}
	return n, nil
}

// Open returns the blob for reading.
func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	full, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", key, err)
	}
	return f, nil
}

// Remove deletes the blob; a missing key is a no-op.
func (l *Local) Remove(_ context.Context, key string) error {
	full, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}

// resolve joins key under BasePath and rejects traversal outside it.
func (l *Local) resolve(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", fmt.Errorf("storage: key is required")
	}
	full := filepath.Join(l.BasePath, filepath.FromSlash(key))
	base := filepath.Clean(l.BasePath) + string(os.PathSeparator)
	if !strings.HasPrefix(full, base) {
		return "", fmt.Errorf("storage: key %q escapes base path", key)
	}
	return full, nil
}
