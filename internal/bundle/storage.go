// Package bundle loads macroarea rule bundles from blob storage and caches
// the parsed result so request handling never re-reads YAML.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound reports that a bundle file does not exist in the store,
// typically because the macroarea is unknown. Every Store implementation
// translates its backend's not-found error into it.
var ErrNotFound = errors.New("bundle file not found")

// Store abstracts blob storage for rule bundle files.
type Store interface {
	GetFile(ctx context.Context, macroarea, name string) ([]byte, error)
	PutFile(ctx context.Context, macroarea, name string, data []byte) error
}

// LocalStore implements Store using the local filesystem.
// Useful for development and testing.
type LocalStore struct {
	BaseDir string
}

// NewLocalStore creates a LocalStore rooted at the given directory.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{BaseDir: baseDir}
}

func (s *LocalStore) path(macroarea, name string) string {
	return filepath.Join(s.BaseDir, macroarea, name)
}

// GetFile reads one bundle file for a macroarea.
func (s *LocalStore) GetFile(ctx context.Context, macroarea, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(macroarea, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", macroarea, name, ErrNotFound)
	}
	return data, err
}

// PutFile stores one bundle file for a macroarea.
func (s *LocalStore) PutFile(ctx context.Context, macroarea, name string, data []byte) error {
	path := s.path(macroarea, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
