// Package filebackend implements the authoritative settings store as a
// JSON file on local disk. It stands in for the remote service when no
// backend URL is configured, with the same absence-versus-failure contract.
package filebackend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Store is a file-backed Backend implementation.
type Store struct {
	path string
}

// New creates a store writing to path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored blob. A missing file reports absence, not an error.
func (s *Store) Load(_ context.Context) ([]byte, bool, error) {
	blob, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return blob, true, nil
}

// Save writes the blob atomically via a temp file rename.
func (s *Store) Save(_ context.Context, blob []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(s.path), err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
