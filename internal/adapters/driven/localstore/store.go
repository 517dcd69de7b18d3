package localstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crisislab/newsroom-core/internal/core/domain"
	"github.com/crisislab/newsroom-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.CredentialStore = (*Store)(nil)

// Store is a file-backed key-value store, the durable analogue of browser
// local storage. Each key maps to one file under the store directory.
// Values are plain strings; this is a convenience, not a security boundary.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// path maps a key to its backing file. Keys are restricted to a flat
// filename-safe alphabet; anything else is percent-free escaped with
// underscores.
func (s *Store) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.dir, safe)
}

// Set persists a value under a key, overwriting any previous value.
func (s *Store) Set(key, value string) error {
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Get returns the stored value, or domain.ErrNotFound.
func (s *Store) Get(key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
