// Package file stores each key as one JSON file in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store is a KeyValueStore backed by one file per key. Writes go to a
// temporary file that is renamed over the target, so readers never observe
// a partially written record.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the directory if needed and returns a store rooted at it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) (string, error) {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid storage key %q", key))
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get reads the file for key.
func (s *Store) Get(ctx context.Context, key string) (_ []byte, err error) {
	_, end := database.TraceQuery(ctx, database.SystemFile, "kv.get", key)
	defer func() { end(err) }()

	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NotFound("record", key)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// Set atomically replaces the file for key.
func (s *Store) Set(ctx context.Context, key string, value []byte) (err error) {
	_, end := database.TraceQuery(ctx, database.SystemFile, "kv.set", key)
	defer func() { end(err) }()

	p, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("rename %s: %w", p, err)
	}
	return nil
}

// Ping reports whether the data directory is still usable.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", s.dir)
	}
	return nil
}
