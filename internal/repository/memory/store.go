package memory

import (
	"context"
	"sync"

	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Store is an in-process KeyValueStore. Values do not survive a restart.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get returns a copy of the value under key.
func (s *Store) Get(ctx context.Context, key string) (_ []byte, err error) {
	_, end := database.TraceQuery(ctx, database.SystemMemory, "kv.get", key)
	defer func() { end(err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, apperrors.NotFound("record", key)
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, end := database.TraceQuery(ctx, database.SystemMemory, "kv.set", key)
	defer end(nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}
