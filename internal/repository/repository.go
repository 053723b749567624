package repository

import (
	"context"
)

// KeyValueStore is durable storage for whole serialized records.
type KeyValueStore interface {
	// Get returns the value stored under key. It returns an error matching
	// apperrors.ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by backends that depend on a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}
