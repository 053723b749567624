package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Store implements repository.KeyValueStore using Redis strings without TTL.
type Store struct {
	client *redis.Client
	prefix string
}

// New creates a Redis-backed store. prefix is prepended to every key.
func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Get reads key from Redis.
func (s *Store) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "kv.get", "GET")
	defer func() { end(err) }()

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NotFound("record", key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Set writes key to Redis with no expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "kv.set", "SET")
	defer func() { end(err) }()

	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
