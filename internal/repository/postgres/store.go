package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	selectValue = `SELECT value FROM kv_store WHERE key = $1`
	upsertValue = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// Store implements repository.KeyValueStore on the kv_store table.
type Store struct {
	db database.DBTX
}

// New creates a PostgreSQL-backed store.
func New(db database.DBTX) *Store {
	return &Store{db: db}
}

// Get reads the value for key.
func (s *Store) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "kv.get", selectValue)
	defer func() { end(err) }()

	var value []byte
	err = s.db.QueryRow(ctx, selectValue, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("record", key)
	}
	if err != nil {
		return nil, fmt.Errorf("select kv %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value for key. value must be valid JSON.
func (s *Store) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "kv.set", upsertValue)
	defer func() { end(err) }()

	if _, err := s.db.Exec(ctx, upsertValue, key, value); err != nil {
		return fmt.Errorf("upsert kv %s: %w", key, err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
