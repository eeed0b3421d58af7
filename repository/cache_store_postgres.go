package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quickcart-emporium/logger"
)

const createCacheTableSQL = `
	CREATE TABLE IF NOT EXISTS catalog_cache (
		key        TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)
`

// PostgresCacheStore shares cached catalog responses between server replicas
type PostgresCacheStore struct {
	db *sql.DB
}

// NewPostgresCacheStore creates a PostgresCacheStore on an open connection
func NewPostgresCacheStore(conn *sql.DB) *PostgresCacheStore {
	return &PostgresCacheStore{db: conn}
}

// Ensure PostgresCacheStore implements CacheStoreInterface
var _ CacheStoreInterface = (*PostgresCacheStore)(nil)

// EnsureSchema creates the cache table if it does not exist
func (s *PostgresCacheStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createCacheTableSQL); err != nil {
		return fmt.Errorf("failed to create catalog_cache table: %w", err)
	}
	return nil
}

func (s *PostgresCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `SELECT payload FROM catalog_cache WHERE key = $1 AND expires_at > now()`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return payload, true, nil
}

func (s *PostgresCacheStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	query := `
		INSERT INTO catalog_cache (key, payload, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, payload, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (s *PostgresCacheStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM catalog_cache WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// PurgeExpired removes expired rows and returns how many were deleted
func (s *PostgresCacheStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM catalog_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged rows: %w", err)
	}
	if n > 0 {
		logger.Log.Infof("🧹 PurgeExpired: Removed %d expired cache entries", n)
	}
	return n, nil
}
