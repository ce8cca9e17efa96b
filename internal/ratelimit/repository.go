package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yashng7/zero-grid/internal/platform/db"
)

// PGStore persists counters in the rate_limits table.
type PGStore struct {
	db db.DBTX
}

// NewPGStore constructs a PostgreSQL counter store.
func NewPGStore(conn db.DBTX) *PGStore {
	return &PGStore{db: conn}
}

// Get returns the counter for key or nil when absent.
func (s *PGStore) Get(ctx context.Context, key string) (*Counter, error) {
	var c Counter
	err := s.db.QueryRow(ctx, `SELECT count, reset_at FROM rate_limits WHERE key = $1`, key).Scan(&c.Count, &c.ResetAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ratelimit: get %s: %w", key, err)
	}
	return &c, nil
}

// Reset upserts the counter with a count of one and a fresh window.
func (s *PGStore) Reset(ctx context.Context, key string, resetAt time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rate_limits (id, key, count, reset_at, created_at, updated_at)
		VALUES ($1, $2, 1, $3, now(), now())
		ON CONFLICT (key) DO UPDATE
		SET count = 1, reset_at = EXCLUDED.reset_at, updated_at = now()
	`, uuid.NewString(), key, resetAt)
	if err != nil {
		return fmt.Errorf("ratelimit: reset %s: %w", key, err)
	}
	return nil
}

// Increment adds one to the counter and returns the new value.
func (s *PGStore) Increment(ctx context.Context, key string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		UPDATE rate_limits
		SET count = count + 1, updated_at = now()
		WHERE key = $1
		RETURNING count
	`, key).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ratelimit: increment %s: %w", key, err)
	}
	return count, nil
}

// PurgeExpired deletes counters whose window ended before the cutoff.
func (s *PGStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM rate_limits WHERE reset_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("ratelimit: purge: %w", err)
	}
	return tag.RowsAffected(), nil
}
