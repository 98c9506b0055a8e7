package postgres

import (
	"context"
	"fmt"

	"eos-swap-lab/internal/storage"
)

// FetchCursorStore is a PostgreSQL implementation of storage.FetchCursorStore.
// One row per account in the fetch_state table.
type FetchCursorStore struct {
	pool *Pool
}

// NewFetchCursorStore creates a new PostgreSQL fetch cursor store.
func NewFetchCursorStore(pool *Pool) *FetchCursorStore {
	return &FetchCursorStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FetchCursorStore = (*FetchCursorStore)(nil)

// Get returns the stored position for an account, 0 if none was saved yet.
func (s *FetchCursorStore) Get(ctx context.Context, account string) (int64, error) {
	if account == "" {
		return 0, storage.ErrInvalidInput
	}

	row := s.pool.QueryRow(ctx, `
		SELECT position FROM fetch_state WHERE account = $1
	`, account)

	var position int64
	if err := row.Scan(&position); err != nil {
		if isNotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get cursor for %s: %w", account, err)
	}
	return position, nil
}

// Set saves the position for an account. Uses upsert to handle the initial
// insert and subsequent updates.
func (s *FetchCursorStore) Set(ctx context.Context, account string, position int64) error {
	if account == "" || position < 0 {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO fetch_state (account, position, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (account) DO UPDATE
		SET position = EXCLUDED.position,
		    updated_at = NOW()
	`, account, position)
	if err != nil {
		return fmt.Errorf("set cursor for %s: %w", account, err)
	}
	return nil
}
