package memory

import (
	"context"
	"sync"
	"time"

	"eos-swap-lab/internal/storage"
)

// FetchCursorStore is an in-memory implementation of storage.FetchCursorStore.
type FetchCursorStore struct {
	mu   sync.RWMutex
	data map[string]storage.FetchCursor
}

// NewFetchCursorStore creates a new in-memory fetch cursor store.
func NewFetchCursorStore() *FetchCursorStore {
	return &FetchCursorStore{
		data: make(map[string]storage.FetchCursor),
	}
}

// Compile-time interface check.
var _ storage.FetchCursorStore = (*FetchCursorStore)(nil)

// Get returns the stored position for an account, 0 if none was saved yet.
func (s *FetchCursorStore) Get(_ context.Context, account string) (int64, error) {
	if account == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cursor, ok := s.data[account]
	if !ok {
		return 0, nil
	}
	return cursor.Position, nil
}

// Set saves the position for an account, overwriting any previous value.
func (s *FetchCursorStore) Set(_ context.Context, account string, position int64) error {
	if account == "" || position < 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[account] = storage.FetchCursor{
		Account:   account,
		Position:  position,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}
