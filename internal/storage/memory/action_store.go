package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"eos-swap-lab/internal/domain"
	"eos-swap-lab/internal/storage"
)

// ActionStore is an in-memory implementation of storage.ActionStore.
type ActionStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.RawAction // keyed by global sequence number
}

// NewActionStore creates a new in-memory action store.
func NewActionStore() *ActionStore {
	return &ActionStore{
		data: make(map[int64]*domain.RawAction),
	}
}

// Compile-time interface check.
var _ storage.ActionStore = (*ActionStore)(nil)

// Upsert stores an action keyed by its global sequence number, replacing any
// existing row with the same key.
func (s *ActionStore) Upsert(_ context.Context, a *domain.RawAction) error {
	if a == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *a
	s.data[a.GlobalSeq] = &copy
	return nil
}

// UpsertBatch stores a page of actions.
func (s *ActionStore) UpsertBatch(_ context.Context, actions []*domain.RawAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range actions {
		if a == nil {
			return storage.ErrInvalidInput
		}
	}
	for _, a := range actions {
		copy := *a
		s.data[a.GlobalSeq] = &copy
	}
	return nil
}

// GetBySeq retrieves an action by its global sequence number.
func (s *ActionStore) GetBySeq(_ context.Context, seq int64) (*domain.RawAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.data[seq]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *a
	return &copy, nil
}

// Count returns the number of stored actions.
func (s *ActionStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.data)), nil
}

// SelectCandidates retrieves transfer actions matching the filter, ordered by
// (block_time, trx_id, global_action_seq) ASC.
func (s *ActionStore) SelectCandidates(_ context.Context, f storage.CandidateFilter) ([]*domain.RawAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RawAction
	for _, a := range s.data {
		if !matchesFilter(a, f) {
			continue
		}
		copy := *a
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].BlockTime != result[j].BlockTime {
			return result[i].BlockTime < result[j].BlockTime
		}
		if result[i].TrxID != result[j].TrxID {
			return result[i].TrxID < result[j].TrxID
		}
		return result[i].GlobalSeq < result[j].GlobalSeq
	})

	return result, nil
}

func matchesFilter(a *domain.RawAction, f storage.CandidateFilter) bool {
	if a.ActionName != domain.ActionTransfer {
		return false
	}
	if f.StartTime != "" && a.BlockTime < f.StartTime {
		return false
	}
	if f.EndTime != "" && a.BlockTime > f.EndTime {
		return false
	}

	hasSwapCond := f.MemoPrefix != "" || len(f.ExactMemos) > 0 || f.FeeCollector != ""
	if !hasSwapCond {
		return true
	}

	if f.MemoPrefix != "" && strings.HasPrefix(a.Memo, f.MemoPrefix) {
		return true
	}
	for _, memo := range f.ExactMemos {
		if a.Memo == memo {
			return true
		}
	}
	if f.FeeCollector != "" && a.To == f.FeeCollector {
		return true
	}
	return false
}
