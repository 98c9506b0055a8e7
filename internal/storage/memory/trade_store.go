package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"eos-swap-lab/internal/domain"
	"eos-swap-lab/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
// Like the ClickHouse archive it replaces rows sharing (timestamp, trx_id).
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.Trade),
	}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

func tradeKey(t *domain.Trade) string {
	return t.Timestamp.UTC().Format(time.RFC3339Nano) + "|" + t.TrxID
}

// InsertBulk appends a batch of trades.
func (s *TradeStore) InsertBulk(_ context.Context, trades []*domain.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range trades {
		if t == nil {
			return storage.ErrInvalidInput
		}
	}
	for _, t := range trades {
		copy := *t
		s.data[tradeKey(t)] = &copy
	}
	return nil
}

// GetByTimeRange retrieves trades within [start, end], ordered by
// (timestamp, trx_id) ASC.
func (s *TradeStore) GetByTimeRange(_ context.Context, start, end time.Time) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.Timestamp.Before(start) || t.Timestamp.After(end) {
			continue
		}
		copy := *t
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.Before(result[j].Timestamp)
		}
		return result[i].TrxID < result[j].TrxID
	})

	return result, nil
}
