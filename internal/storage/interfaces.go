package storage

import (
	"context"
	"time"

	"eos-swap-lab/internal/domain"
)

// CandidateFilter selects the transfer actions that might belong to swap
// transactions. A row matches when any of the memo/recipient conditions hold;
// the optional time bounds are inclusive.
type CandidateFilter struct {
	MemoPrefix   string   // memo starts with this prefix
	ExactMemos   []string // memo equals one of these
	FeeCollector string   // recipient equals the fee-collector account
	StartTime    string   // block_time lower bound, "" for none
	EndTime      string   // block_time upper bound, "" for none
}

// ActionStore provides access to the raw actions ledger.
type ActionStore interface {
	// Upsert stores an action keyed by its global sequence number.
	// Re-inserting the same sequence number replaces the row, never duplicates.
	Upsert(ctx context.Context, a *domain.RawAction) error

	// UpsertBatch stores a page of actions atomically.
	UpsertBatch(ctx context.Context, actions []*domain.RawAction) error

	// GetBySeq retrieves an action by its global sequence number.
	// Returns ErrNotFound if it does not exist.
	GetBySeq(ctx context.Context, seq int64) (*domain.RawAction, error)

	// Count returns the number of stored actions.
	Count(ctx context.Context) (int64, error)

	// SelectCandidates retrieves transfer actions matching the filter, ordered
	// by (block_time, trx_id) ASC. Downstream grouping depends on this order.
	SelectCandidates(ctx context.Context, f CandidateFilter) ([]*domain.RawAction, error)
}

// FetchCursor marks ingestion progress into the remote feed for one account.
type FetchCursor struct {
	Account   string
	Position  int64
	UpdatedAt time.Time
}

// FetchCursorStore persists per-account resume cursors. The cursor must only
// be advanced after the corresponding batch has been durably stored.
type FetchCursorStore interface {
	// Get returns the stored position for an account, 0 if none was saved yet.
	Get(ctx context.Context, account string) (int64, error)

	// Set saves the position for an account, overwriting any previous value.
	Set(ctx context.Context, account string, position int64) error
}

// TradeStore archives reconstructed trades for analytical querying.
type TradeStore interface {
	// InsertBulk appends a batch of trades.
	InsertBulk(ctx context.Context, trades []*domain.Trade) error

	// GetByTimeRange retrieves trades within [start, end], ordered by
	// (timestamp, trx_id) ASC.
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.Trade, error)
}
