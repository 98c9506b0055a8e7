package clickhouse

import (
	"context"
	"fmt"
	"time"

	"eos-swap-lab/internal/domain"
	"eos-swap-lab/internal/storage"
)

// TradeStore archives reconstructed trades in ClickHouse for analytical
// queries. The table is a ReplacingMergeTree keyed by (timestamp, trx_id), so
// re-archiving the same reconstruction run does not accumulate duplicates.
type TradeStore struct {
	conn *Conn
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(conn *Conn) *TradeStore {
	return &TradeStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// InsertBulk appends a batch of trades.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trades (
			timestamp, trx_id, trader, direction, efx_amount, nfx_amount, ratio, fee_amount
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare trade batch: %w", err)
	}

	for _, t := range trades {
		err := batch.Append(
			t.Timestamp,
			t.TrxID,
			t.Trader,
			string(t.Direction),
			t.EFXAmount,
			t.NFXAmount,
			t.Ratio,
			t.FeeAmount,
		)
		if err != nil {
			return fmt.Errorf("append trade %s: %w", t.TrxID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send trade batch: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves trades within [start, end], ordered by
// (timestamp, trx_id) ASC.
func (s *TradeStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.Trade, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT timestamp, trx_id, trader, direction, efx_amount, nfx_amount, ratio, fee_amount
		FROM trades FINAL
		WHERE timestamp >= $1 AND timestamp <= $2
		ORDER BY timestamp ASC, trx_id ASC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("get trades by time range: %w", err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		var t domain.Trade
		var direction string

		err := rows.Scan(
			&t.Timestamp,
			&t.TrxID,
			&t.Trader,
			&direction,
			&t.EFXAmount,
			&t.NFXAmount,
			&t.Ratio,
			&t.FeeAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		t.Direction = domain.Direction(direction)

		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
