package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"eos-swap-lab/internal/domain"
	"eos-swap-lab/internal/storage"
)

// ActionStore implements storage.ActionStore using PostgreSQL.
type ActionStore struct {
	pool *Pool
}

// NewActionStore creates a new ActionStore.
func NewActionStore(pool *Pool) *ActionStore {
	return &ActionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ActionStore = (*ActionStore)(nil)

const upsertActionQuery = `
	INSERT INTO actions (
		global_action_seq, block_num, block_time, trx_id, actor, action_name,
		from_account, to_account, memo, quantity, contract, raw_data, processed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (global_action_seq) DO UPDATE SET
		block_num = EXCLUDED.block_num,
		block_time = EXCLUDED.block_time,
		trx_id = EXCLUDED.trx_id,
		actor = EXCLUDED.actor,
		action_name = EXCLUDED.action_name,
		from_account = EXCLUDED.from_account,
		to_account = EXCLUDED.to_account,
		memo = EXCLUDED.memo,
		quantity = EXCLUDED.quantity,
		contract = EXCLUDED.contract,
		raw_data = EXCLUDED.raw_data,
		processed_at = EXCLUDED.processed_at
`

// Upsert stores an action keyed by its global sequence number.
func (s *ActionStore) Upsert(ctx context.Context, a *domain.RawAction) error {
	if a == nil {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, upsertActionQuery, upsertArgs(a)...)
	if err != nil {
		return fmt.Errorf("upsert action %d: %w", a.GlobalSeq, err)
	}
	return nil
}

// UpsertBatch stores a page of actions in one transaction.
func (s *ActionStore) UpsertBatch(ctx context.Context, actions []*domain.RawAction) error {
	if len(actions) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range actions {
		if a == nil {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, upsertActionQuery, upsertArgs(a)...); err != nil {
			return fmt.Errorf("upsert action %d in batch: %w", a.GlobalSeq, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func upsertArgs(a *domain.RawAction) []any {
	return []any{
		a.GlobalSeq,
		a.BlockNum,
		a.BlockTime,
		a.TrxID,
		a.Actor,
		a.ActionName,
		a.From,
		a.To,
		a.Memo,
		a.Quantity,
		a.Contract,
		a.RawData,
		a.ProcessedAt,
	}
}

const selectActionColumns = `
	global_action_seq, block_num, block_time, trx_id, actor, action_name,
	from_account, to_account, memo, quantity, contract, raw_data, processed_at
`

// GetBySeq retrieves an action by its global sequence number.
func (s *ActionStore) GetBySeq(ctx context.Context, seq int64) (*domain.RawAction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectActionColumns+` FROM actions WHERE global_action_seq = $1`, seq)

	a, err := scanAction(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get action by seq: %w", err)
	}
	return a, nil
}

// Count returns the number of stored actions.
func (s *ActionStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM actions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return n, nil
}

// SelectCandidates retrieves transfer actions matching the filter, ordered by
// (block_time, trx_id) ASC. The sequence number is a final tie-break so the
// order is total.
func (s *ActionStore) SelectCandidates(ctx context.Context, f storage.CandidateFilter) ([]*domain.RawAction, error) {
	query := `SELECT ` + selectActionColumns + ` FROM actions WHERE action_name = $1`
	args := []any{domain.ActionTransfer}

	var swapConds []string
	if f.MemoPrefix != "" {
		args = append(args, escapeLike(f.MemoPrefix)+"%")
		swapConds = append(swapConds, fmt.Sprintf("memo LIKE $%d", len(args)))
	}
	if len(f.ExactMemos) > 0 {
		args = append(args, f.ExactMemos)
		swapConds = append(swapConds, fmt.Sprintf("memo = ANY($%d)", len(args)))
	}
	if f.FeeCollector != "" {
		args = append(args, f.FeeCollector)
		swapConds = append(swapConds, fmt.Sprintf("to_account = $%d", len(args)))
	}
	if len(swapConds) > 0 {
		query += " AND (" + strings.Join(swapConds, " OR ") + ")"
	}

	if f.StartTime != "" {
		args = append(args, f.StartTime)
		query += fmt.Sprintf(" AND block_time >= $%d", len(args))
	}
	if f.EndTime != "" {
		args = append(args, f.EndTime)
		query += fmt.Sprintf(" AND block_time <= $%d", len(args))
	}

	query += " ORDER BY block_time ASC, trx_id ASC, global_action_seq ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select candidate actions: %w", err)
	}
	defer rows.Close()

	return scanActions(rows)
}

// escapeLike escapes LIKE metacharacters in a literal prefix.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// scanAction scans a single row into a RawAction.
func scanAction(row pgx.Row) (*domain.RawAction, error) {
	var a domain.RawAction
	err := row.Scan(
		&a.GlobalSeq,
		&a.BlockNum,
		&a.BlockTime,
		&a.TrxID,
		&a.Actor,
		&a.ActionName,
		&a.From,
		&a.To,
		&a.Memo,
		&a.Quantity,
		&a.Contract,
		&a.RawData,
		&a.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// scanActions scans multiple rows into a slice of RawAction.
func scanActions(rows pgx.Rows) ([]*domain.RawAction, error) {
	var actions []*domain.RawAction

	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan action row: %w", err)
		}
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action rows: %w", err)
	}

	return actions, nil
}
