package trades

import (
	"context"
	"fmt"
	"log"

	"eos-swap-lab/internal/domain"
	"eos-swap-lab/internal/observability"
	"eos-swap-lab/internal/storage"
)

// DefaultFilter selects the transfer actions that can belong to swap
// transactions on the default pair: pool-bound legs carry a "swap," memo,
// pool-sent legs carry the Defibox memo, and the fee leg is addressed to the
// fee collector.
func DefaultFilter() storage.CandidateFilter {
	return storage.CandidateFilter{
		MemoPrefix:   swapMemoPrefix,
		ExactMemos:   []string{"Defibox: swap token"},
		FeeCollector: DefaultFeeCollector,
	}
}

// Reconstructor rebuilds swap trades from the stored action ledger:
// candidate query, contiguous grouping, three-leg classification.
type Reconstructor struct {
	actions    storage.ActionStore
	classifier *Classifier
	logger     *log.Logger
	metrics    *observability.Metrics
}

// ReconstructorOptions contains configuration for creating a Reconstructor.
type ReconstructorOptions struct {
	ActionStore  storage.ActionStore
	FeeCollector string // defaults to DefaultFeeCollector
	Logger       *log.Logger
	Metrics      *observability.Metrics // optional
}

// NewReconstructor creates a new trade reconstructor.
func NewReconstructor(opts ReconstructorOptions) *Reconstructor {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Reconstructor{
		actions:    opts.ActionStore,
		classifier: NewClassifier(opts.FeeCollector, logger),
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// ReconstructResult contains the trade stream and filtering statistics.
type ReconstructResult struct {
	Trades     []*domain.Trade
	GroupsSeen int
	Rejected   map[RejectReason]int
}

// Reconstruct loads candidate actions matching the filter and derives the
// trade stream from them. Rejected groups are counted by reason, never
// surfaced as errors.
func (r *Reconstructor) Reconstruct(ctx context.Context, filter storage.CandidateFilter) (*ReconstructResult, error) {
	candidates, err := r.actions.SelectCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("select candidate actions: %w", err)
	}

	result := &ReconstructResult{
		Rejected: make(map[RejectReason]int),
	}

	for _, group := range GroupByTransaction(candidates) {
		result.GroupsSeen++

		trade, reason := r.classifier.Classify(group)
		if reason != RejectNone {
			result.Rejected[reason]++
			if r.metrics != nil {
				r.metrics.GroupsRejected.WithLabelValues(reason.String()).Inc()
			}
			continue
		}
		result.Trades = append(result.Trades, trade)
		if r.metrics != nil {
			r.metrics.TradesReconstructed.Inc()
		}
	}

	r.logger.Printf("Reconstructed %d trades from %d candidate actions (%d groups, %d rejected)",
		len(result.Trades), len(candidates), result.GroupsSeen, result.GroupsSeen-len(result.Trades))

	return result, nil
}
