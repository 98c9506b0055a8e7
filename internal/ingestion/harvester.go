package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eos-swap-lab/internal/domain"
	"eos-swap-lab/internal/observability"
	"eos-swap-lab/internal/storage"
)

// ActionSource fetches one page of account history starting at pos.
// An empty page signals end of available history, not a failure.
type ActionSource interface {
	GetActions(ctx context.Context, account string, pos, offset int64) ([]*domain.RawAction, error)
}

// Harvester drives the source-to-store ingestion loop for one account.
// Each iteration fetches the page at the persisted cursor, upserts it, then
// advances the cursor, so the cursor never points past durably stored data
// and an interrupted run resumes exactly where it left off.
type Harvester struct {
	source   ActionSource
	actions  storage.ActionStore
	cursors  storage.FetchCursorStore
	account  string
	pageSize int64
	delay    time.Duration
	logger   *log.Logger
	metrics  *observability.Metrics
}

// HarvesterOptions contains configuration for creating a Harvester.
type HarvesterOptions struct {
	Source      ActionSource
	ActionStore storage.ActionStore
	CursorStore storage.FetchCursorStore
	Account     string
	PageSize    int64         // defaults to 100
	Delay       time.Duration // inter-request politeness delay, defaults to 1s
	Logger      *log.Logger
	Metrics     *observability.Metrics // optional
}

// NewHarvester creates a new history harvester.
func NewHarvester(opts HarvesterOptions) *Harvester {
	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = 100
	}

	delay := opts.Delay
	if delay == 0 {
		delay = time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Harvester{
		source:   opts.Source,
		actions:  opts.ActionStore,
		cursors:  opts.CursorStore,
		account:  opts.Account,
		pageSize: pageSize,
		delay:    delay,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// HarvestResult contains statistics from a harvest run.
type HarvestResult struct {
	Pages     int
	Actions   int
	Position  int64 // cursor position after the run
	Exhausted bool  // true when the feed returned an empty page
	Duration  time.Duration
}

// Run consumes the feed until it is exhausted, the context is cancelled, or a
// terminal failure occurs. Cancellation is checked at iteration boundaries
// only and is a graceful stop, not a failure: the batch in flight is finished
// and persisted first. On a terminal fetch or store failure the cursor keeps
// its last confirmed value, so a later run is safe to resume.
func (h *Harvester) Run(ctx context.Context) (*HarvestResult, error) {
	start := time.Now()
	result := &HarvestResult{}

	pos, err := h.cursors.Get(ctx, h.account)
	if err != nil {
		return result, fmt.Errorf("read cursor for %s: %w", h.account, err)
	}
	result.Position = pos

	h.logger.Printf("Starting harvest for %s from position %d", h.account, pos)

	for {
		select {
		case <-ctx.Done():
			h.logger.Printf("Harvest interrupted, progress saved at position %d", pos)
			result.Duration = time.Since(start)
			return result, nil
		default:
		}

		fetchStart := time.Now()
		page, err := h.source.GetActions(ctx, h.account, pos, h.pageSize)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				h.logger.Printf("Harvest interrupted, progress saved at position %d", pos)
				result.Duration = time.Since(start)
				return result, nil
			}
			if h.metrics != nil {
				h.metrics.FetchErrors.Inc()
			}
			result.Duration = time.Since(start)
			return result, fmt.Errorf("fetch page at position %d: %w", pos, err)
		}
		if h.metrics != nil {
			h.metrics.FetchLatency.Observe(time.Since(fetchStart).Seconds())
		}

		if len(page) == 0 {
			h.logger.Printf("No more actions to fetch, history exhausted at position %d", pos)
			result.Exhausted = true
			break
		}

		if err := h.actions.UpsertBatch(ctx, page); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("store batch at position %d: %w", pos, err)
		}

		pos += int64(len(page))
		if err := h.cursors.Set(ctx, h.account, pos); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("persist cursor at position %d: %w", pos, err)
		}

		result.Pages++
		result.Actions += len(page)
		result.Position = pos

		if h.metrics != nil {
			h.metrics.PagesFetched.Inc()
			h.metrics.ActionsStored.Add(float64(len(page)))
			h.metrics.CursorPosition.Set(float64(pos))
		}

		h.logger.Printf("Processed %d actions, new position %d", len(page), pos)

		select {
		case <-ctx.Done():
			h.logger.Printf("Harvest interrupted, progress saved at position %d", pos)
			result.Duration = time.Since(start)
			return result, nil
		case <-time.After(h.delay):
		}
	}

	result.Duration = time.Since(start)
	h.logger.Printf("Harvest complete: %d actions in %d pages in %v",
		result.Actions, result.Pages, result.Duration)

	return result, nil
}
