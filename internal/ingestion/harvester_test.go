package ingestion

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"eos-swap-lab/internal/domain"
	"eos-swap-lab/internal/storage/memory"
)

// fakeSource serves a fixed action sequence page by page, with optional
// injected failures per fetch position.
type fakeSource struct {
	actions  []*domain.RawAction
	failAt   map[int64]error // position -> error returned once
	fetches  int
	cancelAt int64 // call cancel during the fetch at this position
	cancel   context.CancelFunc
}

func (f *fakeSource) GetActions(_ context.Context, _ string, pos, offset int64) ([]*domain.RawAction, error) {
	f.fetches++

	if err, ok := f.failAt[pos]; ok {
		delete(f.failAt, pos)
		return nil, err
	}
	if f.cancel != nil && pos >= f.cancelAt {
		f.cancel()
	}

	if pos >= int64(len(f.actions)) {
		return nil, nil
	}
	end := pos + offset
	if end > int64(len(f.actions)) {
		end = int64(len(f.actions))
	}
	return f.actions[pos:end], nil
}

func feedActions(n int) []*domain.RawAction {
	actions := make([]*domain.RawAction, n)
	for i := range actions {
		actions[i] = &domain.RawAction{
			GlobalSeq:  int64(i),
			BlockTime:  fmt.Sprintf("2024-03-01T10:00:%02d.000", i),
			TrxID:      fmt.Sprintf("trx%03d", i),
			ActionName: domain.ActionTransfer,
			Quantity:   "1.0000 EFX",
		}
	}
	return actions
}

func TestHarvesterDrainsFeed(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{actions: feedActions(25)}
	actionStore := memory.NewActionStore()
	cursorStore := memory.NewFetchCursorStore()

	h := NewHarvester(HarvesterOptions{
		Source:      source,
		ActionStore: actionStore,
		CursorStore: cursorStore,
		Account:     "effecttokens",
		PageSize:    10,
		Delay:       time.Millisecond,
	})

	result, err := h.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !result.Exhausted {
		t.Error("result not marked exhausted")
	}
	if result.Pages != 3 || result.Actions != 25 {
		t.Errorf("result = %d pages, %d actions, want 3, 25", result.Pages, result.Actions)
	}
	if result.Position != 25 {
		t.Errorf("position = %d, want 25", result.Position)
	}

	count, err := actionStore.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 25 {
		t.Errorf("stored %d actions, want 25", count)
	}

	pos, err := cursorStore.Get(ctx, "effecttokens")
	if err != nil {
		t.Fatalf("cursor Get: %v", err)
	}
	if pos != 25 {
		t.Errorf("persisted cursor = %d, want 25", pos)
	}
}

func TestHarvesterResumesAfterFailure(t *testing.T) {
	ctx := context.Background()
	feed := feedActions(20)
	actionStore := memory.NewActionStore()
	cursorStore := memory.NewFetchCursorStore()

	source := &fakeSource{
		actions: feed,
		failAt:  map[int64]error{10: errors.New("upstream 500")},
	}

	opts := HarvesterOptions{
		Source:      source,
		ActionStore: actionStore,
		CursorStore: cursorStore,
		Account:     "effecttokens",
		PageSize:    10,
		Delay:       time.Millisecond,
	}

	// First run stores one page, then hits the terminal fetch failure.
	result, err := NewHarvester(opts).Run(ctx)
	if err == nil {
		t.Fatal("first run succeeded, want fetch error")
	}
	if result.Actions != 10 {
		t.Fatalf("first run stored %d actions, want 10", result.Actions)
	}

	pos, err := cursorStore.Get(ctx, "effecttokens")
	if err != nil {
		t.Fatalf("cursor Get: %v", err)
	}
	if pos != 10 {
		t.Fatalf("cursor after failure = %d, want 10", pos)
	}

	// Second run picks up from the persisted cursor and drains the rest.
	result, err = NewHarvester(opts).Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Actions != 10 || !result.Exhausted {
		t.Fatalf("second run = %d actions, exhausted=%v, want 10, true", result.Actions, result.Exhausted)
	}

	count, err := actionStore.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 20 {
		t.Errorf("stored %d actions total, want 20", count)
	}
}

func TestHarvesterCancellationIsGraceful(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	source := &fakeSource{
		actions:  feedActions(30),
		cancelAt: 10,
		cancel:   cancel,
	}
	actionStore := memory.NewActionStore()
	cursorStore := memory.NewFetchCursorStore()

	h := NewHarvester(HarvesterOptions{
		Source:      source,
		ActionStore: actionStore,
		CursorStore: cursorStore,
		Account:     "effecttokens",
		PageSize:    10,
		Delay:       time.Millisecond,
	})

	// Cancellation during the second fetch is not an error, and the page in
	// flight is still persisted before the loop notices.
	result, err := h.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Exhausted {
		t.Error("cancelled run marked exhausted")
	}
	if result.Actions != 20 {
		t.Errorf("stored %d actions before stopping, want 20", result.Actions)
	}

	pos, err := cursorStore.Get(context.Background(), "effecttokens")
	if err != nil {
		t.Fatalf("cursor Get: %v", err)
	}
	if pos != 20 {
		t.Errorf("cursor = %d, want 20", pos)
	}
}

func TestHarvesterEmptyFeed(t *testing.T) {
	h := NewHarvester(HarvesterOptions{
		Source:      &fakeSource{},
		ActionStore: memory.NewActionStore(),
		CursorStore: memory.NewFetchCursorStore(),
		Account:     "effecttokens",
		PageSize:    10,
		Delay:       time.Millisecond,
	})

	result, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Exhausted || result.Pages != 0 || result.Position != 0 {
		t.Fatalf("result = %+v, want exhausted at position 0 with no pages", result)
	}
}

func TestHarvesterReingestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	feed := feedActions(10)
	actionStore := memory.NewActionStore()

	opts := HarvesterOptions{
		Source:      &fakeSource{actions: feed},
		ActionStore: actionStore,
		CursorStore: memory.NewFetchCursorStore(),
		Account:     "effecttokens",
		PageSize:    10,
		Delay:       time.Millisecond,
	}

	if _, err := NewHarvester(opts).Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// A fresh cursor store makes the second run refetch from zero. The
	// action store replaces rows by sequence number instead of duplicating.
	opts.Source = &fakeSource{actions: feed}
	opts.CursorStore = memory.NewFetchCursorStore()
	if _, err := NewHarvester(opts).Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}

	count, err := actionStore.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 10 {
		t.Errorf("stored %d actions after re-ingest, want 10", count)
	}
}
