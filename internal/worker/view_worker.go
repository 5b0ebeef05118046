// Package worker keeps an in-memory derived view of the ledger in step with
// the record store. It refreshes on change events and on a periodic tick as a
// backup for lost messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/report"
	"ledger/internal/storage"
	"ledger/internal/view"
)

// ViewWorker recomputes the aggregates the view layer renders from and pushes
// the fresh category list into the synchronizer.
type ViewWorker struct {
	store     *storage.Repository
	sync      *view.Synchronizer
	listLimit int

	mu      sync.Mutex
	records []core.Record
	groups  []report.DayGroup
	loaded  bool
}

func NewViewWorker(store *storage.Repository, synchronizer *view.Synchronizer, listLimit int) *ViewWorker {
	return &ViewWorker{
		store:     store,
		sync:      synchronizer,
		listLimit: listLimit,
	}
}

// Refresh reloads the record window and recomputes the derived view. The
// first successful refresh also seeds the day selection from the newest
// group.
func (w *ViewWorker) Refresh(ctx context.Context) error {
	records, err := w.store.List(ctx, w.listLimit)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	groups := report.GroupByDay(records)
	categories := report.Categories(records)

	w.mu.Lock()
	w.records = records
	w.groups = groups
	first := !w.loaded
	w.loaded = true
	w.mu.Unlock()

	w.sync.RecordsChanged(categories)
	if first {
		w.sync.InitialLoad(groups)
	}

	slog.DebugContext(ctx, "View refreshed",
		"records", len(records),
		"days", len(groups),
		"categories", len(categories))

	return nil
}

// HandleRecordChange is the AMQP consumer hook. Every change event triggers a
// full refresh; the events carry ids only and the window is small enough that
// incremental updates are not worth the bookkeeping.
func (w *ViewWorker) HandleRecordChange(ctx context.Context) func(*amqp.RecordChangeMessage) error {
	return func(msg *amqp.RecordChangeMessage) error {
		slog.InfoContext(ctx, "Processing record change",
			"id", msg.ID, "op", msg.Op)
		return w.Refresh(ctx)
	}
}

// Run refreshes once immediately and then on every tick until ctx is done.
func (w *ViewWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.Refresh(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial view refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic view refresh failed", "error", err)
			}
		}
	}
}

// Records returns the last loaded record window.
func (w *ViewWorker) Records() []core.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]core.Record, len(w.records))
	copy(out, w.records)
	return out
}

// DayGroups returns the last computed day grouping, newest first.
func (w *ViewWorker) DayGroups() []report.DayGroup {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]report.DayGroup, len(w.groups))
	copy(out, w.groups)
	return out
}
