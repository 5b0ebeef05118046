// Package services orchestrates ledger operations across the record store
// and the optional change-event queue.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/report"
	"ledger/internal/storage"
	"ledger/internal/transfer"

	"github.com/shopspring/decimal"
)

// LedgerService fronts the record store. Mutations are durable before the
// call returns; change events are published best effort afterwards and never
// fail the operation.
type LedgerService struct {
	store  *storage.Repository
	events *amqp.Client
}

func NewLedgerService(store *storage.Repository, events *amqp.Client) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
	}
}

// Summary is the quick overview shown above the record list.
type Summary struct {
	TotalRecords int64
	TotalAmount  decimal.Decimal
	ByCategory   []report.CategoryAmount
}

// CreateRecord validates and stores a new record, then announces it.
func (s *LedgerService) CreateRecord(ctx context.Context, amount decimal.Decimal, category, description string) (core.Record, error) {
	rec, err := s.store.Create(ctx, amount, category, description)
	if err != nil {
		return core.Record{}, fmt.Errorf("create record: %w", err)
	}

	s.publishChange(ctx, rec.ID, amqp.OpCreated)
	return rec, nil
}

// UpdateRecord applies a partial update to an existing record.
func (s *LedgerService) UpdateRecord(ctx context.Context, id int64, patch core.RecordPatch) (core.Record, error) {
	rec, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return core.Record{}, fmt.Errorf("update record: %w", err)
	}

	s.publishChange(ctx, rec.ID, amqp.OpUpdated)
	return rec, nil
}

// DeleteRecord removes a record. Unknown ids succeed; the end state is the same.
func (s *LedgerService) DeleteRecord(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	s.publishChange(ctx, id, amqp.OpDeleted)
	return nil
}

// GetRecord returns a single record by id.
func (s *LedgerService) GetRecord(ctx context.Context, id int64) (core.Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// ListRecords returns up to limit records, newest first.
func (s *LedgerService) ListRecords(ctx context.Context, limit int) ([]core.Record, error) {
	records, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Summary computes the overall totals from the full record set.
func (s *LedgerService) Summary(ctx context.Context) (Summary, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list records: %w", err)
	}
	return Summary{
		TotalRecords: int64(len(records)),
		TotalAmount:  report.TotalAmount(records),
		ByCategory:   report.TopCategories(records, 0),
	}, nil
}

// Export snapshots the store into a portable document.
func (s *LedgerService) Export(ctx context.Context) (transfer.Document, error) {
	return transfer.Export(ctx, s.store)
}

// Import merges a portable document into the store.
func (s *LedgerService) Import(ctx context.Context, doc transfer.Document) (transfer.Result, error) {
	res, err := transfer.Import(ctx, s.store, doc)
	if err != nil {
		return res, err
	}
	if res.Imported > 0 {
		// Coarse refresh signal; consumers reload rather than track ids.
		s.publishChange(ctx, 0, amqp.OpImported)
	}
	return res, nil
}

func (s *LedgerService) publishChange(ctx context.Context, id int64, op string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordChange(ctx, id, op); err != nil {
		// The mutation is already durable; a lost event is not worth failing for.
		slog.ErrorContext(ctx, "Failed to publish change event",
			"id", id, "op", op, "error", err)
	}
}

// Close closes the store and the event queue.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
