package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ledger/internal/core"

	"github.com/shopspring/decimal"
)

// Store is the slice of the record store the transfer path needs.
type Store interface {
	ListAll(ctx context.Context) ([]core.Record, error)
	Insert(ctx context.Context, rec core.Record) (core.Record, error)
	ExistsNaturalKey(ctx context.Context, ts time.Time, amount decimal.Decimal, description string) (bool, error)
	ListPantryItems(ctx context.Context) ([]core.PantryItem, error)
	InsertPantryItem(ctx context.Context, item core.PantryItem) error
	PantryItemExists(ctx context.Context, name, createdAt string) (bool, error)
}

// Result reports how an import went. Per-record failures are folded into the
// skip counts by design; only a structurally invalid document aborts.
type Result struct {
	Imported       int `json:"imported"`
	Skipped        int `json:"skipped"`
	PantryImported int `json:"pantry_imported"`
	PantrySkipped  int `json:"pantry_skipped"`
}

// Export snapshots the whole store into a portable document. It only reads;
// calling it repeatedly yields equivalent documents.
func Export(ctx context.Context, store Store) (Document, error) {
	records, err := store.ListAll(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("list records: %w", err)
	}

	doc := Document{
		Version:    DocumentVersion,
		ExportedAt: time.Now().UTC(),
	}
	doc.Expenses = make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		entry := recordEntry{
			ID:          rec.ID,
			Amount:      json.Number(rec.Amount.String()),
			Category:    rec.Category,
			Description: rec.Description,
			Timestamp:   rec.Timestamp.UTC().Format(time.RFC3339Nano),
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			return Document{}, fmt.Errorf("marshal record %d: %w", rec.ID, err)
		}
		doc.Expenses = append(doc.Expenses, raw)
	}

	items, err := store.ListPantryItems(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("list pantry items: %w", err)
	}
	for _, item := range items {
		entry := pantryEntry{
			ID:          item.ID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			CreatedAt:   item.CreatedAt,
			IsConsumed:  item.IsConsumed,
			GroceryType: item.GroceryType,
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			return Document{}, fmt.Errorf("marshal pantry item %d: %w", item.ID, err)
		}
		doc.PantryItems = append(doc.PantryItems, raw)
	}

	slog.InfoContext(ctx, "Export complete",
		"records", len(doc.Expenses),
		"pantry_items", len(doc.PantryItems))

	return doc, nil
}

// Import merges a document into the store. A record is already present iff an
// existing record matches on (timestamp, amount, description); matches are
// skipped, which is what makes re-importing the same document a no-op. The
// import is not transactional: a crash mid-way leaves inserted records
// committed, and retrying is safe because of the natural-key match.
func Import(ctx context.Context, store Store, doc Document) (Result, error) {
	var res Result

	for _, raw := range doc.Expenses {
		rec, err := decodeRecordEntry(raw)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed record", "error", err)
			res.Skipped++
			continue
		}
		if err := rec.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid record", "error", err)
			res.Skipped++
			continue
		}

		exists, err := store.ExistsNaturalKey(ctx, rec.Timestamp, rec.Amount, rec.Description)
		if err != nil {
			return res, fmt.Errorf("natural key lookup: %w", err)
		}
		if exists {
			res.Skipped++
			continue
		}

		if _, err := store.Insert(ctx, rec); err != nil {
			slog.WarnContext(ctx, "Skipping record that failed to insert", "error", err)
			res.Skipped++
			continue
		}
		res.Imported++
	}

	for _, raw := range doc.PantryItems {
		var entry pantryEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			slog.WarnContext(ctx, "Skipping malformed pantry item", "error", err)
			res.PantrySkipped++
			continue
		}

		exists, err := store.PantryItemExists(ctx, entry.Name, entry.CreatedAt)
		if err != nil {
			return res, fmt.Errorf("pantry natural key lookup: %w", err)
		}
		if exists {
			res.PantrySkipped++
			continue
		}

		item := core.PantryItem{
			Name:        entry.Name,
			Quantity:    entry.Quantity,
			Unit:        entry.Unit,
			CreatedAt:   entry.CreatedAt,
			IsConsumed:  entry.IsConsumed,
			GroceryType: entry.GroceryType,
		}
		if err := store.InsertPantryItem(ctx, item); err != nil {
			slog.WarnContext(ctx, "Skipping pantry item that failed to insert", "error", err)
			res.PantrySkipped++
			continue
		}
		res.PantryImported++
	}

	slog.InfoContext(ctx, "Import complete",
		"imported", res.Imported,
		"skipped", res.Skipped,
		"pantry_imported", res.PantryImported,
		"pantry_skipped", res.PantrySkipped)

	return res, nil
}

// decodeRecordEntry turns a raw document entry into a record ready for
// insert. The entry's id is dropped here: identities never cross devices.
func decodeRecordEntry(raw json.RawMessage) (core.Record, error) {
	var entry recordEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return core.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}

	amount, err := decimal.NewFromString(entry.Amount.String())
	if err != nil {
		return core.Record{}, fmt.Errorf("parse amount %q: %w", entry.Amount, err)
	}

	ts, err := core.ParseTimestamp(entry.Timestamp)
	if err != nil {
		return core.Record{}, fmt.Errorf("parse timestamp: %w", err)
	}

	return core.Record{
		Amount:      amount,
		Category:    entry.Category,
		Description: entry.Description,
		Timestamp:   ts,
	}, nil
}
