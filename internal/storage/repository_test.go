package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ledger/internal/core"

	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, decimal.NewFromInt(42), "food", "lunch")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected store-assigned id")
	}
	if !first.Amount.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("expected amount 42, got %s", first.Amount)
	}

	second, err := repo.Insert(ctx, core.Record{
		Amount:      decimal.RequireFromString("9.50"),
		Category:    "travel",
		Description: "bus ticket",
		Timestamp:   first.Timestamp.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	records, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != second.ID {
		t.Fatalf("expected newest first, got id %d", records[0].ID)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
}

func TestCreateValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cases := []struct {
		name        string
		amount      decimal.Decimal
		category    string
		description string
	}{
		{"zero amount", decimal.Zero, "food", "lunch"},
		{"negative amount", decimal.NewFromInt(-3), "food", "lunch"},
		{"blank description", decimal.NewFromInt(1), "food", "   "},
		{"blank category", decimal.NewFromInt(1), "", "lunch"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tc.amount, tc.category, tc.description)
			if !core.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	if n, _ := repo.Count(ctx); n != 0 {
		t.Fatalf("rejected creates must not persist, count=%d", n)
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec, err := repo.Create(ctx, decimal.NewFromInt(10), "food", "lunch")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newCat := "travel"
	updated, err := repo.Update(ctx, rec.ID, core.RecordPatch{Category: &newCat})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Category != "travel" {
		t.Fatalf("expected travel, got %q", updated.Category)
	}
	if updated.Description != "lunch" {
		t.Fatalf("unpatched field changed: %q", updated.Description)
	}

	// Unknown id is NotFound, bad field is Validation.
	if _, err := repo.Update(ctx, 9999, core.RecordPatch{Category: &newCat}); !core.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	bad := decimal.NewFromInt(-1)
	if _, err := repo.Update(ctx, rec.ID, core.RecordPatch{Amount: &bad}); !core.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := repo.Update(ctx, rec.ID, core.RecordPatch{}); !core.IsValidation(err) {
		t.Fatalf("expected ValidationError for empty patch, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec, err := repo.Create(ctx, decimal.NewFromInt(5), "food", "coffee")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleting an id that no longer (or never) existed succeeds.
	if err := repo.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if err := repo.Delete(ctx, 123456); err != nil {
		t.Fatalf("delete unknown id: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Fatalf("expected empty store, count=%d", n)
	}
}

func TestExistsNaturalKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ts := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	rec := core.Record{
		Amount:      decimal.NewFromInt(42),
		Category:    "food",
		Description: "lunch",
		Timestamp:   ts,
	}
	if _, err := repo.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	exists, err := repo.ExistsNaturalKey(ctx, ts, decimal.NewFromInt(42), "lunch")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("expected natural key match")
	}

	exists, err = repo.ExistsNaturalKey(ctx, ts, decimal.NewFromInt(43), "lunch")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("different amount must not match")
	}
}

func TestLegacyTimestampRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// A row written before the canonical format, as sqlite's datetime() emits it.
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO expenses (amount, category, description, timestamp) VALUES (?, ?, ?, ?)`,
		"12.75", "groceries", "market", "2024-03-04 17:30:00")
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	records, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := time.Date(2024, 3, 4, 17, 30, 0, 0, time.UTC)
	if len(records) != 1 || !records[0].Timestamp.Equal(want) {
		t.Fatalf("unexpected records: %+v", records)
	}

	// The parsed timestamp must match the row it came from, or re-importing
	// an export of this store would duplicate it.
	exists, err := repo.ExistsNaturalKey(ctx, want, decimal.RequireFromString("12.75"), "market")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("expected legacy row to match its own natural key")
	}
}

func TestPantryPassThrough(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	item := core.PantryItem{
		Name:        "flour",
		Quantity:    2,
		Unit:        "kg",
		CreatedAt:   "2024-03-05T10:00:00Z",
		GroceryType: "pantry",
	}
	if err := repo.InsertPantryItem(ctx, item); err != nil {
		t.Fatalf("insert pantry item: %v", err)
	}

	exists, err := repo.PantryItemExists(ctx, "flour", "2024-03-05T10:00:00Z")
	if err != nil {
		t.Fatalf("pantry exists: %v", err)
	}
	if !exists {
		t.Fatal("expected pantry natural key match")
	}

	items, err := repo.ListPantryItems(ctx)
	if err != nil {
		t.Fatalf("list pantry: %v", err)
	}
	if len(items) != 1 || items[0].Name != "flour" {
		t.Fatalf("unexpected pantry rows: %+v", items)
	}
}
