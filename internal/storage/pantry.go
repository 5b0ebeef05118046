package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger/internal/core"
)

// Pantry rows are a legacy collection carried only for backward-compatible
// import of older export documents. They pass through the store opaquely.

// ListPantryItems returns every legacy pantry row, newest first.
func (r *Repository) ListPantryItems(ctx context.Context) ([]core.PantryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, quantity, unit, created_at, is_consumed, grocery_type
		 FROM pantry_items ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query pantry items: %w", err)
	}
	defer rows.Close()

	var items []core.PantryItem
	for rows.Next() {
		var (
			item     core.PantryItem
			consumed int64
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &item.Unit,
			&item.CreatedAt, &consumed, &item.GroceryType); err != nil {
			return nil, fmt.Errorf("scan pantry item: %w", err)
		}
		item.IsConsumed = consumed == 1
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pantry items: %w", err)
	}
	return items, nil
}

// InsertPantryItem stores a legacy pantry row as given.
func (r *Repository) InsertPantryItem(ctx context.Context, item core.PantryItem) error {
	consumed := 0
	if item.IsConsumed {
		consumed = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pantry_items (name, quantity, unit, created_at, is_consumed, grocery_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.Name, item.Quantity, item.Unit, item.CreatedAt, consumed, item.GroceryType)
	if err != nil {
		return fmt.Errorf("insert pantry item: %w", err)
	}
	return nil
}

// PantryItemExists matches legacy rows on their (name, created_at) natural key.
func (r *Repository) PantryItemExists(ctx context.Context, name, createdAt string) (bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM pantry_items WHERE name = ? AND created_at = ?`,
		name, createdAt).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pantry natural key lookup: %w", err)
	}
	return true, nil
}
