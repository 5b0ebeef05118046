package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ledger/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// DefaultListLimit caps List when the caller does not supply a limit.
const DefaultListLimit = 200

// timestampFormat is the canonical storage representation. Timestamps read
// from documents are re-formatted through this before insert so the natural
// key compares byte-for-byte on repeated imports.
const timestampFormat = time.RFC3339Nano

// legacyTimestampFormat is sqlite's datetime() form, found in rows written
// before the canonical format. Natural-key lookups match it alongside the
// canonical form so exporting such rows and re-importing stays a no-op.
const legacyTimestampFormat = "2006-01-02 15:04:05"

// Repository is the durable record store. All mutations are committed before
// the call returns; the connection pool is capped at a single connection so
// rapid mutations serialize and every read observes prior writes.
type Repository struct {
	db *sql.DB
}

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create validates and stores a new record stamped with the current time.
func (r *Repository) Create(ctx context.Context, amount decimal.Decimal, category, description string) (core.Record, error) {
	rec := core.Record{
		Amount:      amount,
		Category:    category,
		Description: description,
		Timestamp:   time.Now(),
	}
	if err := rec.Validate(); err != nil {
		return core.Record{}, err
	}
	return r.Insert(ctx, rec)
}

// Insert stores a record with its timestamp as given, assigning a fresh
// identity. It does not apply create validation: the importer calls it after
// doing its own per-record checks, and malformed records are skipped there.
func (r *Repository) Insert(ctx context.Context, rec core.Record) (core.Record, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (amount, category, description, timestamp) VALUES (?, ?, ?, ?)`,
		rec.Amount.String(), rec.Category, rec.Description, rec.Timestamp.UTC().Format(timestampFormat))
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Record{}, fmt.Errorf("last insert id: %w", err)
	}

	stored, err := r.Get(ctx, id)
	if err != nil {
		return core.Record{}, fmt.Errorf("read back record %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Record saved",
		"id", stored.ID,
		"amount", stored.Amount.String(),
		"category", stored.Category)

	return stored, nil
}

// Update applies a partial update. Supplied fields are validated with the
// same constraints as create; an unknown id yields a NotFoundError.
func (r *Repository) Update(ctx context.Context, id int64, patch core.RecordPatch) (core.Record, error) {
	if patch.IsEmpty() {
		return core.Record{}, &core.ValidationError{Field: "fields", Reason: "no fields to update"}
	}
	if err := patch.Validate(); err != nil {
		return core.Record{}, err
	}

	var (
		sets []string
		args []any
	)
	if patch.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, patch.Amount.String())
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Timestamp != nil {
		sets = append(sets, "timestamp = ?")
		args = append(args, patch.Timestamp.UTC().Format(timestampFormat))
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE expenses SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return core.Record{}, fmt.Errorf("update record %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Record{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.Record{}, &core.NotFoundError{ID: id}
	}

	updated, err := r.Get(ctx, id)
	if err != nil {
		return core.Record{}, fmt.Errorf("read back record %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Record updated", "id", id)
	return updated, nil
}

// Delete removes a record. Deleting an unknown id is not an error: cleanup is
// best effort and the end state is the same.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Record deleted", "id", id)
	return nil
}

// Get returns a single record by id.
func (r *Repository) Get(ctx context.Context, id int64) (core.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, amount, category, description, timestamp FROM expenses WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, &core.NotFoundError{ID: id}
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record %d: %w", id, err)
	}
	return rec, nil
}

// List returns up to limit records, newest first. A non-positive limit falls
// back to DefaultListLimit. The returned slice is the caller's to keep.
func (r *Repository) List(ctx context.Context, limit int) ([]core.Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return r.queryRecords(ctx,
		`SELECT id, amount, category, description, timestamp FROM expenses ORDER BY timestamp DESC LIMIT ?`, limit)
}

// ListAll returns every record newest first, for export.
func (r *Repository) ListAll(ctx context.Context) ([]core.Record, error) {
	return r.queryRecords(ctx,
		`SELECT id, amount, category, description, timestamp FROM expenses ORDER BY timestamp DESC`)
}

// Count returns the number of stored records.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// ExistsNaturalKey reports whether a record matching (timestamp, amount,
// description) is already stored. Identity and category are deliberately not
// part of the key: the destination assigns its own ids, and category is taken
// from the incoming document only on insert.
func (r *Repository) ExistsNaturalKey(ctx context.Context, ts time.Time, amount decimal.Decimal, description string) (bool, error) {
	canonical := ts.UTC().Format(timestampFormat)
	legacy := canonical
	if ts.Nanosecond() == 0 {
		// Second-precision instants may be stored in the legacy form.
		legacy = ts.UTC().Format(legacyTimestampFormat)
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM expenses WHERE timestamp IN (?, ?) AND amount = ? AND description = ?`,
		canonical, legacy, amount.String(), description).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("natural key lookup: %w", err)
	}
	return true, nil
}

func (r *Repository) queryRecords(ctx context.Context, query string, args ...any) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.Record, error) {
	var (
		rec       core.Record
		amountStr string
		tsStr     string
	)
	if err := row.Scan(&rec.ID, &amountStr, &rec.Category, &rec.Description, &tsStr); err != nil {
		return core.Record{}, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return core.Record{}, fmt.Errorf("parse amount %q: %w", amountStr, err)
	}
	rec.Amount = amount

	ts, err := core.ParseTimestamp(tsStr)
	if err != nil {
		return core.Record{}, err
	}
	rec.Timestamp = ts
	return rec, nil
}
