// Package transfer serializes the store to a portable document and merges
// such documents back in without creating duplicates. It is the
// device-to-device migration path; repeated imports of the same document are
// idempotent.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// DocumentVersion is written into every export.
const DocumentVersion = "1.0"

// Document is the portable snapshot format. PantryItems is the legacy
// secondary collection, carried opaquely so older exports keep importing.
type Document struct {
	Version     string            `json:"version"`
	ExportedAt  time.Time         `json:"exported_at"`
	Expenses    []json.RawMessage `json:"expenses"`
	PantryItems []json.RawMessage `json:"pantry_items,omitempty"`
}

// recordEntry is one expense row of a document. The id travels with the
// export for traceability but is ignored on import: the destination store
// assigns its own identities.
type recordEntry struct {
	ID          int64       `json:"id"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Timestamp   string      `json:"timestamp"`
}

// pantryEntry mirrors a legacy pantry row.
type pantryEntry struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	CreatedAt   string  `json:"created_at"`
	IsConsumed  bool    `json:"is_consumed"`
	GroceryType string  `json:"grocery_type"`
}

// FormatError means the document itself is structurally unusable. It aborts
// the whole import, unlike per-record failures which only bump the skip
// count.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid document: %s", e.Reason)
}

// ParseDocument decodes and structurally validates a document. A missing or
// non-array expenses field is a FormatError; individual malformed entries
// are left for Import to count as skipped.
func ParseDocument(r io.Reader) (Document, error) {
	var raw struct {
		Version     string          `json:"version"`
		ExportedAt  time.Time       `json:"exported_at"`
		Expenses    json.RawMessage `json:"expenses"`
		PantryItems json.RawMessage `json:"pantry_items"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Document{}, &FormatError{Reason: err.Error()}
	}

	doc := Document{Version: raw.Version, ExportedAt: raw.ExportedAt}

	if len(raw.Expenses) == 0 {
		return Document{}, &FormatError{Reason: "missing expenses array"}
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw.Expenses), []byte("[")) {
		return Document{}, &FormatError{Reason: "expenses is not an array"}
	}
	if err := json.Unmarshal(raw.Expenses, &doc.Expenses); err != nil {
		return Document{}, &FormatError{Reason: "expenses is not an array"}
	}

	// The legacy collection is optional; when present it must be an array.
	if len(raw.PantryItems) > 0 && string(bytes.TrimSpace(raw.PantryItems)) != "null" {
		if err := json.Unmarshal(raw.PantryItems, &doc.PantryItems); err != nil {
			return Document{}, &FormatError{Reason: "pantry_items is not an array"}
		}
	}

	return doc, nil
}
