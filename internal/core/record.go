package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// AllCategory is the synthetic category that selects every record.
	AllCategory = "All"

	// FallbackCategory is assigned when a record carries no usable category tag.
	FallbackCategory = "other"

	// MaxDescriptionLength bounds free-text descriptions.
	MaxDescriptionLength = 100
)

// Record is a single dated, categorized ledger entry. The ID is assigned by
// the store and is stable for the record's lifetime; all other fields are
// mutable through updates.
type Record struct {
	ID          int64
	Amount      decimal.Decimal
	Category    string
	Description string
	Timestamp   time.Time
}

// Validate checks the record invariants: positive amount, non-empty
// description and category after trimming.
func (r Record) Validate() error {
	if !r.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if strings.TrimSpace(r.Description) == "" {
		return &ValidationError{Field: "description", Reason: "cannot be empty"}
	}
	if len(r.Description) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Reason: "too long"}
	}
	if strings.TrimSpace(r.Category) == "" {
		return &ValidationError{Field: "category", Reason: "cannot be empty"}
	}
	return nil
}

// RecordPatch carries the fields of a partial update. Nil fields are left
// untouched; supplied fields are validated with the same constraints as
// record creation.
type RecordPatch struct {
	Amount      *decimal.Decimal
	Category    *string
	Description *string
	Timestamp   *time.Time
}

// Validate checks only the fields present in the patch.
func (p RecordPatch) Validate() error {
	if p.Amount != nil && !p.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if p.Description != nil {
		if strings.TrimSpace(*p.Description) == "" {
			return &ValidationError{Field: "description", Reason: "cannot be empty"}
		}
		if len(*p.Description) > MaxDescriptionLength {
			return &ValidationError{Field: "description", Reason: "too long"}
		}
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return &ValidationError{Field: "category", Reason: "cannot be empty"}
	}
	return nil
}

// IsEmpty reports whether the patch carries no fields at all.
func (p RecordPatch) IsEmpty() bool {
	return p.Amount == nil && p.Category == nil && p.Description == nil && p.Timestamp == nil
}

// CategoryOrFallback returns the record's category, or FallbackCategory when
// the tag is empty. Unknown categories are never an error; the vocabulary is
// open.
func (r Record) CategoryOrFallback() string {
	if strings.TrimSpace(r.Category) == "" {
		return FallbackCategory
	}
	return r.Category
}

// PantryItem is a row of the legacy secondary table. It is preserved as an
// opaque pass-through collection for import compatibility with older export
// documents; no current feature reads it.
type PantryItem struct {
	ID          int64
	Name        string
	Quantity    float64
	Unit        string
	CreatedAt   string
	IsConsumed  bool
	GroceryType string
}
