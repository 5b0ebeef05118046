// Package report computes derived views over a snapshot of ledger records.
// Every function is pure: no I/O, no retained state, deterministic for a
// given input slice.
package report

import (
	"sort"
	"time"

	"ledger/internal/core"

	"github.com/shopspring/decimal"
)

// DayGroup pairs a local calendar day with the records logged on it.
// Produced fresh on every pass, never persisted.
type DayGroup struct {
	Key     string
	Date    time.Time
	Records []core.Record
}

// MonthGroup is the month analogue and carries a precomputed total.
type MonthGroup struct {
	Key     string
	Records []core.Record
	Total   decimal.Decimal
}

// CategoryAmount is a category paired with its summed amount.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// Statistics summarizes a record set for display.
type Statistics struct {
	Total      decimal.Decimal
	Average    decimal.Decimal
	Count      int
	Min        decimal.Decimal
	Max        decimal.Decimal
	Categories int
}

// TotalAmount sums every amount; zero for empty input.
func TotalAmount(records []core.Record) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Amount)
	}
	return total
}

// CategoryTotals sums amounts per category. Records with no usable category
// tag count under the fallback tag rather than erroring.
func CategoryTotals(records []core.Record) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, rec := range records {
		cat := rec.CategoryOrFallback()
		totals[cat] = totals[cat].Add(rec.Amount)
	}
	return totals
}

// Categories returns the category browser list: AllCategory first, then the
// distinct categories sorted alphabetically.
func Categories(records []core.Record) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		seen[rec.CategoryOrFallback()] = struct{}{}
	}
	cats := make([]string, 0, len(seen)+1)
	for cat := range seen {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return append([]string{core.AllCategory}, cats...)
}

// FilterByCategory keeps records matching category; AllCategory passes the
// whole set through unchanged.
func FilterByCategory(records []core.Record, category string) []core.Record {
	if category == core.AllCategory {
		return records
	}
	var out []core.Record
	for _, rec := range records {
		if rec.Category == category {
			out = append(out, rec)
		}
	}
	return out
}

// TopCategories returns up to limit categories ordered by descending total.
// Ties break alphabetically so the result is deterministic.
func TopCategories(records []core.Record, limit int) []CategoryAmount {
	totals := CategoryTotals(records)
	out := make([]CategoryAmount, 0, len(totals))
	for cat, amount := range totals {
		out = append(out, CategoryAmount{Category: cat, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GroupByDay groups records by their local calendar day, newest group first.
// Ordering compares parsed dates, not key strings: zero-padded ISO keys
// happen to sort identically, but parsing keeps day boundaries honest across
// timezone changes.
func GroupByDay(records []core.Record) []DayGroup {
	byKey := make(map[string]*DayGroup)
	var order []string
	for _, rec := range records {
		key := core.DayKey(rec.Timestamp)
		g, ok := byKey[key]
		if !ok {
			date, err := core.ParseDayKey(key)
			if err != nil {
				// Key was derived from a valid timestamp just above.
				continue
			}
			g = &DayGroup{Key: key, Date: date}
			byKey[key] = g
			order = append(order, key)
		}
		g.Records = append(g.Records, rec)
	}

	groups := make([]DayGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byKey[key])
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date.After(groups[j].Date)
	})
	return groups
}

// GroupByMonth groups records by local YYYY-MM, newest first. The keys are
// zero-padded and equal length, so lexicographic comparison is date order.
func GroupByMonth(records []core.Record) []MonthGroup {
	byKey := make(map[string]*MonthGroup)
	for _, rec := range records {
		key := core.MonthKey(rec.Timestamp)
		g, ok := byKey[key]
		if !ok {
			g = &MonthGroup{Key: key, Total: decimal.Zero}
			byKey[key] = g
		}
		g.Records = append(g.Records, rec)
		g.Total = g.Total.Add(rec.Amount)
	}

	groups := make([]MonthGroup, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key > groups[j].Key
	})
	return groups
}

// RecordsForDay returns the records whose local day matches key.
func RecordsForDay(records []core.Record, key string) []core.Record {
	var out []core.Record
	for _, rec := range records {
		if core.DayKey(rec.Timestamp) == key {
			out = append(out, rec)
		}
	}
	return out
}

// SortByDate returns a copy sorted newest first.
func SortByDate(records []core.Record) []core.Record {
	out := make([]core.Record, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// SortByAmount returns a copy sorted highest amount first.
func SortByAmount(records []core.Record) []core.Record {
	out := make([]core.Record, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// AverageAmount returns the mean amount; zero for empty input.
func AverageAmount(records []core.Record) decimal.Decimal {
	if len(records) == 0 {
		return decimal.Zero
	}
	return TotalAmount(records).Div(decimal.NewFromInt(int64(len(records))))
}

// Stats computes display statistics for a record set.
func Stats(records []core.Record) Statistics {
	if len(records) == 0 {
		return Statistics{Total: decimal.Zero, Average: decimal.Zero, Min: decimal.Zero, Max: decimal.Zero}
	}
	min, max := records[0].Amount, records[0].Amount
	for _, rec := range records[1:] {
		if rec.Amount.LessThan(min) {
			min = rec.Amount
		}
		if rec.Amount.GreaterThan(max) {
			max = rec.Amount
		}
	}
	return Statistics{
		Total:      TotalAmount(records),
		Average:    AverageAmount(records),
		Count:      len(records),
		Min:        min,
		Max:        max,
		Categories: len(CategoryTotals(records)),
	}
}
