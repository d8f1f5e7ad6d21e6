package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// KeyFunc maps a record to its bucket key.
type KeyFunc func(core.Record) string

// Sum reduces admitted records into per-key totals.
func Sum(records []core.Record, admit Predicate, key KeyFunc) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, r := range records {
		if !admitted(r, admit) {
			continue
		}
		k := key(r)
		out[k] = out[k].Add(r.Amount)
	}
	return out
}

// ByLabel buckets by the record label.
func ByLabel(r core.Record) string { return r.Label }

// ByKind buckets by income/expense.
func ByKind(r core.Record) string { return string(r.Kind) }

// MonthTotals is one calendar-month bucket.
type MonthTotals struct {
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// ByMonth buckets admitted records into all twelve months.
// Months without records are present with zero totals.
func ByMonth(records []core.Record, admit Predicate) [12]MonthTotals {
	var out [12]MonthTotals
	for i := range out {
		out[i] = MonthTotals{Month: time.Month(i + 1), Income: decimal.Zero, Expense: decimal.Zero}
	}
	for _, r := range records {
		if !admitted(r, admit) {
			continue
		}
		t, ok := r.OccurredAt.Time()
		if !ok {
			continue
		}
		b := &out[t.Month()-1]
		switch r.Kind {
		case core.Income:
			b.Income = b.Income.Add(r.Amount)
		case core.Expense:
			b.Expense = b.Expense.Add(r.Amount)
		}
	}
	return out
}

// CategoryTotal is one dynamic category bucket.
type CategoryTotal struct {
	Label string
	Total decimal.Decimal
}

// ByCategory buckets admitted records by label, largest total first.
// Only observed labels appear.
func ByCategory(records []core.Record, admit Predicate) []CategoryTotal {
	seen := make(map[string]bool)
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		if !admitted(r, admit) {
			continue
		}
		seen[r.Label] = true
		sums[r.Label] = sums[r.Label].Add(r.Amount)
	}
	out := make([]CategoryTotal, 0, len(seen))
	for label := range seen {
		out = append(out, CategoryTotal{Label: label, Total: sums[label]})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Total sums every admitted amount.
func Total(records []core.Record, admit Predicate) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		if admitted(r, admit) {
			sum = sum.Add(r.Amount)
		}
	}
	return sum
}
