package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// DisplayLimit caps the on-screen transaction list; exports are never capped.
const DisplayLimit = 50

type (
	// SeriesRow is one chart point of the monthly time series.
	SeriesRow struct {
		PeriodLabel  string
		IncomeTotal  decimal.Decimal
		ExpenseTotal decimal.Decimal
	}

	// CategoryRow is one slice of a category chart.
	CategoryRow struct {
		CategoryLabel string
		Total         decimal.Decimal
	}

	// FlatRow is one source record in display/export form.
	FlatRow struct {
		Date         time.Time
		Label        string
		Type         core.Kind
		SignedAmount decimal.Decimal
	}

	// Report holds all three shapes built from one record set and window.
	Report struct {
		Series     []SeriesRow
		Categories []CategoryRow
		Rows       []FlatRow
	}
)

// Assemble builds the time series, expense categories and flat rows for the
// records admitted by the predicate.
func Assemble(records []core.Record, admit Predicate) Report {
	return Report{
		Series:     Series(records, admit),
		Categories: Categories(records, OfKind(core.Expense, admit)),
		Rows:       Rows(records, admit),
	}
}

// Series is the twelve-month chart, January first.
func Series(records []core.Record, admit Predicate) []SeriesRow {
	months := ByMonth(records, admit)
	out := make([]SeriesRow, 0, len(months))
	for _, m := range months {
		out = append(out, SeriesRow{
			PeriodLabel:  m.Month.String()[:3],
			IncomeTotal:  m.Income,
			ExpenseTotal: m.Expense,
		})
	}
	return out
}

// Categories is the category chart, largest first.
func Categories(records []core.Record, admit Predicate) []CategoryRow {
	totals := ByCategory(records, admit)
	out := make([]CategoryRow, 0, len(totals))
	for _, c := range totals {
		out = append(out, CategoryRow{CategoryLabel: c.Label, Total: c.Total})
	}
	return out
}

// Rows lists admitted records newest first with expenses negated.
func Rows(records []core.Record, admit Predicate) []FlatRow {
	kept := Filter(records, admit)
	sort.SliceStable(kept, func(i, j int) bool {
		ti, _ := kept[i].OccurredAt.Time()
		tj, _ := kept[j].OccurredAt.Time()
		return ti.After(tj)
	})
	out := make([]FlatRow, 0, len(kept))
	for _, r := range kept {
		t, _ := r.OccurredAt.Time()
		label := r.Label
		if r.Description != "" {
			label = r.Description
		}
		out = append(out, FlatRow{
			Date:         t,
			Label:        label,
			Type:         r.Kind,
			SignedAmount: r.Signed(),
		})
	}
	return out
}

// Recent truncates rows for on-screen display.
func Recent(rows []FlatRow, limit int) []FlatRow {
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	return rows[:limit]
}
