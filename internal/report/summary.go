package report

import (
	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// Summary is the server-side totals view over a window.
type Summary struct {
	TotalIncome    decimal.Decimal
	TotalExpense   decimal.Decimal
	Savings        decimal.Decimal
	CategoryTotals map[string]decimal.Decimal
}

// Summarize totals income and expense within the window; category totals
// cover expenses only.
func Summarize(records []core.Record, w Window) Summary {
	byKind := Sum(records, w.Admit, ByKind)
	income := byKind[string(core.Income)]
	expense := byKind[string(core.Expense)]
	return Summary{
		TotalIncome:    income,
		TotalExpense:   expense,
		Savings:        income.Sub(expense),
		CategoryTotals: Sum(records, OfKind(core.Expense, w.Admit), ByLabel),
	}
}

// MonthSummary holds one (year, month) worth of totals, the input to
// insight generation.
type MonthSummary struct {
	Year       int
	Month      int
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Categories []CategoryTotal
}

// SummarizeMonth totals a single month; month is 1-indexed.
func SummarizeMonth(records []core.Record, year, month int) MonthSummary {
	m := MonthOf(year, month)
	return MonthSummary{
		Year:       year,
		Month:      month,
		Income:     Total(records, OfKind(core.Income, m.Admit)),
		Expense:    Total(records, OfKind(core.Expense, m.Admit)),
		Categories: ByCategory(records, OfKind(core.Expense, m.Admit)),
	}
}

// Empty reports whether the month had no admitted amounts at all.
func (m MonthSummary) Empty() bool {
	return m.Income.IsZero() && m.Expense.IsZero() && len(m.Categories) == 0
}
