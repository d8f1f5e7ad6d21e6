// Package report turns owner record sets into dashboard and export shapes:
// range filtering, month/category aggregation and row assembly.
package report

import (
	"time"

	"finsight/internal/core"
)

// Predicate admits or rejects a record.
type Predicate func(core.Record) bool

// Window is an inclusive date range; a nil bound is open.
type Window struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t lies within the window, both bounds inclusive.
func (w Window) Contains(t time.Time) bool {
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.To != nil && t.After(*w.To) {
		return false
	}
	return true
}

// Admit rejects records whose date did not normalize.
func (w Window) Admit(r core.Record) bool {
	t, ok := r.OccurredAt.Time()
	return ok && w.Contains(t)
}

// Year is the window covering one calendar year in UTC.
func Year(year int) Window {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	return Window{From: &from, To: &to}
}

// Month admits records whose date falls in the given year and month.
// Months are 1-indexed (time.Month).
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf builds a month filter from a 1-indexed month number.
func MonthOf(year, month int) Month {
	return Month{Year: year, Month: time.Month(month)}
}

func (m Month) Admit(r core.Record) bool {
	t, ok := r.OccurredAt.Time()
	if !ok {
		return false
	}
	return t.Year() == m.Year && t.Month() == m.Month
}

// Valid reports whether the month number is in 1..12.
func (m Month) Valid() bool { return m.Month >= time.January && m.Month <= time.December }

// OfKind narrows another predicate to one record kind.
func OfKind(k core.Kind, p Predicate) Predicate {
	return func(r core.Record) bool {
		return r.Kind == k && (p == nil || p(r))
	}
}

// Filter returns the admitted records in their original order.
func Filter(records []core.Record, admit Predicate) []core.Record {
	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if admitted(r, admit) {
			out = append(out, r)
		}
	}
	return out
}

// admitted fails closed on records whose date did not normalize,
// whatever the predicate says.
func admitted(r core.Record, admit Predicate) bool {
	if !r.OccurredAt.Valid() {
		return false
	}
	return admit == nil || admit(r)
}
