package core

import (
	"strings"
	"time"
)

// DateSource tags which stored representation an Instant was read from.
type DateSource int

const (
	SourceNone DateSource = iota
	SourceIsoText
	SourceEpochSeconds
	SourceNativeInstant
)

func (s DateSource) String() string {
	switch s {
	case SourceIsoText:
		return "iso_text"
	case SourceEpochSeconds:
		return "epoch_seconds"
	case SourceNativeInstant:
		return "native_instant"
	}
	return "none"
}

// Instant is a normalized occurredAt value. The zero Instant is unparseable.
type Instant struct {
	source DateSource
	t      time.Time
}

// EpochSeconds is the raw timestamp wrapper some stores and exports produce.
type EpochSeconds struct {
	Seconds int64
	Nanos   int32
}

type asTimer interface{ AsTime() time.Time }

type toTimer interface{ ToTime() time.Time }

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// At wraps a native time; the zero time is unparseable.
func At(t time.Time) Instant { return resolved(SourceNativeInstant, t) }

// resolved builds a valid Instant in UTC. The zero time and the Unix epoch
// are unparseable whatever representation carried them, since stores write
// the epoch as a default for missing dates.
func resolved(source DateSource, t time.Time) Instant {
	if t.IsZero() || t.UnixNano() == 0 {
		return Instant{}
	}
	return Instant{source: source, t: t.UTC()}
}

// Normalize resolves a stored date of unknown shape.
//
// Precedence: a conversion method (AsTime/ToTime), then an epoch-seconds field,
// then ISO-8601 text, then a native time.Time. Absent or malformed input yields
// an invalid Instant rather than the Unix epoch. Valid Instants are held in UTC
// so calendar bucketing agrees with instant comparison.
func Normalize(v any) Instant {
	if v == nil {
		return Instant{}
	}
	switch w := v.(type) {
	case asTimer:
		return converted(w.AsTime())
	case toTimer:
		return converted(w.ToTime())
	}
	if secs, nanos, ok := epochField(v); ok {
		return resolved(SourceEpochSeconds, time.Unix(secs, int64(nanos)))
	}
	switch x := v.(type) {
	case string:
		return parseISO(x)
	case *string:
		if x == nil {
			return Instant{}
		}
		return parseISO(*x)
	case time.Time:
		return At(x)
	case *time.Time:
		if x == nil {
			return Instant{}
		}
		return At(*x)
	}
	return Instant{}
}

func converted(t time.Time) Instant { return resolved(SourceNativeInstant, t) }

func epochField(v any) (int64, int32, bool) {
	switch w := v.(type) {
	case EpochSeconds:
		return w.Seconds, w.Nanos, true
	case *EpochSeconds:
		if w == nil {
			return 0, 0, false
		}
		return w.Seconds, w.Nanos, true
	case map[string]any:
		for _, k := range []string{"seconds", "_seconds"} {
			raw, ok := w[k]
			if !ok {
				continue
			}
			secs, ok := wholeNumber(raw)
			if !ok {
				return 0, 0, false
			}
			var nanos int64
			for _, nk := range []string{"nanoseconds", "_nanoseconds", "nanos"} {
				if n, ok := wholeNumber(w[nk]); ok {
					nanos = n
					break
				}
			}
			return secs, int32(nanos), true
		}
	}
	return 0, 0, false
}

func wholeNumber(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func parseISO(s string) Instant {
	s = strings.TrimSpace(s)
	if s == "" {
		return Instant{}
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return resolved(SourceIsoText, t)
		}
	}
	return Instant{}
}

// Valid reports whether the Instant resolved to a point in time.
func (i Instant) Valid() bool { return i.source != SourceNone }

// Source reports which representation the Instant came from.
func (i Instant) Source() DateSource { return i.source }

// Time returns the point in time and whether it is valid.
func (i Instant) Time() (time.Time, bool) { return i.t, i.Valid() }

// Equal compares the resolved points in time; two invalid Instants are equal.
func (i Instant) Equal(o Instant) bool {
	if !i.Valid() || !o.Valid() {
		return i.Valid() == o.Valid()
	}
	return i.t.Equal(o.t)
}

// Format renders the date as YYYY-MM-DD, or "" when invalid.
func (i Instant) Format() string {
	if !i.Valid() {
		return ""
	}
	return i.t.Format("2006-01-02")
}
