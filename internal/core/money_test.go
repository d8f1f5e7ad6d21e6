package core

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"12.50", "12.5", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{".5", "0.5", true},
		{"-5", "", false},
		{"+5", "", false},
		{"0", "", false},
		{"0.001", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %s", tc.in, got)
		}
	}
}

func TestStoredAmount(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{float64(12.5), "12.5"},
		{int64(7), "7"},
		{"3.10", "3.1"},
		{"n/a", "0"},
		{nil, "0"},
		{math.NaN(), "0"},
		{true, "0"},
	}
	for _, tc := range cases {
		if got := StoredAmount(tc.in); !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("%v: expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("-40")); got != "-40.00" {
		t.Fatalf("unexpected %q", got)
	}
	if got := AmountFloat(decimal.RequireFromString("0.1").Add(decimal.RequireFromString("0.2"))); got != 0.3 {
		t.Fatalf("unexpected %v", got)
	}
}
