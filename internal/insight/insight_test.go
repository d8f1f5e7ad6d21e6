package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/llm"
	"finsight/internal/report"
)

type fakeGen struct {
	answer string
	err    error
	prompt string
	calls  int
}

func (f *fakeGen) Generate(ctx context.Context, prompt string, _ ...llm.Attachment) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.answer, f.err
}

func TestParseBullets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"drops prose", "* Income is stable\n* Spending rose\nrandom text", []string{"Income is stable", "Spending rose"}},
		{"mixed markers", "- one\n• two\n  * three", []string{"one", "two", "three"}},
		{"capped", "* a\n* b\n* c\n* d", []string{"a", "b", "c"}},
		{"empty marker lines skipped", "*\n* real", []string{"real"}},
		{"no bullets", "Everything is fine.", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBullets(tt.in))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	m := report.MonthSummary{
		Year:    2024,
		Month:   2,
		Income:  decimal.RequireFromString("1500"),
		Expense: decimal.RequireFromString("420.5"),
		Categories: []report.CategoryTotal{
			{Label: "Food", Total: decimal.RequireFromString("300")},
			{Label: "Transport", Total: decimal.RequireFromString("120.5")},
		},
	}
	p := BuildPrompt(m)
	assert.Contains(t, p, "February 2024")
	assert.Contains(t, p, "Total income: 1500.00")
	assert.Contains(t, p, "Total expenses: 420.50")
	assert.Contains(t, p, "- Food: 300.00")
	assert.Contains(t, p, "bullet points")
	assert.Less(t, strings.Index(p, "Food"), strings.Index(p, "Transport"))
}

func TestFromContent(t *testing.T) {
	r := FromContent("* Income is stable\n* Spending rose\nrandom text")
	assert.Equal(t, StatusSuccess, r.Status)
	assert.Len(t, r.Bullets, 2)

	r = FromContent("no bullets at all")
	assert.Equal(t, StatusEmpty, r.Status)
	assert.Equal(t, NoInsight, r.Message)
}

func TestServiceForMonth(t *testing.T) {
	gen := &fakeGen{answer: "* a\n* b"}
	s := NewService(gen, time.Second)

	r, err := s.ForMonth(context.Background(), report.MonthSummary{Year: 2024, Month: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, r.Status)
	assert.Contains(t, gen.prompt, "January 2024")

	gen.err = errors.New("boom")
	r, err = s.ForMonth(context.Background(), report.MonthSummary{Year: 2024, Month: 1})
	require.Error(t, err)
	assert.Equal(t, StatusError, r.Status)
	assert.Equal(t, NoInsight, r.Message)
	assert.Equal(t, 2, gen.calls)
}

func TestCompleteRejectsEmptyPrompt(t *testing.T) {
	gen := &fakeGen{answer: "* a"}
	_, err := NewService(gen, 0).Complete(context.Background(), "  ")
	require.Error(t, err)
	assert.Zero(t, gen.calls)
}
