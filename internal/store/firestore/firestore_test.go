package firestore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"finsight/internal/core"
	"finsight/internal/store"
)

var _ store.Store = (*Store)(nil)

func TestFromDocument(t *testing.T) {
	occurred := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	recorded := time.Date(2024, 1, 16, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		data      map[string]any
		amount    string
		validDate bool
		source    core.DateSource
	}{
		{
			name: "native timestamp",
			data: map[string]any{
				"ownerId": "u1", "amount": 12.5, "occurredAt": occurred,
				"label": "Food", "recordedAt": recorded,
			},
			amount: "12.5", validDate: true, source: core.SourceNativeInstant,
		},
		{
			name:   "iso string and integer amount",
			data:   map[string]any{"ownerId": "u1", "amount": int64(40), "occurredAt": "2024-01-15"},
			amount: "40", validDate: true, source: core.SourceIsoText,
		},
		{
			name:   "exported epoch map",
			data:   map[string]any{"ownerId": "u1", "amount": 1.0, "occurredAt": map[string]any{"_seconds": occurred.Unix(), "_nanoseconds": 0}},
			amount: "1", validDate: true, source: core.SourceEpochSeconds,
		},
		{
			name:   "malformed fields",
			data:   map[string]any{"ownerId": "u1", "amount": "lots", "occurredAt": "yesterday"},
			amount: "0", validDate: false,
		},
		{
			name:   "missing fields",
			data:   map[string]any{},
			amount: "0", validDate: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromDocument("doc1", core.Expense, tt.data)
			assert.Equal(t, "doc1", r.ID)
			assert.Equal(t, core.Expense, r.Kind)
			assert.True(t, r.Amount.Equal(decimal.RequireFromString(tt.amount)), "amount %s", r.Amount)
			assert.Equal(t, tt.validDate, r.OccurredAt.Valid())
			if tt.validDate {
				assert.Equal(t, tt.source, r.OccurredAt.Source())
				got, _ := r.OccurredAt.Time()
				assert.True(t, got.Equal(occurred), "occurredAt %s", got)
			}
		})
	}
}

func TestFromDocumentRecordedAt(t *testing.T) {
	recorded := time.Date(2024, 1, 16, 9, 30, 0, 0, time.UTC)
	r := FromDocument("d", core.Income, map[string]any{"recordedAt": recorded, "label": "Salary", "description": "ACME"})
	assert.Equal(t, recorded, r.RecordedAt)
	assert.Equal(t, "Salary", r.Label)
	assert.Equal(t, "ACME", r.Description)
}
