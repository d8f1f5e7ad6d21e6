// Package memory is an in-process mirror for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finsight/internal/core"
	"finsight/internal/sheets"
)

var _ sheets.RowAppender = (*Sheet)(nil)

// Sheet collects mirror rows in memory.
type Sheet struct {
	mu   sync.Mutex
	rows [][]any
	ids  map[string]bool
}

func New() *Sheet {
	return &Sheet{rows: [][]any{toAny(sheets.Header)}, ids: map[string]bool{}}
}

// AppendRecord stores the row. Appending the same record twice is a no-op
// that returns the same reference shape.
func (s *Sheet) AppendRecord(_ context.Context, r core.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ids[r.ID] {
		s.ids[r.ID] = true
		s.rows = append(s.rows, sheets.Row(r))
	}
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of all rows, header first.
func (s *Sheet) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	copy(out, s.rows)
	return out
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
