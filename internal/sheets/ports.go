// Package sheets mirrors stored records into a spreadsheet.
package sheets

import (
	"context"

	"finsight/internal/core"
)

// Header is the column layout of the mirror sheet.
var Header = []string{"Date", "Type", "Label", "Description", "Amount", "Owner", "Record ID"}

// RowAppender appends one record as a spreadsheet row.
type RowAppender interface {
	AppendRecord(ctx context.Context, r core.Record) (rowRef string, err error)
}

// Row renders a record in Header order. Amounts are signed so a column sum
// gives the net balance.
func Row(r core.Record) []any {
	return []any{
		r.OccurredAt.Format(),
		r.Kind.Title(),
		r.Label,
		r.Description,
		core.AmountFloat(r.Signed()),
		r.OwnerID,
		r.ID,
	}
}
