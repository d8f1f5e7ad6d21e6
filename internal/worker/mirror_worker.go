// Package worker copies newly created records into the spreadsheet mirror.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finsight/internal/amqp"
	"finsight/internal/core"
	"finsight/internal/sheets"
)

// MirrorMarker records mirror progress in stores that track it.
type MirrorMarker interface {
	MarkMirrored(ctx context.Context, id string) error
}

// MirrorWorker handles record created messages.
type MirrorWorker struct {
	sheet  sheets.RowAppender
	marker MirrorMarker
}

// NewMirrorWorker creates a worker; marker may be nil for stores without
// mirror bookkeeping.
func NewMirrorWorker(sheet sheets.RowAppender, marker MirrorMarker) *MirrorWorker {
	return &MirrorWorker{sheet: sheet, marker: marker}
}

// HandleRecordCreated appends the carried record to the mirror.
func (w *MirrorWorker) HandleRecordCreated(ctx context.Context, msg *amqp.RecordCreatedMessage) error {
	slog.InfoContext(ctx, "Processing record created message", "id", msg.ID, "kind", msg.Kind)
	return w.Mirror(ctx, msg.Record())
}

// Mirror appends one record and marks it mirrored when a marker is set.
func (w *MirrorWorker) Mirror(ctx context.Context, r core.Record) error {
	ref, err := w.sheet.AppendRecord(ctx, r)
	if err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}

	if w.marker != nil {
		if err := w.marker.MarkMirrored(ctx, r.ID); err != nil {
			// The row is written; a later sweep may append it again.
			slog.ErrorContext(ctx, "Failed to mark record as mirrored", "id", r.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Mirrored record",
		"id", r.ID,
		"kind", r.Kind,
		"sheets_ref", ref)
	return nil
}
