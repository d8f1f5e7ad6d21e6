package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finsight/internal/core"
	"finsight/internal/store"
)

// Publisher announces stored records to downstream consumers.
type Publisher interface {
	PublishRecordCreated(ctx context.Context, r core.Record) error
	Close() error
}

// RecordService validates and stores records, then announces them.
// A failed announcement never fails the write.
type RecordService struct {
	store     store.Store
	publisher Publisher
}

func NewRecordService(st store.Store, publisher Publisher) *RecordService {
	return &RecordService{store: st, publisher: publisher}
}

// Create stores one record. Validation runs before any write.
func (s *RecordService) Create(ctx context.Context, n core.NewRecord) (core.Record, error) {
	if err := n.Validate(); err != nil {
		return core.Record{}, err
	}
	r, err := s.store.Create(ctx, n)
	if err != nil {
		return core.Record{}, fmt.Errorf("save %s: %w", n.Kind, err)
	}
	s.announce(ctx, r)
	return r, nil
}

// List returns the owner's records of one kind, newest recorded first.
func (s *RecordService) List(ctx context.Context, owner string, kind core.Kind) ([]core.Record, error) {
	return s.store.List(ctx, owner, kind)
}

// Get returns one of the owner's records.
func (s *RecordService) Get(ctx context.Context, owner string, kind core.Kind, id string) (core.Record, error) {
	return s.store.Get(ctx, owner, kind, id)
}

// ImportError reports which item of an import batch failed.
type ImportError struct {
	Index int
	Err   error
}

func (e *ImportError) Error() string { return fmt.Sprintf("item %d: %v", e.Index, e.Err) }
func (e *ImportError) Unwrap() error { return e.Err }

// Import stores a reviewed batch as independent single creates. Every item
// is validated first, so a validation error writes nothing. A store error
// stops the batch; records written before it stay committed and their
// count is returned with the error.
func (s *RecordService) Import(ctx context.Context, items []core.NewRecord) (int, error) {
	for i, n := range items {
		if err := n.Validate(); err != nil {
			return 0, &ImportError{Index: i, Err: err}
		}
	}
	committed := 0
	for i, n := range items {
		r, err := s.store.Create(ctx, n)
		if err != nil {
			slog.ErrorContext(ctx, "Import stopped",
				"committed", committed,
				"failed_index", i,
				"error", err)
			return committed, &ImportError{Index: i, Err: err}
		}
		committed++
		s.announce(ctx, r)
	}
	return committed, nil
}

func (s *RecordService) announce(ctx context.Context, r core.Record) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordCreated(ctx, r); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record created message", "id", r.ID, "error", err)
	}
}

// Close closes the store and the publisher.
func (s *RecordService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
