// Package store defines the record store port shared by all backends.
package store

import (
	"context"
	"errors"

	"finsight/internal/core"
)

// ErrNotFound is returned when a record does not exist for the owner.
var ErrNotFound = errors.New("record not found")

type (
	// RecordWriter creates single records. The store assigns ID and RecordedAt.
	RecordWriter interface {
		Create(ctx context.Context, r core.NewRecord) (core.Record, error)
	}

	// RecordReader reads records scoped by owner.
	RecordReader interface {
		// List returns the owner's records of one kind, most recently recorded first.
		List(ctx context.Context, owner string, kind core.Kind) ([]core.Record, error)
		// Get returns one of the owner's records; another owner's record is ErrNotFound.
		Get(ctx context.Context, owner string, kind core.Kind, id string) (core.Record, error)
	}

	// Store is a complete record backend.
	Store interface {
		RecordWriter
		RecordReader
		Close() error
	}
)
