package backend

import (
	"context"

	firebase "firebase.google.com/go/v4"

	"finsight/internal/services"
	"finsight/internal/store"
	"finsight/internal/store/sqlite"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult bundles the record store with the service built on it.
type BackendResult struct {
	Store   store.Store
	Records *services.RecordService
	Reports *services.ReportService

	// SQLite is set for the sqlite backend, which tracks mirror status.
	SQLite *sqlite.Store

	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Firestore specific
	FirestorePrefix string
	Firebase        *firebase.App

	// Optional record-created announcements
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	FirestoreBackend BackendType = "firestore"
	SQLiteBackend    BackendType = "sqlite"
	MemoryBackend    BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FirestoreBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
