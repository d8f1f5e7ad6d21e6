package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finsight/internal/amqp"
	"finsight/internal/log"
	"finsight/internal/services"
	"finsight/internal/store"
	fsstore "finsight/internal/store/firestore"
	"finsight/internal/store/memory"
	"finsight/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: log.WithComponent(logger, log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st     store.Store
		sqlSt  *sqlite.Store
		err    error
		detail []any
	)
	switch config.Type {
	case FirestoreBackend:
		st, err = f.createFirestoreStore(ctx, config)
		detail = []any{"collection_prefix", config.FirestorePrefix}
	case SQLiteBackend:
		sqlSt, err = sqlite.Open(config.SQLiteDBPath)
		st = sqlSt
		detail = []any{"db_path", config.SQLiteDBPath}
	case MemoryBackend:
		st = memory.New()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", config.Type, err)
	}

	publisher := f.createPublisher(config)
	records := services.NewRecordService(st, publisher)

	f.logger.Info("Initialized record backend",
		append([]any{"type", config.Type, "amqp_enabled", publisher != nil}, detail...)...)

	return &BackendResult{
		Store:   st,
		Records: records,
		Reports: services.NewReportService(st),
		SQLite:  sqlSt,
		Cleanup: records.Close,
	}, nil
}

func (f *DefaultFactory) createFirestoreStore(ctx context.Context, config Config) (store.Store, error) {
	client, err := config.Firebase.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return fsstore.New(client, config.FirestorePrefix), nil
}

// createPublisher returns nil when AMQP is not configured or unreachable;
// records are still stored without announcements.
func (f *DefaultFactory) createPublisher(config Config) services.Publisher {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without announcements", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
