package backend

import (
	"context"
	"fmt"
	"log/slog"

	"gagyebu/internal/adapters"
	"gagyebu/internal/amqp"
	"gagyebu/internal/services"
	"gagyebu/internal/storage"
	"gagyebu/internal/storage/postgres"
	"gagyebu/internal/store/memory"
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
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		repo adapters.Repository
		err  error
	)
	switch config.Type {
	case MemoryBackend:
		repo = f.createMemoryRepository(config)
	case SQLiteBackend:
		repo, err = f.createSQLiteRepository(config)
	case PostgresBackend:
		repo, err = f.createPostgresRepository(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	// A nil *amqp.Client must not end up inside the interface.
	var publisher services.Publisher
	if client := f.createPublisher(config); client != nil {
		publisher = client
	}

	service := services.NewSnapshotService(repo, publisher)
	return &BackendResult{
		Backend: adapters.NewServiceAdapter(repo, service),
		Cleanup: service.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryRepository(config Config) *memory.Store {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store := memory.NewFromFiles(dataDir)
	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return store
}

func (f *DefaultFactory) createSQLiteRepository(config Config) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return repo, nil
}

func (f *DefaultFactory) createPostgresRepository(ctx context.Context, config Config) (*postgres.Store, error) {
	store, err := postgres.New(ctx, postgres.Config{
		URL:      config.DatabaseURL,
		MaxConns: config.PostgresMaxConns,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres store: %w", err)
	}
	f.logger.Info("Initialized postgres backend", "max_conns", config.PostgresMaxConns)
	return store, nil
}

// createPublisher connects to the broker when one is configured. A broker
// that cannot be reached is logged and the backend runs without events.
func (f *DefaultFactory) createPublisher(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without snapshot events", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
