package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"goaltracker/internal/config"
	"goaltracker/internal/repository"
	"goaltracker/internal/repository/document"
	"goaltracker/internal/repository/memory"
)

const connectTimeout = 10 * time.Second

// Storage is the lifecycle side of a storage client.
type Storage interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects the storage selected by cfg.StorageDriver and returns its repositories.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Set, Storage, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.StorageDriver {
	case config.DriverMongo:
		store, err := NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return repository.Set{}, nil, err
		}
		set, err := document.NewSet(ctx, store.Database)
		if err != nil {
			_ = store.Close(context.Background())
			return repository.Set{}, nil, err
		}
		logger.Info("connected to mongo", zap.String("database", cfg.MongoDatabase))
		return set, store, nil
	case config.DriverMySQL:
		store, err := NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return repository.Set{}, nil, err
		}
		logger.Info("connected to mysql")
		return repository.NewGormSet(store.DB), store, nil
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		store := memory.New()
		return store.Set(), store, nil
	default:
		return repository.Set{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
