package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"formcraft/internal/config"
	"formcraft/internal/database"
	"formcraft/internal/domain"
	"formcraft/internal/logger"
)

// CloseFunc releases the connections behind a store.
type CloseFunc func(ctx context.Context) error

// OpenDocumentStore builds the store selected by storage.driver. Remote
// stores are wrapped with retries.
func OpenDocumentStore(ctx context.Context, cfg *config.Config) (domain.DocumentStore, CloseFunc, error) {
	retryCfg := RetryConfig{MaxAttempts: cfg.Retry.MaxAttempts, BaseDelay: cfg.Retry.BaseDelay}

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Get().Warn("using in-memory storage; data is lost on restart")
		return NewMemoryStore(), func(context.Context) error { return nil }, nil

	case config.StorageSQL:
		db, err := database.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if cfg.DB.Driver == config.DBDriverSQLite {
			migrator, err := database.NewMigrator(db)
			if err != nil {
				db.Close()
				return nil, nil, err
			}
			if err := migrator.Up(ctx); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		closeFn := func(context.Context) error { return db.Close() }
		return WithRetry(NewSQLStore(db), retryCfg), closeFn, nil

	case config.StorageMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
		}
		logger.Get().Info("connected to mongo", zap.String("database", cfg.Mongo.Database))
		store := NewMongoStore(client.Database(cfg.Mongo.Database))
		return WithRetry(store, retryCfg), client.Disconnect, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
