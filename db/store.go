package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/slot-arena/config"
	"github.com/Dosada05/slot-arena/repositories"
	"github.com/Dosada05/slot-arena/repositories/memory"
)

const connectTimeout = 5 * time.Second

// OpenStore connects the configured backend, prepares its schema and returns
// the store with a close function.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		conn, err := Connect(cfg.DatabaseURL, connectTimeout, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := Migrate(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		closeFn := func() {
			if err := conn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}
		return repositories.NewPostgresStore(conn), closeFn, nil

	case config.StoreDriverMongo:
		client, err := ConnectMongo(cfg.MongoURI, connectTimeout)
		if err != nil {
			return nil, nil, err
		}
		database := client.Database(cfg.MongoDatabase)
		if err := EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Error("failed to disconnect from mongo", slog.Any("error", err))
			} else {
				logger.Info("mongo connection closed")
			}
		}
		return repositories.NewMongoStore(client, database), closeFn, nil

	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
