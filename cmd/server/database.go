package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/userstore/internal/config"
	"github.com/phrazzld/userstore/internal/platform/mongo"
	"github.com/phrazzld/userstore/internal/platform/mysql"
	"github.com/phrazzld/userstore/internal/platform/postgres"
	"github.com/phrazzld/userstore/internal/platform/redis"
	"github.com/phrazzld/userstore/internal/platform/sqlite"
	"github.com/phrazzld/userstore/internal/store"
)

// storeOpenTimeout bounds connecting to the backend and provisioning its schema.
const storeOpenTimeout = 30 * time.Second

// openUserStore opens the backend selected by cfg.Type. It is the only place
// that knows about concrete adapters; everything after startup sees the
// store.UserStore contract.
func openUserStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.UserStore, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpenTimeout)
	defer cancel()

	logger.Info("Opening user store", "database_type", cfg.Type)

	switch cfg.Type {
	case config.DatabasePostgres:
		s, err := postgres.Open(ctx, cfg.PostgresURL, postgres.Options{
			CreateDatabase: cfg.PostgresCreateDatabase,
			MaxOpenConns:   cfg.MaxOpenConns,
		}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.DatabaseMySQL:
		s, err := mysql.Open(ctx, cfg.MySQLURL, mysql.Options{MaxOpenConns: cfg.MaxOpenConns}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.DatabaseRedis:
		s, err := redis.Open(ctx, cfg.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.DatabaseMongo:
		s, err := mongo.Open(ctx, cfg.MongoURL, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.DatabaseSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}
