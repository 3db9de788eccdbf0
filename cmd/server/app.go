package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/userstore/internal/config"
	"github.com/phrazzld/userstore/internal/platform/metrics"
	"github.com/phrazzld/userstore/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	userStore store.UserStore
}

// newApplication opens the configured store and wraps it with metrics.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	s, err := openUserStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Database.Type, err)
	}

	app := &application{
		config:    cfg,
		logger:    logger,
		userStore: metrics.InstrumentStore(s, string(cfg.Database.Type)),
	}

	logger.Info("Application initialized successfully", "database_type", cfg.Database.Type)
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.userStore != nil {
		if err := app.userStore.Close(); err != nil {
			app.logger.Error("Error closing user store", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
