// Package main implements the entry point for the userstore server, which
// exposes user CRUD over HTTP on top of a pluggable storage backend chosen
// at startup.
package main

import (
	"context"
	"fmt"
	"os"
)

// main is the entry point for the userstore server.
// It loads configuration, sets up logging, opens the configured store and
// serves HTTP until interrupted. Startup failures exit with status 1.
func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "userstore: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, logCloser, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	logger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_type", cfg.Database.Type)

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		return err
	}

	return app.Run(ctx)
}
