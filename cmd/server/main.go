// Package main implements the entry point for the TaskDeck API server,
// which manages per-user task lists behind JWT-authenticated endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String(
		"migrate",
		"",
		"run a migration command (up, down, status) instead of serving",
	)
	flag.Parse()

	cfg, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if *migrateCmd != "" {
		if err := runMigrationCommand(cfg, *migrateCmd); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		return
	}

	if err := runServer(context.Background(), cfg); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// initializeApp loads configuration and sets up logging.
// Returns the loaded config and any initialization error.
func initializeApp() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	return cfg, nil
}

// runServer connects the database, applies pending migrations, builds the
// application, and serves until interrupted.
func runServer(ctx context.Context, cfg *config.Config) error {
	db, err := setupAppDatabase(ctx, cfg)
	if err != nil {
		return err
	}

	if err := applyMigrations(db); err != nil {
		return err
	}

	app, err := newApplication(cfg, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
