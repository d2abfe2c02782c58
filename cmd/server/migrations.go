package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/taskdeck/taskdeck-api/internal/config"
)

// migrationsDir is the on-disk location of the goose migration scripts,
// relative to the working directory the server starts in.
const migrationsDir = "migrations"

// slogGooseLogger routes goose output through the structured logger.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

// applyMigrations brings the schema up to date before the server starts
// accepting requests.
func applyMigrations(db *sql.DB) error {
	goose.SetLogger(&slogGooseLogger{})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.RunContext(context.Background(), "up", db, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	slog.Info("Database migrations applied")
	return nil
}

// runMigrationCommand executes a single migration command (up, down, status)
// and exits without serving. It opens its own short-lived connection.
func runMigrationCommand(cfg *config.Config, command string) error {
	ctx := context.Background()

	db, err := setupAppDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Error closing database connection", "error", closeErr)
		}
	}()

	goose.SetLogger(&slogGooseLogger{})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	switch command {
	case "up", "down", "status":
		if err := goose.RunContext(ctx, command, db, migrationsDir); err != nil {
			return fmt.Errorf("migration command %q failed: %w", command, err)
		}
	default:
		return fmt.Errorf("unknown migration command %q (expected up, down, or status)", command)
	}

	return nil
}
