package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/crossplay/internal/config"
	"github.com/phrazzld/crossplay/internal/platform/migrations"
)

// handleMigrations runs a goose command against the configured database.
func handleMigrations(ctx context.Context, db *sql.DB, cfg *config.Config, command string, logger *slog.Logger) error {
	logger.Info("Executing migrations",
		"command", command,
		"driver", cfg.Database.Driver)
	return migrations.Run(ctx, db, cfg.Database.Driver, command, logger)
}
