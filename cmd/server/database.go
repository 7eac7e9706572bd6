package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/crossplay/internal/config"
	"github.com/phrazzld/crossplay/internal/platform/migrations"
	"github.com/phrazzld/crossplay/internal/platform/postgres"
	"github.com/phrazzld/crossplay/internal/platform/sqlite"
	"github.com/phrazzld/crossplay/internal/redact"
	"github.com/phrazzld/crossplay/internal/store"
)

// setupAppDatabase opens the configured database and verifies connectivity.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	switch cfg.Database.Driver {
	case migrations.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %s", redact.Error(err))
		}
		logger.Info("Database connection established", "driver", cfg.Database.Driver)
		return db, nil

	case migrations.DriverPostgres:
		db, err := sql.Open("pgx", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %s", redact.Error(err))
		}

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %s", redact.Error(err))
		}

		logger.Info("Database connection established", "driver", cfg.Database.Driver)
		return db, nil

	default:
		return nil, fmt.Errorf("%w: %q", migrations.ErrUnsupportedDriver, cfg.Database.Driver)
	}
}

// sessionStore returns the session store for the configured driver.
func sessionStore(driver string, db *sql.DB, logger *slog.Logger) (store.SessionStore, error) {
	switch driver {
	case migrations.DriverSQLite:
		return sqlite.NewSQLiteSessionStore(db, logger), nil
	case migrations.DriverPostgres:
		return postgres.NewPostgresSessionStore(db, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", migrations.ErrUnsupportedDriver, driver)
	}
}
