// Package migrations embeds the database schema for every supported driver
// and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedded embed.FS

// TableName is the table goose uses to track applied migrations.
const TableName = "schema_migrations"

// Supported database drivers, matching config.DatabaseConfig.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	// ErrUnsupportedDriver is returned for a driver with no embedded schema.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrUnknownCommand is returned for a migration command Run does not know.
	ErrUnknownCommand = errors.New("unknown migration command")
)

// Commands lists the migration commands accepted by Run.
var Commands = []string{"up", "down", "reset", "status", "version"}

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// dialect maps a configured driver onto a goose dialect and the embedded
// directory holding its migrations.
func dialect(driver string) (string, string, error) {
	switch driver {
	case DriverPostgres:
		return "postgres", "postgres", nil
	case DriverSQLite:
		return "sqlite3", "sqlite", nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Run executes a goose command against db using the schema embedded for driver.
func Run(ctx context.Context, db *sql.DB, driver, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(
		slog.String("component", "migrations"),
		slog.String("driver", driver),
		slog.String("command", command),
	)

	gooseDialect, dir, err := dialect(driver)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetBaseFS(embedded)
	goose.SetTableName(TableName)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	start := time.Now()
	log.Info("starting migration operation")

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, dir)
	case "down":
		err = goose.DownContext(ctx, db, dir)
	case "reset":
		err = goose.ResetContext(ctx, db, dir)
	case "status":
		err = goose.StatusContext(ctx, db, dir)
	case "version":
		err = goose.VersionContext(ctx, db, dir)
	default:
		return fmt.Errorf("%w: %s (expected one of %v)", ErrUnknownCommand, command, Commands)
	}

	if err != nil {
		log.Error("migration command failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fmt.Errorf("migration command '%s' failed: %w", command, err)
	}

	log.Info("migration command executed successfully",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, driver string, logger *slog.Logger) error {
	return Run(ctx, db, driver, "up", logger)
}

// Version returns the schema version currently applied to db.
func Version(ctx context.Context, db *sql.DB, driver string) (int64, error) {
	gooseDialect, _, err := dialect(driver)
	if err != nil {
		return 0, err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetTableName(TableName)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf forwards goose progress messages at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level. It does not exit; the error is returned to
// the caller of Run.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
