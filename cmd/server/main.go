// Package main runs the crossplay game server: a REST API for game sessions
// and the card catalog, plus websocket state pushes to connected players.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// options holds the command-line flags.
type options struct {
	configPath string
	migrate    string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("crossplay", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to a config file (default ./config.yaml when present)")
	fs.StringVar(&opts.migrate, "migrate", "", "run a migration command (up, down, reset, status, version) and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("crossplay server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run wires the application and blocks until it shuts down.
func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := loadAppConfig(opts.configPath)
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if opts.migrate != "" {
		defer func() { _ = db.Close() }()
		return handleMigrations(ctx, db, cfg, opts.migrate, logger)
	}

	if err := handleMigrations(ctx, db, cfg, "up", logger); err != nil {
		_ = db.Close()
		return err
	}

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
