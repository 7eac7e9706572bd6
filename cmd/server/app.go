package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/crossplay/internal/api/ws"
	"github.com/phrazzld/crossplay/internal/catalog"
	"github.com/phrazzld/crossplay/internal/config"
	"github.com/phrazzld/crossplay/internal/domain/game"
	"github.com/phrazzld/crossplay/internal/events"
	"github.com/phrazzld/crossplay/internal/service"
	"github.com/phrazzld/crossplay/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	sessionStore store.SessionStore
	catalog      *catalog.Catalog
	eventEmitter *events.InMemoryEventEmitter
	gameService  service.GameService
	hub          *ws.Hub
	reaper       *service.Reaper
}

// newApplication creates a new application instance with all dependencies initialized.
// The database must already be migrated.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.sessionStore, err = sessionStore(cfg.Database.Driver, db, logger)
	if err != nil {
		return nil, err
	}

	app.catalog, err = loadCatalog(cfg.Catalog, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Card catalog loaded", "cards", app.catalog.Len())

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	app.gameService, err = service.NewGameService(
		app.sessionStore,
		app.catalog,
		app.eventEmitter,
		service.Config{
			Settings: game.Settings{
				MaxPlayers: cfg.Game.MaxPlayers,
				HandSize:   cfg.Game.CardsPerPlayer,
			},
			SessionTTL: cfg.Session.TTL(),
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create game service: %w", err)
	}

	app.hub = ws.NewHub(app.gameService, cfg.Server.AllowedOrigins, logger)
	app.eventEmitter.RegisterHandler(app.hub)

	app.reaper = service.NewReaper(app.gameService, cfg.Session.CleanupInterval(), logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

func loadCatalog(cfg config.CatalogConfig, logger *slog.Logger) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		c, err := catalog.Default(logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load bundled card catalog: %w", err)
		}
		return c, nil
	}

	c, err := catalog.LoadFile(cfg.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load card catalog: %w", err)
	}
	return c, nil
}

// Run starts the reaper and the HTTP server and blocks until ctx is cancelled
// or the server fails.
func (app *application) Run(ctx context.Context) error {
	app.reaper.Start()

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.reaper != nil {
		app.reaper.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
