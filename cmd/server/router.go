package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/crossplay/internal/api"
	apiMiddleware "github.com/phrazzld/crossplay/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	sessionHandler := api.NewSessionHandler(app.gameService, app.logger)
	cardHandler := api.NewCardHandler(app.catalog, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)
			r.Get("/", sessionHandler.ListSessions)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Delete("/", sessionHandler.DeleteSession)

				r.Post("/players", sessionHandler.AddPlayer)
				r.Delete("/players/{playerID}", sessionHandler.RemovePlayer)

				r.Post("/start", sessionHandler.StartGame)
				r.Post("/moves", sessionHandler.ExecuteMove)
				r.Get("/insertion-points", sessionHandler.InsertionPoints)
				r.Get("/state", sessionHandler.GameState)
				r.Post("/reveal", sessionHandler.RevealCards)
				r.Post("/rounds", sessionHandler.StartNewRound)
				r.Post("/rounds/end", sessionHandler.EndRound)
			})
		})

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.ListCards)
			r.Get("/stats", cardHandler.CardStats)
			r.Get("/{cardID}", cardHandler.GetCard)
		})
	})

	r.Get("/ws/sessions/{id}", app.hub.ServeWS)
	r.Method(http.MethodGet, "/health", api.NewHealthHandler(app.db, app.logger))

	return r
}
