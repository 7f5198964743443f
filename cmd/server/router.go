package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/renshu-app/renshu/internal/api"
	apiMiddleware "github.com/renshu-app/renshu/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	sessionHandler := api.NewSessionHandler(app.reviewService, app.logger)
	itemHandler := api.NewItemHandler(app.reviewService, app.logger)
	identity := apiMiddleware.IdentityMiddleware(uuidResolver{})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(identity)

			// Study session endpoints
			r.Post("/sessions", sessionHandler.StartSession)
			r.Get("/sessions/{id}", sessionHandler.GetSession)
			r.Post("/sessions/{id}/flip", sessionHandler.FlipCard)
			r.Post("/sessions/{id}/answer", sessionHandler.SubmitAnswer)
			r.Post("/sessions/{id}/rate", sessionHandler.RateCard)
			r.Post("/sessions/{id}/end", sessionHandler.EndSession)

			// Item endpoints
			r.Get("/items/due", itemHandler.GetDueItems)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
