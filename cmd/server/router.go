package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/careplan-api/internal/api"
	apiMiddleware "github.com/phrazzld/careplan-api/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
// Care plan routes require a bearer token only when auth is enabled.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	carePlanHandler := api.NewCarePlanHandler(app.admission, app.carePlans, app.logger)
	healthHandler := api.NewHealthHandler(app.storage.backend, app.logger)

	r.Route("/api", func(r chi.Router) {
		if app.jwtService != nil {
			authHandler := api.NewAuthHandler(app.authenticator, app.jwtService, app.logger)
			r.Post("/auth/token", authHandler.Token)
		}

		r.Group(func(r chi.Router) {
			if app.jwtService != nil {
				r.Use(apiMiddleware.NewAuthMiddleware(app.jwtService).Authenticate)
			}

			r.Post("/generate", carePlanHandler.Generate)
			r.Post("/orders", carePlanHandler.CreateOrder)
			r.Get("/careplans", carePlanHandler.List)
			r.Get("/careplans/{id}/status", carePlanHandler.Status)
			r.Get("/careplans/{id}/download", carePlanHandler.Download)
		})
	})

	r.Get("/health", healthHandler.Health)

	return r
}
