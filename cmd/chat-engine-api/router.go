// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/astra-ai/astra/libs/chat-engine/cmd/chat-engine-api/handlers"
	"github.com/astra-ai/astra/libs/chat-engine/cmd/chat-engine-api/middleware"
	"github.com/astra-ai/astra/libs/chat-engine/internal/cache"
	"github.com/astra-ai/astra/libs/chat-engine/internal/chat"
	"github.com/astra-ai/astra/libs/chat-engine/internal/config"
	"github.com/astra-ai/astra/libs/chat-engine/internal/llm"
	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
	"github.com/astra-ai/astra/libs/chat-engine/internal/review"
	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

// Deps bundles the services the HTTP surface exposes. Cloud and Local may be
// nil when the corresponding backend is not configured.
type Deps struct {
	Router    *chat.Router
	Cloud     llm.Backend
	Local     llm.Backend
	Vehicles  cache.VehicleStore
	Reviews   *storage.ReviewRepository
	Generator *review.Generator
	Store     *storage.Store
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"chat-engine"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := deps.Store.DB.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready"}`))
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	})

	chatHandler := handlers.NewChatHandler(logger, deps.Router, deps.Cloud, deps.Local)
	vehicleHandler := handlers.NewVehicleHandler(logger, deps.Vehicles, deps.Reviews, deps.Generator, deps.Store)

	r.Route("/api", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Post("/", chatHandler.Chat)
			r.Get("/metrics", chatHandler.Metrics)
			r.Post("/set_model", chatHandler.SetModel)
		})

		r.Route("/cars", func(r chi.Router) {
			r.Get("/", vehicleHandler.ListCars)
			r.Get("/{carID}", vehicleHandler.GetCar)
			r.Get("/{carID}/reviews", vehicleHandler.ListCarReviews)
		})

		r.Get("/manufacturers", vehicleHandler.ListManufacturers)
		r.Get("/test-db", vehicleHandler.TestDB)
		r.Post("/reviews/generate", vehicleHandler.GenerateReview)
	})

	return r
}
