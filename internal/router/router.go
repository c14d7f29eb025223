// Package router sets up all HTTP routes and middleware chains for the
// listing service.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vendora/internal/handlers"
	"vendora/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(listing *handlers.Listing, taxonomy *handlers.Taxonomy) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check and Prometheus scrape endpoint.
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public API — rate limited per client IP.
	limiter := middleware.NewRateLimiter(120, time.Minute)
	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Middleware)

		r.Get("/products", listing.Products)
		r.Get("/categories", taxonomy.Categories)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
