/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for admin dashboards

ROUTE GROUPS:
  /api/accounts/*   Allocation and lifecycle
  /api/actions/*    Follow-up action dispatch
  /api/auth/*       Access code verification
  /api/admin/*      Minting and raw row inspection
  /api/stats        Availability numbers
  /metrics          Prometheus scrape endpoint

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Account routes
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/claim", h.ClaimAccount)
			r.Post("/pack", h.ClaimPack)
			r.Post("/release", h.ReleaseAccount)
			r.Post("/ban", h.ReportBan)
			r.Post("/import", h.ImportAccounts)
		})

		// Follow-up actions
		r.Route("/actions", func(r chi.Router) {
			r.Post("/dispatch", h.DispatchAction)
		})

		// Access codes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/verify", h.VerifyCode)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/authcodes", h.MintCodes)
			r.Get("/rows/{category}/{n}", h.GetRawRow)
		})

		r.Get("/stats", h.GetStats)
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
