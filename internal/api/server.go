// Package api provides the HTTP surface for Warden.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/opencorrections/warden/internal/activity"
	"github.com/opencorrections/warden/internal/alert"
	"github.com/opencorrections/warden/internal/auth"
	"github.com/opencorrections/warden/internal/domain"
	"github.com/opencorrections/warden/internal/govcheck"
	"github.com/opencorrections/warden/internal/metrics"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *alert.Engine, validator *govcheck.Service, activitySvc *activity.Service, jwtService *auth.JWTService, m *metrics.Metrics, windows domain.WindowConfig, version string) *Server {
	handler := NewHandler(repo, cache, bus, engine, validator, activitySvc, jwtService, m, windows, version)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(MetricsMiddleware(m))   // Prometheus instrumentation
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health and metrics endpoints (no facility required)
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)
	if m != nil {
		router.Method(http.MethodGet, "/metrics", m.Handler())
	}

	// API routes (facility required)
	router.Route("/", func(r chi.Router) {
		r.Use(FacilityMiddleware)

		// Authentication (no token required)
		r.Post("/auth/register", handler.Register)
		r.Post("/auth/login", handler.Login)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(jwtService))

			r.Get("/auth/me", handler.Me)

			// Prisoner records
			r.Get("/prisoners", handler.ListPrisoners)
			r.Get("/prisoners/{id}", handler.GetPrisoner)
			r.With(RequireRole(domain.RoleWarden, domain.RoleClerk)).Post("/prisoners", handler.CreatePrisoner)
			r.With(RequireRole(domain.RoleWarden, domain.RoleClerk)).Put("/prisoners/{id}", handler.UpdatePrisoner)
			r.With(RequireRole(domain.RoleWarden)).Delete("/prisoners/{id}", handler.DeletePrisoner)

			// Behavior incidents and scoring
			r.Post("/prisoners/{id}/incidents", handler.RecordIncident)
			r.Get("/prisoners/{id}/incidents", handler.ListIncidents)
			r.Get("/prisoners/{id}/behavior-summary", handler.GetBehaviorSummary)

			// Ratings and trend
			r.Post("/prisoners/{id}/ratings", handler.RecordRating)
			r.Get("/prisoners/{id}/ratings", handler.ListRatings)
			r.Get("/prisoners/{id}/rating-summary", handler.GetRatingSummary)

			// Government identity verification
			r.Post("/prisoners/{id}/validate", handler.ValidatePrisoner)
			r.Get("/prisoners/{id}/validations", handler.ListValidations)

			// Alert rules
			r.Get("/prisoners/{id}/alerts", handler.EvaluateAlerts)
			r.Get("/alert-rules", handler.ListAlertRules)
			r.Get("/alert-rules/{id}", handler.GetAlertRule)
			r.With(RequireRole(domain.RoleWarden)).Post("/alert-rules", handler.CreateAlertRule)
			r.With(RequireRole(domain.RoleWarden)).Delete("/alert-rules/{id}", handler.DeleteAlertRule)
			r.With(RequireRole(domain.RoleWarden)).Post("/alert-rules/reload", handler.ReloadAlertRules)

			// Staff profiles
			r.Get("/staff", handler.ListStaff)
			r.Get("/staff/{id}", handler.GetStaff)
			r.With(RequireRole(domain.RoleWarden)).Post("/staff", handler.CreateStaff)
			r.With(RequireRole(domain.RoleWarden)).Delete("/staff/{id}", handler.DeleteStaff)

			// Visitor registry
			r.Get("/visitors", handler.ListVisitors)
			r.Get("/visitors/{id}", handler.GetVisitor)
			r.Post("/visitors", handler.CreateVisitor)
			r.With(RequireRole(domain.RoleWarden, domain.RoleGuard)).Put("/visitors/{id}/approve", handler.ApproveVisitor)
			r.With(RequireRole(domain.RoleWarden, domain.RoleGuard)).Post("/visitors/{id}/checkin", handler.CheckInVisitor)
			r.With(RequireRole(domain.RoleWarden)).Delete("/visitors/{id}", handler.DeleteVisitor)
		})
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
