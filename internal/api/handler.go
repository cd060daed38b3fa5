package api

import (
	"encoding/json"
	"net/http"

	"github.com/opencorrections/warden/internal/activity"
	"github.com/opencorrections/warden/internal/alert"
	"github.com/opencorrections/warden/internal/auth"
	"github.com/opencorrections/warden/internal/domain"
	"github.com/opencorrections/warden/internal/govcheck"
	"github.com/opencorrections/warden/internal/metrics"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	repo       domain.Repository
	cache      domain.Cache
	bus        domain.EventBus
	engine     *alert.Engine
	validator  *govcheck.Service
	activity   *activity.Service
	jwtService *auth.JWTService
	metrics    *metrics.Metrics
	windows    domain.WindowConfig
	version    string
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *alert.Engine, validator *govcheck.Service, activitySvc *activity.Service, jwtService *auth.JWTService, m *metrics.Metrics, windows domain.WindowConfig, version string) *Handler {
	if windows.IncidentWindow <= 0 {
		windows.IncidentWindow = 50
	}
	if windows.RatingWindow <= 0 {
		windows.RatingWindow = 10
	}
	return &Handler{
		repo:       repo,
		cache:      cache,
		bus:        bus,
		engine:     engine,
		validator:  validator,
		activity:   activitySvc,
		jwtService: jwtService,
		metrics:    m,
		windows:    windows,
		version:    version,
	}
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	// Check repository health
	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	// Check cache health
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
