package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/opencorrections/warden/internal/domain"
	"github.com/opencorrections/warden/internal/scoring"
	"github.com/opencorrections/warden/internal/worker"
)

// IncidentRequest is the request body for POST /prisoners/{id}/incidents.
type IncidentRequest struct {
	Type        domain.BehaviorType `json:"behaviorType"`
	Severity    domain.Severity     `json:"severity"`
	Description string              `json:"description,omitempty"`
	ReportedBy  string              `json:"reportedBy,omitempty"`
	OccurredAt  time.Time           `json:"occurredAt,omitempty"`
}

// RecordIncident handles POST /prisoners/{id}/incidents.
func (h *Handler) RecordIncident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	prisonerID := chi.URLParam(r, "id")

	var req IncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	if !domain.ValidBehaviorType(req.Type) {
		writeError(w, http.StatusBadRequest, "behaviorType must be one of positive, negative, neutral")
		return
	}
	if !domain.ValidSeverity(req.Severity) {
		writeError(w, http.StatusBadRequest, "severity must be one of low, medium, high, critical")
		return
	}

	now := time.Now().UTC()
	occurred := req.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}

	incident := &domain.BehaviorIncident{
		ID:          uuid.New().String(),
		FacilityID:  facilityID,
		PrisonerID:  prisonerID,
		Type:        req.Type,
		Severity:    req.Severity,
		Description: req.Description,
		ReportedBy:  req.ReportedBy,
		OccurredAt:  occurred,
		CreatedAt:   now,
	}

	if err := h.repo.SaveIncident(ctx, facilityID, incident); err != nil {
		slog.Error("failed to save incident", "prisoner_id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save incident")
		return
	}

	if h.metrics != nil {
		h.metrics.IncidentsTotal.WithLabelValues(facilityID, string(req.Type)).Inc()
	}

	// Invalidate the cached summary; the next read recomputes
	if h.cache != nil {
		_ = h.cache.Delete(ctx, facilityID, "summary:"+prisonerID)
	}

	// Notify the async pipeline
	if h.bus != nil {
		payload, _ := json.Marshal(worker.RecordMessage{
			PrisonerID: prisonerID,
			FacilityID: facilityID,
			RecordID:   incident.ID,
		})
		if err := h.bus.Publish(ctx, facilityID, domain.TopicIncidentRecorded, payload); err != nil {
			slog.Warn("failed to publish incident event", "prisoner_id", prisonerID, "error", err)
		}
	}

	slog.Info("incident recorded",
		"incident_id", incident.ID,
		"prisoner_id", prisonerID,
		"type", incident.Type,
		"severity", incident.Severity,
	)
	writeJSON(w, http.StatusCreated, incident)
}

// ListIncidents handles GET /prisoners/{id}/incidents.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	prisonerID := chi.URLParam(r, "id")

	incidents, err := h.repo.ListIncidents(ctx, facilityID, prisonerID, h.windows.IncidentWindow)
	if err != nil {
		slog.Error("failed to list incidents", "prisoner_id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list incidents")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"incidents": incidents,
		"count":     len(incidents),
	})
}

// GetBehaviorSummary handles GET /prisoners/{id}/behavior-summary.
// The score is computed over the facility's incident window; cached
// summaries are served when fresh.
func (h *Handler) GetBehaviorSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	prisonerID := chi.URLParam(r, "id")

	if h.cache != nil {
		if cached, err := h.cache.GetSummary(ctx, facilityID, prisonerID); err == nil && cached != nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	incidents, err := h.repo.ListIncidents(ctx, facilityID, prisonerID, h.windows.IncidentWindow)
	if err != nil {
		slog.Error("failed to list incidents", "prisoner_id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	summary := scoring.Summarize(prisonerID, incidents)

	if h.metrics != nil {
		h.metrics.ScoreComputed.Observe(float64(summary.Score))
	}

	if h.cache != nil {
		ttl := time.Duration(h.windows.ReferenceTTL) * time.Second
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		_ = h.cache.SetSummary(ctx, facilityID, prisonerID, summary, ttl)
	}

	writeJSON(w, http.StatusOK, summary)
}
