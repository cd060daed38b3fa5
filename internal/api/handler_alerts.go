package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opencorrections/warden/internal/alert"
	"github.com/opencorrections/warden/internal/domain"
	"github.com/opencorrections/warden/internal/rating"
	"github.com/opencorrections/warden/internal/repository"
	"github.com/opencorrections/warden/internal/scoring"
)

// CreateAlertRuleRequest is the request body for creating an alert rule.
type CreateAlertRuleRequest struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Expression  string          `json:"expression"`
	Severity    domain.Severity `json:"severity"`
	Enabled     bool            `json:"enabled"`
}

// ListAlertRules returns all loaded alert rules from the engine.
// Rules are loaded from the database at startup and can be reloaded
// via POST /alert-rules/reload.
func (h *Handler) ListAlertRules(w http.ResponseWriter, r *http.Request) {
	loadedRules := h.engine.GetLoadedRules()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules":  loadedRules,
		"count":  len(loadedRules),
		"source": "database",
	})
}

// GetAlertRule retrieves a rule by ID from the loaded engine rules.
func (h *Handler) GetAlertRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")

	for _, rule := range h.engine.GetLoadedRules() {
		if rule.ID == ruleID {
			writeJSON(w, http.StatusOK, rule)
			return
		}
	}

	writeError(w, http.StatusNotFound, "alert rule not found")
}

// CreateAlertRule creates a new alert rule and saves it to the database.
// After saving, call POST /alert-rules/reload to hot-reload into the engine.
func (h *Handler) CreateAlertRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)

	var req CreateAlertRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	if req.ID == "" || req.Name == "" || req.Expression == "" {
		writeError(w, http.StatusBadRequest, "id, name, and expression are required")
		return
	}
	if req.Severity == "" {
		req.Severity = domain.SeverityMedium
	}
	if !domain.ValidSeverity(req.Severity) {
		writeError(w, http.StatusBadRequest, "severity must be one of low, medium, high, critical")
		return
	}

	rule := &domain.AlertRule{
		ID:          req.ID,
		FacilityID:  facilityID,
		Name:        req.Name,
		Description: req.Description,
		Version:     "1.0.0",
		Expression:  req.Expression,
		Severity:    req.Severity,
		Enabled:     req.Enabled,
	}

	// Validate CEL expression by attempting to load
	if err := h.engine.LoadRule(rule); err != nil {
		writeError(w, http.StatusBadRequest, "invalid CEL expression: "+err.Error())
		return
	}

	if err := h.repo.SaveAlertRule(ctx, facilityID, rule); err != nil {
		slog.Error("failed to save alert rule", "id", rule.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save alert rule")
		return
	}

	slog.Info("alert rule created", "id", rule.ID, "name", rule.Name)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"rule":    rule,
		"message": "Rule created. Call POST /alert-rules/reload to apply changes.",
	})
}

// DeleteAlertRule disables an alert rule and reloads the engine.
func (h *Handler) DeleteAlertRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	ruleID := chi.URLParam(r, "id")

	if err := h.repo.DeleteAlertRule(ctx, facilityID, ruleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert rule not found")
			return
		}
		slog.Error("failed to delete alert rule", "id", ruleID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete alert rule")
		return
	}

	// Auto-reload after delete
	rules, err := h.repo.ListAlertRules(ctx, facilityID)
	if err != nil {
		slog.Error("failed to reload rules after delete", "error", err)
	} else if err := h.engine.ReloadRules(rules); err != nil {
		slog.Error("failed to reload rules into engine", "error", err)
	}

	slog.Info("alert rule deleted", "id", ruleID)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "alert rule deleted and engine reloaded",
	})
}

// ReloadAlertRules reloads all alert rules from the database into the engine.
// This enables hot-reloading without server restart.
func (h *Handler) ReloadAlertRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)

	rules, err := h.repo.ListAlertRules(ctx, facilityID)
	if err != nil {
		slog.Error("failed to list alert rules from database", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load alert rules from database")
		return
	}

	if err := h.engine.ReloadRules(rules); err != nil {
		slog.Error("failed to reload rules into engine", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reload rules: "+err.Error())
		return
	}

	slog.Info("alert rules reloaded from database", "count", len(rules))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "alert rules reloaded successfully",
		"count":   len(rules),
	})
}

// EvaluateAlerts handles GET /prisoners/{id}/alerts.
// Evaluates all loaded rules against the prisoner's current summaries.
func (h *Handler) EvaluateAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	prisonerID := chi.URLParam(r, "id")

	incidents, err := h.repo.ListIncidents(ctx, facilityID, prisonerID, h.windows.IncidentWindow)
	if err != nil {
		slog.Error("failed to list incidents", "prisoner_id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to evaluate alerts")
		return
	}
	ratings, err := h.repo.ListRatings(ctx, facilityID, prisonerID, h.windows.RatingWindow)
	if err != nil {
		slog.Error("failed to list ratings", "prisoner_id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to evaluate alerts")
		return
	}

	behaviorSummary := scoring.Summarize(prisonerID, incidents)
	ratingSummary := rating.ComputeSummary(prisonerID, ratings)

	results, err := h.engine.EvaluateAll(ctx, &alert.EvaluateInput{
		FacilityID:     facilityID,
		PrisonerID:     prisonerID,
		Behavior:       behaviorSummary,
		Rating:         ratingSummary,
		ActivityWindow: 3600,
	})
	if err != nil {
		slog.Error("alert evaluation failed", "prisoner_id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "alert evaluation failed")
		return
	}

	flagged := 0
	for _, result := range results {
		if result.Flagged {
			flagged++
			if h.metrics != nil {
				h.metrics.AlertsTotal.WithLabelValues(facilityID, string(result.Severity)).Inc()
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prisonerId": prisonerID,
		"score":      behaviorSummary.Score,
		"trend":      ratingSummary.Trend,
		"results":    results,
		"flagged":    flagged,
	})
}
