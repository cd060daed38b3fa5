package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/opencorrections/warden/internal/domain"
	"github.com/opencorrections/warden/internal/repository"
)

// ValidateRequest optionally overrides the identity fields submitted for
// verification. Empty fields fall back to the stored prisoner record.
type ValidateRequest struct {
	GovernmentID string        `json:"governmentId,omitempty"`
	Name         string        `json:"name,omitempty"`
	DateOfBirth  string        `json:"dateOfBirth,omitempty"` // YYYY-MM-DD
	Gender       domain.Gender `json:"gender,omitempty"`
	Address      string        `json:"address,omitempty"`
}

// ValidatePrisoner handles POST /prisoners/{id}/validate.
// The submitted identity is checked against the government registry;
// lookup failures surface in the result status, never as HTTP errors.
func (h *Handler) ValidatePrisoner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	prisonerID := chi.URLParam(r, "id")

	prisoner, err := h.repo.GetPrisoner(ctx, facilityID, prisonerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prisoner not found")
			return
		}
		slog.Error("failed to get prisoner", "id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get prisoner")
		return
	}

	var req ValidateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON request body")
			return
		}
	}

	governmentID := req.GovernmentID
	if governmentID == "" {
		governmentID = prisoner.GovernmentID
	}
	if governmentID == "" {
		writeError(w, http.StatusBadRequest, "prisoner has no government id on file")
		return
	}

	submitted := domain.IdentityRecord{
		Name:        prisoner.FullName(),
		DateOfBirth: prisoner.DateOfBirth,
		Gender:      prisoner.Gender,
		Address:     prisoner.Address,
	}
	if req.Name != "" {
		submitted.Name = req.Name
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			writeError(w, http.StatusBadRequest, "dateOfBirth must be in YYYY-MM-DD format")
			return
		}
		submitted.DateOfBirth = dob
	}
	if req.Gender != "" {
		submitted.Gender = req.Gender
	}
	if req.Address != "" {
		submitted.Address = req.Address
	}

	result := h.validator.Validate(ctx, facilityID, prisonerID, governmentID, submitted)

	if err := h.repo.SaveValidation(ctx, facilityID, result); err != nil {
		slog.Error("failed to save validation", "prisoner_id", prisonerID, "error", err)
	}

	if h.metrics != nil {
		h.metrics.ValidationsTotal.WithLabelValues(facilityID, string(result.Status)).Inc()
	}

	if h.bus != nil {
		payload, _ := json.Marshal(result)
		if err := h.bus.Publish(ctx, facilityID, domain.TopicValidationCompleted, payload); err != nil {
			slog.Warn("failed to publish validation event", "prisoner_id", prisonerID, "error", err)
		}
	}

	slog.Info("validation completed",
		"validation_id", result.ID,
		"prisoner_id", prisonerID,
		"status", result.Status,
		"discrepancies", len(result.Discrepancies),
	)
	writeJSON(w, http.StatusOK, result)
}

// ListValidations handles GET /prisoners/{id}/validations.
func (h *Handler) ListValidations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	prisonerID := chi.URLParam(r, "id")

	results, err := h.repo.ListValidations(ctx, facilityID, prisonerID)
	if err != nil {
		slog.Error("failed to list validations", "prisoner_id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list validations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"validations": results,
		"count":       len(results),
	})
}
