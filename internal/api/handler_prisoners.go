package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/opencorrections/warden/internal/domain"
	"github.com/opencorrections/warden/internal/repository"
)

// CreatePrisoner handles POST /prisoners.
func (h *Handler) CreatePrisoner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)

	var req domain.PrisonerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	if req.InmateNumber == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "inmateNumber and lastName are required")
		return
	}
	if req.Gender != "" && !domain.ValidGender(req.Gender) {
		writeError(w, http.StatusBadRequest, "gender must be one of male, female, other")
		return
	}

	prisoner := req.ToPrisoner()
	prisoner.ID = uuid.New().String()
	prisoner.FacilityID = facilityID

	if err := h.repo.SavePrisoner(ctx, facilityID, prisoner); err != nil {
		slog.Error("failed to save prisoner", "inmate_number", req.InmateNumber, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save prisoner")
		return
	}

	slog.Info("prisoner admitted",
		"prisoner_id", prisoner.ID,
		"facility_id", facilityID,
		"inmate_number", prisoner.InmateNumber,
	)
	writeJSON(w, http.StatusCreated, prisoner)
}

// GetPrisoner handles GET /prisoners/{id}.
func (h *Handler) GetPrisoner(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, prisoner)
}

// ListPrisoners handles GET /prisoners.
func (h *Handler) ListPrisoners(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	prisoners, err := h.repo.ListPrisoners(ctx, facilityID, limit, offset)
	if err != nil {
		slog.Error("failed to list prisoners", "facility_id", facilityID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list prisoners")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prisoners": prisoners,
		"count":     len(prisoners),
	})
}

// UpdatePrisonerRequest is the request body for PUT /prisoners/{id}.
type UpdatePrisonerRequest struct {
	domain.PrisonerRequest
	Status      string     `json:"status,omitempty"`
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
}

// UpdatePrisoner handles PUT /prisoners/{id}.
func (h *Handler) UpdatePrisoner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	prisonerID := chi.URLParam(r, "id")

	existing, err := h.repo.GetPrisoner(ctx, facilityID, prisonerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prisoner not found")
			return
		}
		slog.Error("failed to get prisoner", "id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get prisoner")
		return
	}

	var req UpdatePrisonerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	if req.InmateNumber != "" {
		existing.InmateNumber = req.InmateNumber
	}
	if req.FirstName != "" {
		existing.FirstName = req.FirstName
	}
	if req.LastName != "" {
		existing.LastName = req.LastName
	}
	if !req.DateOfBirth.IsZero() {
		existing.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != "" {
		if !domain.ValidGender(req.Gender) {
			writeError(w, http.StatusBadRequest, "gender must be one of male, female, other")
			return
		}
		existing.Gender = req.Gender
	}
	if req.GovernmentID != "" {
		existing.GovernmentID = req.GovernmentID
	}
	if req.Address != "" {
		existing.Address = req.Address
	}
	if req.CellBlock != "" {
		existing.CellBlock = req.CellBlock
	}
	if req.Status != "" {
		switch req.Status {
		case domain.PrisonerStatusActive, domain.PrisonerStatusReleased, domain.PrisonerStatusTransferred:
			existing.Status = req.Status
		default:
			writeError(w, http.StatusBadRequest, "status must be one of active, released, transferred")
			return
		}
	}
	if req.ReleaseDate != nil {
		existing.ReleaseDate = req.ReleaseDate
	}
	if req.Metadata != nil {
		existing.Metadata = req.Metadata
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := h.repo.UpdatePrisoner(ctx, facilityID, existing); err != nil {
		slog.Error("failed to update prisoner", "id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update prisoner")
		return
	}

	writeJSON(w, http.StatusOK, existing)
}

// DeletePrisoner handles DELETE /prisoners/{id}.
func (h *Handler) DeletePrisoner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	prisonerID := chi.URLParam(r, "id")

	if err := h.repo.DeletePrisoner(ctx, facilityID, prisonerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prisoner not found")
			return
		}
		slog.Error("failed to delete prisoner", "id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete prisoner")
		return
	}

	// Drop any cached summary for the removed record
	if h.cache != nil {
		_ = h.cache.Delete(ctx, facilityID, "summary:"+prisonerID)
	}

	slog.Info("prisoner deleted", "prisoner_id", prisonerID, "facility_id", facilityID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "prisoner deleted"})
}
