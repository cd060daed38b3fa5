package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/opencorrections/warden/internal/domain"
	"github.com/opencorrections/warden/internal/repository"
)

// visitWindow bounds how many check-ins a visitor may make per day.
const (
	visitWindow   = 24 * time.Hour
	maxDailyVisit = 3
)

// VisitorRequest is the request body for POST /visitors.
type VisitorRequest struct {
	PrisonerID   string `json:"prisonerId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Relationship string `json:"relationship,omitempty"`
	GovernmentID string `json:"governmentId,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// CreateVisitor handles POST /visitors.
func (h *Handler) CreateVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)

	var req VisitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	if req.PrisonerID == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "prisonerId and lastName are required")
		return
	}

	// The prisoner must exist in this facility
	if _, err := h.repo.GetPrisoner(ctx, facilityID, req.PrisonerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prisoner not found")
			return
		}
		slog.Error("failed to get prisoner", "id", req.PrisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify prisoner")
		return
	}

	now := time.Now().UTC()
	visitor := &domain.Visitor{
		ID:           uuid.New().String(),
		FacilityID:   facilityID,
		PrisonerID:   req.PrisonerID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Relationship: req.Relationship,
		GovernmentID: req.GovernmentID,
		Phone:        req.Phone,
		Approved:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.repo.SaveVisitor(ctx, facilityID, visitor); err != nil {
		slog.Error("failed to save visitor", "prisoner_id", req.PrisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save visitor")
		return
	}

	slog.Info("visitor registered", "visitor_id", visitor.ID, "prisoner_id", req.PrisonerID)
	writeJSON(w, http.StatusCreated, visitor)
}

// GetVisitor handles GET /visitors/{id}.
func (h *Handler) GetVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	visitorID := chi.URLParam(r, "id")

	visitor, err := h.repo.GetVisitor(ctx, facilityID, visitorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "visitor not found")
			return
		}
		slog.Error("failed to get visitor", "id", visitorID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get visitor")
		return
	}

	writeJSON(w, http.StatusOK, visitor)
}

// ListVisitors handles GET /visitors. An optional prisonerId query
// parameter narrows the list to one prisoner.
func (h *Handler) ListVisitors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	prisonerID := r.URL.Query().Get("prisonerId")

	visitors, err := h.repo.ListVisitors(ctx, facilityID, prisonerID)
	if err != nil {
		slog.Error("failed to list visitors", "facility_id", facilityID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list visitors")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"visitors": visitors,
		"count":    len(visitors),
	})
}

// ApproveVisitor handles PUT /visitors/{id}/approve.
func (h *Handler) ApproveVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	visitorID := chi.URLParam(r, "id")

	visitor, err := h.repo.GetVisitor(ctx, facilityID, visitorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "visitor not found")
			return
		}
		slog.Error("failed to get visitor", "id", visitorID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get visitor")
		return
	}

	visitor.Approved = true
	visitor.UpdatedAt = time.Now().UTC()

	// SaveVisitor is insert-only; replace the record
	if err := h.repo.DeleteVisitor(ctx, facilityID, visitorID); err != nil {
		slog.Error("failed to update visitor", "id", visitorID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update visitor")
		return
	}
	if err := h.repo.SaveVisitor(ctx, facilityID, visitor); err != nil {
		slog.Error("failed to update visitor", "id", visitorID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update visitor")
		return
	}

	slog.Info("visitor approved", "visitor_id", visitorID, "facility_id", facilityID)
	writeJSON(w, http.StatusOK, visitor)
}

// CheckInVisitor handles POST /visitors/{id}/checkin.
// Check-ins are throttled per visitor over a rolling daily window.
func (h *Handler) CheckInVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	visitorID := chi.URLParam(r, "id")

	visitor, err := h.repo.GetVisitor(ctx, facilityID, visitorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "visitor not found")
			return
		}
		slog.Error("failed to get visitor", "id", visitorID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get visitor")
		return
	}

	if !visitor.Approved {
		writeError(w, http.StatusForbidden, "visitor is not approved")
		return
	}

	count, err := h.activity.RecordVisit(ctx, facilityID, visitorID, visitWindow)
	if err != nil {
		slog.Error("failed to record visit", "visitor_id", visitorID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record visit")
		return
	}
	if count > maxDailyVisit {
		writeError(w, http.StatusTooManyRequests, "daily visit limit reached")
		return
	}

	slog.Info("visitor checked in",
		"visitor_id", visitorID,
		"prisoner_id", visitor.PrisonerID,
		"visits_today", count,
	)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"visitorId":   visitorID,
		"prisonerId":  visitor.PrisonerID,
		"visitsToday": count,
	})
}

// DeleteVisitor handles DELETE /visitors/{id}.
func (h *Handler) DeleteVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	visitorID := chi.URLParam(r, "id")

	if err := h.repo.DeleteVisitor(ctx, facilityID, visitorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "visitor not found")
			return
		}
		slog.Error("failed to delete visitor", "id", visitorID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete visitor")
		return
	}

	slog.Info("visitor deleted", "visitor_id", visitorID, "facility_id", facilityID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "visitor deleted"})
}
