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

// StaffRequest is the request body for POST /staff.
type StaffRequest struct {
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	BadgeNumber string    `json:"badgeNumber"`
	Role        string    `json:"role"`
	Department  string    `json:"department,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	HireDate    time.Time `json:"hireDate,omitempty"`
}

// CreateStaff handles POST /staff.
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)

	var req StaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	if req.LastName == "" || req.BadgeNumber == "" {
		writeError(w, http.StatusBadRequest, "lastName and badgeNumber are required")
		return
	}

	now := time.Now().UTC()
	hireDate := req.HireDate
	if hireDate.IsZero() {
		hireDate = now
	}

	member := &domain.StaffMember{
		ID:          uuid.New().String(),
		FacilityID:  facilityID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		BadgeNumber: req.BadgeNumber,
		Role:        req.Role,
		Department:  req.Department,
		Email:       req.Email,
		Phone:       req.Phone,
		Active:      true,
		HireDate:    hireDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.repo.SaveStaff(ctx, facilityID, member); err != nil {
		slog.Error("failed to save staff member", "badge_number", req.BadgeNumber, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save staff member")
		return
	}

	slog.Info("staff member created", "staff_id", member.ID, "facility_id", facilityID)
	writeJSON(w, http.StatusCreated, member)
}

// GetStaff handles GET /staff/{id}.
func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	staffID := chi.URLParam(r, "id")

	member, err := h.repo.GetStaff(ctx, facilityID, staffID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "staff member not found")
			return
		}
		slog.Error("failed to get staff member", "id", staffID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get staff member")
		return
	}

	writeJSON(w, http.StatusOK, member)
}

// ListStaff handles GET /staff.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)

	members, err := h.repo.ListStaff(ctx, facilityID)
	if err != nil {
		slog.Error("failed to list staff", "facility_id", facilityID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list staff")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"staff": members,
		"count": len(members),
	})
}

// DeleteStaff handles DELETE /staff/{id}.
func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	staffID := chi.URLParam(r, "id")

	if err := h.repo.DeleteStaff(ctx, facilityID, staffID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "staff member not found")
			return
		}
		slog.Error("failed to delete staff member", "id", staffID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete staff member")
		return
	}

	slog.Info("staff member deleted", "staff_id", staffID, "facility_id", facilityID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "staff member deleted"})
}
