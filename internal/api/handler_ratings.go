package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/opencorrections/warden/internal/domain"
	"github.com/opencorrections/warden/internal/rating"
	"github.com/opencorrections/warden/internal/worker"
)

// RatingRequest is the request body for POST /prisoners/{id}/ratings.
type RatingRequest struct {
	Cooperation int       `json:"cooperation"`
	Discipline  int       `json:"discipline"`
	Respect     int       `json:"respect"`
	WorkEthic   int       `json:"workEthic"`
	RatedBy     string    `json:"ratedBy,omitempty"`
	RatingDate  time.Time `json:"ratingDate,omitempty"`
}

// RecordRating handles POST /prisoners/{id}/ratings.
func (h *Handler) RecordRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	prisonerID := chi.URLParam(r, "id")

	var req RatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	for _, score := range []int{req.Cooperation, req.Discipline, req.Respect, req.WorkEthic} {
		if !domain.ValidCategoryScore(score) {
			writeError(w, http.StatusBadRequest, "category scores must be integers between 1 and 5")
			return
		}
	}

	now := time.Now().UTC()
	ratingDate := req.RatingDate
	if ratingDate.IsZero() {
		ratingDate = now
	}

	record := &domain.RatingRecord{
		ID:            uuid.New().String(),
		FacilityID:    facilityID,
		PrisonerID:    prisonerID,
		Cooperation:   req.Cooperation,
		Discipline:    req.Discipline,
		Respect:       req.Respect,
		WorkEthic:     req.WorkEthic,
		OverallRating: rating.Overall(req.Cooperation, req.Discipline, req.Respect, req.WorkEthic),
		RatedBy:       req.RatedBy,
		RatingDate:    ratingDate,
		CreatedAt:     now,
	}

	if err := h.repo.SaveRating(ctx, facilityID, record); err != nil {
		slog.Error("failed to save rating", "prisoner_id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save rating")
		return
	}

	if h.metrics != nil {
		h.metrics.RatingsTotal.WithLabelValues(facilityID).Inc()
	}

	// Notify the async pipeline
	if h.bus != nil {
		payload, _ := json.Marshal(worker.RecordMessage{
			PrisonerID: prisonerID,
			FacilityID: facilityID,
			RecordID:   record.ID,
		})
		if err := h.bus.Publish(ctx, facilityID, domain.TopicRatingRecorded, payload); err != nil {
			slog.Warn("failed to publish rating event", "prisoner_id", prisonerID, "error", err)
		}
	}

	slog.Info("rating recorded",
		"rating_id", record.ID,
		"prisoner_id", prisonerID,
		"overall", record.OverallRating,
	)
	writeJSON(w, http.StatusCreated, record)
}

// ListRatings handles GET /prisoners/{id}/ratings.
func (h *Handler) ListRatings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	prisonerID := chi.URLParam(r, "id")

	ratings, err := h.repo.ListRatings(ctx, facilityID, prisonerID, h.windows.RatingWindow)
	if err != nil {
		slog.Error("failed to list ratings", "prisoner_id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list ratings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ratings": ratings,
		"count":   len(ratings),
	})
}

// GetRatingSummary handles GET /prisoners/{id}/rating-summary.
// Averages and trend are computed over the facility's rating window,
// newest ratings first.
func (h *Handler) GetRatingSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facilityID := GetFacilityID(ctx)
	prisonerID := chi.URLParam(r, "id")

	ratings, err := h.repo.ListRatings(ctx, facilityID, prisonerID, h.windows.RatingWindow)
	if err != nil {
		slog.Error("failed to list ratings", "prisoner_id", prisonerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	writeJSON(w, http.StatusOK, rating.ComputeSummary(prisonerID, ratings))
}
