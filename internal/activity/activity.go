// Package activity provides incident-rate calculation for prisoners.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/opencorrections/warden/internal/domain"
)

// Service counts recent behavior incidents for alert rate checks.
type Service struct {
	repo  domain.Repository
	cache domain.Cache
}

// NewService creates a new activity service.
func NewService(repo domain.Repository, cache domain.Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// GetIncidentCount returns the number of incidents recorded for a prisoner
// within a time window. This is the ActivityGetter signature expected by
// the alert engine.
func (s *Service) GetIncidentCount(ctx context.Context, facilityID, prisonerID string, windowSecs int) (int64, error) {
	if facilityID == "" || prisonerID == "" {
		return 0, fmt.Errorf("facilityID and prisonerID are required")
	}

	if s.repo == nil {
		return 0, fmt.Errorf("no data source available")
	}

	since := time.Now().Add(-time.Duration(windowSecs) * time.Second)
	return s.repo.CountIncidentsSince(ctx, facilityID, prisonerID, since)
}

// GetActivityGetter returns an ActivityGetter function for the alert engine.
func (s *Service) GetActivityGetter() func(ctx context.Context, facilityID, prisonerID string, windowSecs int) (int64, error) {
	return s.GetIncidentCount
}

// RecordVisit bumps the visit-rate counter for a visitor and returns the
// number of check-ins within the window. Callers enforce their own limits.
func (s *Service) RecordVisit(ctx context.Context, facilityID, visitorID string, window time.Duration) (int64, error) {
	if s.cache == nil {
		return 0, fmt.Errorf("no cache available")
	}
	return s.cache.IncrementCounter(ctx, facilityID, "visits:"+visitorID, window)
}
