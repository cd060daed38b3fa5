package govcheck

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/opencorrections/warden/internal/domain"
)

// Service runs identity verification against a reference registry.
// Lookup outcomes are reported through ValidationStatus; callers never
// receive an error from Validate.
type Service struct {
	fetcher      ReferenceFetcher
	cache        domain.Cache
	referenceTTL time.Duration
}

// NewService creates a verification service. cache may be nil, in which
// case every validation hits the fetcher.
func NewService(fetcher ReferenceFetcher, cache domain.Cache, referenceTTL time.Duration) *Service {
	if referenceTTL <= 0 {
		referenceTTL = 5 * time.Minute
	}
	return &Service{
		fetcher:      fetcher,
		cache:        cache,
		referenceTTL: referenceTTL,
	}
}

// Validate fetches the reference record for governmentID and compares the
// submitted identity against it. The returned result's status distinguishes
// verified, discrepancies_found, not_found, and error; the discrepancy list
// is empty in the last two cases.
func (s *Service) Validate(ctx context.Context, facilityID, prisonerID, governmentID string, submitted domain.IdentityRecord) *domain.ValidationResult {
	result := &domain.ValidationResult{
		ID:            uuid.New().String(),
		FacilityID:    facilityID,
		PrisonerID:    prisonerID,
		GovernmentID:  governmentID,
		Discrepancies: []domain.Discrepancy{},
		CheckedAt:     time.Now().UTC(),
	}

	reference, err := s.fetchReference(ctx, facilityID, governmentID)
	if err != nil {
		if errors.Is(err, ErrReferenceNotFound) {
			result.Status = domain.ValidationNotFound
			return result
		}
		slog.Error("reference lookup failed",
			"government_id", governmentID,
			"error", err,
		)
		result.Status = domain.ValidationError
		return result
	}

	discrepancies := CompareIdentity(submitted, *reference)
	if len(discrepancies) == 0 {
		result.Status = domain.ValidationVerified
		return result
	}

	result.Status = domain.ValidationDiscrepancies
	result.Discrepancies = discrepancies
	return result
}

// fetchReference consults the cache before the registry. Registry records
// are cached with a bounded retention TTL.
func (s *Service) fetchReference(ctx context.Context, facilityID, governmentID string) (*domain.IdentityRecord, error) {
	if s.cache != nil {
		cached, err := s.cache.GetReference(ctx, facilityID, governmentID)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	record, err := s.fetcher.FetchReference(ctx, governmentID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetReference(ctx, facilityID, governmentID, record, s.referenceTTL); err != nil {
			slog.Warn("failed to cache reference record",
				"government_id", governmentID,
				"error", err,
			)
		}
	}

	return record, nil
}
