package govcheck

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opencorrections/warden/internal/cache"
	"github.com/opencorrections/warden/internal/domain"
)

// failingFetcher simulates an unreachable registry.
type failingFetcher struct{}

func (f *failingFetcher) FetchReference(ctx context.Context, governmentID string) (*domain.IdentityRecord, error) {
	return nil, errors.New("registry unreachable")
}

// countingFetcher wraps a MockRegistry and counts lookups.
type countingFetcher struct {
	registry *MockRegistry
	calls    atomic.Int64
}

func (f *countingFetcher) FetchReference(ctx context.Context, governmentID string) (*domain.IdentityRecord, error) {
	f.calls.Add(1)
	return f.registry.FetchReference(ctx, governmentID)
}

func TestValidateVerified(t *testing.T) {
	registry := NewMockRegistry(0)
	registry.Seed("GOV-001", baseRecord())
	service := NewService(registry, nil, time.Minute)

	result := service.Validate(context.Background(), "facility-1", "prisoner-1", "GOV-001", baseRecord())

	if result.Status != domain.ValidationVerified {
		t.Errorf("expected verified, got %s", result.Status)
	}
	if len(result.Discrepancies) != 0 {
		t.Errorf("expected no discrepancies, got %+v", result.Discrepancies)
	}
	if result.ID == "" {
		t.Error("expected result ID to be set")
	}
	if result.FacilityID != "facility-1" || result.PrisonerID != "prisoner-1" {
		t.Errorf("unexpected identifiers: %s / %s", result.FacilityID, result.PrisonerID)
	}
}

func TestValidateDiscrepanciesFound(t *testing.T) {
	reference := baseRecord()
	registry := NewMockRegistry(0)
	registry.Seed("GOV-002", reference)
	service := NewService(registry, nil, time.Minute)

	submitted := baseRecord()
	submitted.Gender = domain.GenderOther

	result := service.Validate(context.Background(), "facility-1", "prisoner-1", "GOV-002", submitted)

	if result.Status != domain.ValidationDiscrepancies {
		t.Errorf("expected discrepancies_found, got %s", result.Status)
	}
	if len(result.Discrepancies) != 1 {
		t.Fatalf("expected 1 discrepancy, got %d", len(result.Discrepancies))
	}
	if result.Discrepancies[0].Field != "gender" {
		t.Errorf("expected gender discrepancy, got %s", result.Discrepancies[0].Field)
	}
}

func TestValidateNotFound(t *testing.T) {
	service := NewService(NewMockRegistry(0), nil, time.Minute)

	result := service.Validate(context.Background(), "facility-1", "prisoner-1", "GOV-MISSING", baseRecord())

	if result.Status != domain.ValidationNotFound {
		t.Errorf("expected not_found, got %s", result.Status)
	}
	if len(result.Discrepancies) != 0 {
		t.Errorf("expected empty discrepancy list for not_found, got %d", len(result.Discrepancies))
	}
}

func TestValidateRegistryFailureNeverThrows(t *testing.T) {
	service := NewService(&failingFetcher{}, nil, time.Minute)

	result := service.Validate(context.Background(), "facility-1", "prisoner-1", "GOV-003", baseRecord())

	if result.Status != domain.ValidationError {
		t.Errorf("expected error status, got %s", result.Status)
	}
	if len(result.Discrepancies) != 0 {
		t.Errorf("expected empty discrepancy list on error, got %d", len(result.Discrepancies))
	}
}

func TestValidateUsesReferenceCache(t *testing.T) {
	registry := NewMockRegistry(0)
	registry.Seed("GOV-004", baseRecord())
	fetcher := &countingFetcher{registry: registry}
	service := NewService(fetcher, cache.NewLRUCache(10), time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		result := service.Validate(ctx, "facility-1", "prisoner-1", "GOV-004", baseRecord())
		if result.Status != domain.ValidationVerified {
			t.Fatalf("validation %d: expected verified, got %s", i, result.Status)
		}
	}

	if calls := fetcher.calls.Load(); calls != 1 {
		t.Errorf("expected 1 registry lookup with cache, got %d", calls)
	}
}

func TestValidateCacheIsFacilityScoped(t *testing.T) {
	registry := NewMockRegistry(0)
	registry.Seed("GOV-005", baseRecord())
	fetcher := &countingFetcher{registry: registry}
	service := NewService(fetcher, cache.NewLRUCache(10), time.Minute)

	ctx := context.Background()
	service.Validate(ctx, "facility-a", "prisoner-1", "GOV-005", baseRecord())
	service.Validate(ctx, "facility-b", "prisoner-1", "GOV-005", baseRecord())

	// Different facilities must not share cached registry records.
	if calls := fetcher.calls.Load(); calls != 2 {
		t.Errorf("expected 2 registry lookups across facilities, got %d", calls)
	}
}

func TestMockRegistryLatencyRespectsContext(t *testing.T) {
	registry := NewMockRegistry(5 * time.Second)
	registry.Seed("GOV-006", baseRecord())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := registry.FetchReference(ctx, "GOV-006")
	if err == nil {
		t.Fatal("expected context deadline error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("lookup did not respect context cancellation, took %v", elapsed)
	}
}
