package activity

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/opencorrections/warden/internal/cache"
	"github.com/opencorrections/warden/internal/domain"
	"github.com/opencorrections/warden/internal/repository"

	"github.com/google/uuid"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "warden-activity-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	repo, err := repository.New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	c := cache.NewLRUCache(100)
	t.Cleanup(func() { c.Close() })

	return NewService(repo, c)
}

func TestIncidentCountWindow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	facilityID := "facility-001"
	prisonerID := "prisoner-1"

	now := time.Now().UTC()
	for _, age := range []time.Duration{time.Minute, 30 * time.Minute, 2 * time.Hour} {
		incident := &domain.BehaviorIncident{
			ID:         uuid.New().String(),
			FacilityID: facilityID,
			PrisonerID: prisonerID,
			Type:       domain.BehaviorNegative,
			Severity:   domain.SeverityLow,
			OccurredAt: now.Add(-age),
			CreatedAt:  now,
		}
		if err := svc.repo.SaveIncident(ctx, facilityID, incident); err != nil {
			t.Fatalf("failed to save incident: %v", err)
		}
	}

	count, err := svc.GetIncidentCount(ctx, facilityID, prisonerID, 3600)
	if err != nil {
		t.Fatalf("GetIncidentCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 incidents within the hour, got %d", count)
	}

	count, err = svc.GetIncidentCount(ctx, facilityID, prisonerID, 3*3600)
	if err != nil {
		t.Fatalf("GetIncidentCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 incidents within three hours, got %d", count)
	}
}

func TestIncidentCountRequiresIdentifiers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetIncidentCount(ctx, "", "prisoner-1", 3600); err == nil {
		t.Error("expected error for empty facilityID")
	}
	if _, err := svc.GetIncidentCount(ctx, "facility-001", "", 3600); err == nil {
		t.Error("expected error for empty prisonerID")
	}
}

func TestActivityGetterMatchesService(t *testing.T) {
	svc := newTestService(t)
	getter := svc.GetActivityGetter()

	count, err := getter(context.Background(), "facility-001", "prisoner-1", 3600)
	if err != nil {
		t.Fatalf("getter failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 incidents, got %d", count)
	}
}

func TestRecordVisitCounts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	facilityID := "facility-001"

	for want := int64(1); want <= 3; want++ {
		got, err := svc.RecordVisit(ctx, facilityID, "visitor-1", time.Minute)
		if err != nil {
			t.Fatalf("RecordVisit failed: %v", err)
		}
		if got != want {
			t.Errorf("expected count %d, got %d", want, got)
		}
	}

	// Counters are scoped per visitor.
	got, err := svc.RecordVisit(ctx, facilityID, "visitor-2", time.Minute)
	if err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}
	if got != 1 {
		t.Errorf("expected fresh counter for second visitor, got %d", got)
	}
}
