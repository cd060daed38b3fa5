package govcheck

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/opencorrections/warden/internal/domain"
)

// ErrReferenceNotFound indicates the registry holds no record for the
// requested government ID. Distinct from infrastructure failures.
var ErrReferenceNotFound = errors.New("reference record not found")

// ReferenceFetcher looks up a government reference record by ID number.
// Implementations are injected into the Service so callers can swap the
// mock registry for a real external registry client without touching the
// comparison engine.
type ReferenceFetcher interface {
	FetchReference(ctx context.Context, governmentID string) (*domain.IdentityRecord, error)
}

// MockRegistry is an in-memory ReferenceFetcher keyed by government ID.
// It simulates the latency of a real registry call so callers exercise
// their timeout handling.
type MockRegistry struct {
	mu      sync.RWMutex
	records map[string]domain.IdentityRecord
	latency time.Duration
}

// NewMockRegistry creates an empty mock registry with the given simulated
// lookup latency (0 disables the delay, useful in tests).
func NewMockRegistry(latency time.Duration) *MockRegistry {
	return &MockRegistry{
		records: make(map[string]domain.IdentityRecord),
		latency: latency,
	}
}

// Seed inserts or replaces a reference record.
func (m *MockRegistry) Seed(governmentID string, record domain.IdentityRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[governmentID] = record
}

// FetchReference returns the reference record for a government ID, or
// ErrReferenceNotFound. The simulated latency respects context cancellation.
func (m *MockRegistry) FetchReference(ctx context.Context, governmentID string) (*domain.IdentityRecord, error) {
	if m.latency > 0 {
		timer := time.NewTimer(m.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[governmentID]
	if !ok {
		return nil, ErrReferenceNotFound
	}
	return &record, nil
}
