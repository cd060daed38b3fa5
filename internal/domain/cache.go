package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Supports two-phase caching: local LRU (Community) + Redis (Pro).
// All methods require facilityID for strict facility isolation.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, facilityID string, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, facilityID string, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, facilityID string, key string) error

	// GetSummary retrieves a cached behavior summary for a prisoner.
	GetSummary(ctx context.Context, facilityID string, prisonerID string) (*BehaviorSummary, error)

	// SetSummary caches a computed behavior summary.
	SetSummary(ctx context.Context, facilityID string, prisonerID string, summary *BehaviorSummary, ttl time.Duration) error

	// GetReference retrieves a cached government reference record.
	GetReference(ctx context.Context, facilityID string, governmentID string) (*IdentityRecord, error)

	// SetReference caches a government reference record. TTL doubles as the
	// retention limit for sensitive registry data.
	SetReference(ctx context.Context, facilityID string, governmentID string, record *IdentityRecord, ttl time.Duration) error

	// IncrementCounter atomically increments a counter and returns new value.
	// Used for visit-rate throttling (e.g., check-ins in a time window).
	IncrementCounter(ctx context.Context, facilityID string, key string, window time.Duration) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string `koanf:"type"`

	// Local LRU cache settings (Community tier)
	LocalMaxSize int           `koanf:"localMaxSize"`
	LocalTTL     time.Duration `koanf:"localTtl"`

	// Redis settings (Pro tier)
	RedisAddr     string `koanf:"redisAddr"`
	RedisPassword string `koanf:"redisPassword"`
	RedisDB       int    `koanf:"redisDb"`

	// Two-phase settings
	EnableTwoPhase bool `koanf:"enableTwoPhase"` // If true, check local first, then Redis
}
