package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opencorrections/warden/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache using Redis.
// Used as the Pro tier cache and as L2 in two-phase caching.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache.
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, facilityID string, key string) ([]byte, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("facilityID is required")
	}

	fullKey := c.makeKey(facilityID, key)
	val, err := c.client.Get(ctx, fullKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores a value in Redis with TTL.
func (c *RedisCache) Set(ctx context.Context, facilityID string, key string, value []byte, ttl time.Duration) error {
	if facilityID == "" {
		return fmt.Errorf("facilityID is required")
	}

	fullKey := c.makeKey(facilityID, key)
	return c.client.Set(ctx, fullKey, value, ttl).Err()
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, facilityID string, key string) error {
	if facilityID == "" {
		return fmt.Errorf("facilityID is required")
	}

	fullKey := c.makeKey(facilityID, key)
	return c.client.Del(ctx, fullKey).Err()
}

// GetSummary retrieves a cached behavior summary.
func (c *RedisCache) GetSummary(ctx context.Context, facilityID string, prisonerID string) (*domain.BehaviorSummary, error) {
	data, err := c.Get(ctx, facilityID, "summary:"+prisonerID)
	if err != nil || data == nil {
		return nil, err
	}

	var summary domain.BehaviorSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// SetSummary caches a computed behavior summary.
func (c *RedisCache) SetSummary(ctx context.Context, facilityID string, prisonerID string, summary *domain.BehaviorSummary, ttl time.Duration) error {
	bytes, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.Set(ctx, facilityID, "summary:"+prisonerID, bytes, ttl)
}

// GetReference retrieves a cached government reference record.
func (c *RedisCache) GetReference(ctx context.Context, facilityID string, governmentID string) (*domain.IdentityRecord, error) {
	data, err := c.Get(ctx, facilityID, "ref:"+governmentID)
	if err != nil || data == nil {
		return nil, err
	}

	var record domain.IdentityRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// SetReference caches a government reference record.
func (c *RedisCache) SetReference(ctx context.Context, facilityID string, governmentID string, record *domain.IdentityRecord, ttl time.Duration) error {
	bytes, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.Set(ctx, facilityID, "ref:"+governmentID, bytes, ttl)
}

// IncrementCounter atomically increments a counter using Redis INCR with EXPIRE.
func (c *RedisCache) IncrementCounter(ctx context.Context, facilityID string, key string, window time.Duration) (int64, error) {
	if facilityID == "" {
		return 0, fmt.Errorf("facilityID is required")
	}

	fullKey := c.makeKey(facilityID, "counter:"+key)

	// Use Lua script for atomic increment with TTL
	script := redis.NewScript(`
		local current = redis.call('INCR', KEYS[1])
		if current == 1 then
			redis.call('PEXPIRE', KEYS[1], ARGV[1])
		end
		return current
	`)

	result, err := script.Run(ctx, c.client, []string{fullKey}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, err
	}

	return result, nil
}

// Ping checks Redis connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) makeKey(facilityID, key string) string {
	return "warden:" + facilityID + ":" + key
}
