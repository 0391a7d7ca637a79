package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// SnapshotCacheKey is where the encoded catalog snapshot is shared between
// API replicas and the worker.
const SnapshotCacheKey = "catalog:snapshot:v1"

// Cache wraps Redis helpers for JSON payloads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client yields a cache that always misses.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

type cachedSnapshot struct {
	LoadedAt time.Time `json:"loadedAt"`
	Data     Data      `json:"data"`
}

// GetSnapshot rebuilds the shared snapshot from Redis. A missing key is not an error.
func (c *Cache) GetSnapshot(ctx context.Context) (*Snapshot, bool, error) {
	var payload cachedSnapshot
	ok, err := c.GetJSON(ctx, SnapshotCacheKey, &payload)
	if err != nil || !ok {
		return nil, false, err
	}
	snap, err := NewSnapshot(payload.Data, payload.LoadedAt)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

// SetSnapshot publishes snap for other processes.
func (c *Cache) SetSnapshot(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return nil
	}
	return c.SetJSON(ctx, SnapshotCacheKey, cachedSnapshot{LoadedAt: snap.LoadedAt(), Data: snap.Data()})
}
