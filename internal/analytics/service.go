package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/tour-inventory/internal/catalog"
)

var (
	// ErrPoolNotFound is returned when a pool has no capacity rollup.
	ErrPoolNotFound = errors.New("analytics: pool not found")
	// ErrEmptyPool is returned when a pool has no allocation with a known contract.
	ErrEmptyPool = errors.New("analytics: pool has no allocations")
)

// SnapshotSource provides the catalog snapshot reports are computed from.
type SnapshotSource interface {
	Current(ctx context.Context) (*catalog.Snapshot, error)
}

// Service computes pool reports from the current catalog snapshot and caches
// them per snapshot version.
type Service struct {
	Snapshots SnapshotSource
	R         *redis.Client
	TTL       time.Duration
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

func versionOf(snap *catalog.Snapshot) int64 {
	return snap.LoadedAt().UnixNano()
}

// PoolProfit returns the profit summary of poolID.
func (s *Service) PoolProfit(ctx context.Context, poolID string) (PoolProfitSummary, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return PoolProfitSummary{}, err
	}
	key := cacheKey("an", "pool", "profit", versionOf(snap), poolID)
	var cached PoolProfitSummary
	if s.load(ctx, key, &cached) {
		return cached, nil
	}
	summary, ok := PoolProfit(poolID, snap.Allocations(), snap.Contracts(), snap.Rates(), snap.PoolCapacities())
	if !ok {
		return PoolProfitSummary{}, fmt.Errorf("%w: %s", ErrPoolNotFound, poolID)
	}
	s.store(ctx, key, summary)
	return summary, nil
}

// CheapestSupplier returns the lowest-cost allocation of poolID.
func (s *Service) CheapestSupplier(ctx context.Context, poolID string) (SupplierChoice, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return SupplierChoice{}, err
	}
	choice, ok := CheapestSupplierForPool(poolID, snap.Allocations(), snap.Contracts())
	if !ok {
		return SupplierChoice{}, fmt.Errorf("%w: %s", ErrEmptyPool, poolID)
	}
	return choice, nil
}

// Overview returns a profit summary for every pool.
func (s *Service) Overview(ctx context.Context) ([]PoolProfitSummary, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	key := cacheKey("an", "pool", "overview", versionOf(snap))
	var cached []PoolProfitSummary
	if s.load(ctx, key, &cached) {
		return cached, nil
	}
	rows := AllPoolProfits(snap)
	s.store(ctx, key, rows)
	return rows, nil
}

// Warm precomputes the overview for the current snapshot.
func (s *Service) Warm(ctx context.Context) (int, error) {
	rows, err := s.Overview(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *Service) snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	if s == nil || s.Snapshots == nil {
		return nil, errors.New("analytics service not configured")
	}
	return s.Snapshots.Current(ctx)
}

func (s *Service) load(ctx context.Context, key string, dst any) bool {
	if s.R == nil || s.TTL <= 0 {
		return false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
