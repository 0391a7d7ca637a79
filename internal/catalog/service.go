package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/tour-inventory/internal/obs"
)

// RefreshLockKey serialises snapshot rebuilds across processes.
const RefreshLockKey = "lock:catalog:refresh"

// Loader reads the full catalog from its system of record.
type Loader interface {
	LoadCatalog(ctx context.Context) (Data, error)
}

// Locker runs fn while holding a distributed lock on key.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Service owns the catalog snapshot served to the pricing engine. It keeps the
// last good snapshot in memory and shares rebuilt snapshots through Redis.
type Service struct {
	loader       Loader
	cache        *Cache
	locker       Locker
	lockTTL      time.Duration
	log          zerolog.Logger
	now          func() time.Time
	defaultLimit int
	maxLimit     int

	mu      sync.RWMutex
	current *Snapshot
	cold    singleflight.Group
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Loader       Loader
	Cache        *Cache
	Locker       Locker
	LockTTL      time.Duration
	Logger       zerolog.Logger
	Now          func() time.Time
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Loader == nil {
		return nil, errors.New("catalog: loader is required")
	}
	svc := &Service{
		loader:       cfg.Loader,
		cache:        cfg.Cache,
		locker:       cfg.Locker,
		lockTTL:      cfg.LockTTL,
		log:          cfg.Logger,
		now:          cfg.Now,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.lockTTL <= 0 {
		svc.lockTTL = 30 * time.Second
	}
	if svc.defaultLimit <= 0 {
		svc.defaultLimit = 50
	}
	if svc.maxLimit <= 0 {
		svc.maxLimit = 200
	}
	return svc, nil
}

// Current returns the snapshot in use, loading one on first access from the
// shared cache or, failing that, from the loader.
func (s *Service) Current(ctx context.Context) (*Snapshot, error) {
	if snap := s.loaded(); snap != nil {
		return snap, nil
	}
	if snap, ok := s.fromCache(ctx); ok {
		s.adopt(snap)
		return snap, nil
	}
	v, err, _ := s.cold.Do("current", func() (any, error) {
		return s.refresh(ctx, true)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}
	return v.(*Snapshot), nil
}

// Refresh rebuilds the snapshot from the loader under the refresh lock and
// publishes it to the cache. On failure the previous snapshot stays in use.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	return s.refresh(ctx, false)
}

// refresh rebuilds the snapshot. With reuse set, a snapshot adopted or
// published while waiting for the lock is taken instead of loading again.
func (s *Service) refresh(ctx context.Context, reuse bool) (*Snapshot, error) {
	var fresh *Snapshot
	reused := false
	build := func(ctx context.Context) error {
		if reuse {
			if snap := s.loaded(); snap != nil {
				fresh, reused = snap, true
				return nil
			}
			if snap, ok := s.fromCache(ctx); ok {
				fresh, reused = snap, true
				return nil
			}
		}
		data, err := s.loader.LoadCatalog(ctx)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		snap, err := NewSnapshot(data, s.now())
		if err != nil {
			return err
		}
		if err := s.cache.SetSnapshot(ctx, snap); err != nil {
			s.log.Warn().Err(err).Msg("catalog snapshot cache write failed")
		}
		fresh = snap
		return nil
	}

	var err error
	if s.locker != nil {
		err = s.locker.WithLock(ctx, RefreshLockKey, s.lockTTL, build)
	} else {
		err = build(ctx)
	}
	if err != nil {
		recordRefresh("error")
		s.log.Error().Err(err).Msg("catalog snapshot refresh failed")
		return nil, err
	}
	s.adopt(fresh)
	if reused {
		return fresh, nil
	}
	recordRefresh("ok")
	s.log.Info().
		Int("rates", len(fresh.data.Rates)).
		Int("offers", len(fresh.data.Offers)).
		Int("policies", len(fresh.data.Policies)).
		Int("pools", len(fresh.data.PoolCapacities)).
		Msg("catalog snapshot refreshed")
	return fresh, nil
}

// Sync adopts a newer snapshot published by another process, rebuilding from
// the loader when the cache holds nothing.
func (s *Service) Sync(ctx context.Context) error {
	snap, ok := s.fromCache(ctx)
	if !ok {
		_, err := s.Refresh(ctx)
		return err
	}
	if cur := s.loaded(); cur == nil || snap.LoadedAt().After(cur.LoadedAt()) {
		s.adopt(snap)
		recordRefresh("synced")
	}
	return nil
}

// Run calls Sync every interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sync(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn().Err(err).Msg("catalog snapshot sync failed")
			}
			s.observeAge()
		}
	}
}

// Age reports how old the current snapshot is, and false when none is loaded.
func (s *Service) Age() (time.Duration, bool) {
	snap := s.loaded()
	if snap == nil {
		return 0, false
	}
	return s.now().Sub(snap.LoadedAt()), true
}

// Ready reports whether a snapshot is available for pricing.
func (s *Service) Ready(context.Context) error {
	if s.loaded() == nil {
		return ErrSnapshotUnavailable
	}
	return nil
}

// Page is a slice of a sorted catalog collection.
type Page[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int
}

// ListRates returns rates ordered by id.
func (s *Service) ListRates(ctx context.Context, page, limit int) (Page[Rate], error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return Page[Rate]{}, err
	}
	items := snap.Rates()
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return paginate(items, page, s.clampLimit(limit)), nil
}

// ListOffers returns offers ordered by id.
func (s *Service) ListOffers(ctx context.Context, page, limit int) (Page[Offer], error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return Page[Offer]{}, err
	}
	items := snap.Offers()
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return paginate(items, page, s.clampLimit(limit)), nil
}

// ListPolicies returns policies in resolution input order.
func (s *Service) ListPolicies(ctx context.Context, page, limit int) (Page[PricingPolicy], error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return Page[PricingPolicy]{}, err
	}
	return paginate(snap.Policies(), page, s.clampLimit(limit)), nil
}

// ListPools returns pool capacity rollups ordered by pool id.
func (s *Service) ListPools(ctx context.Context, page, limit int) (Page[AllocationPoolCapacity], error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return Page[AllocationPoolCapacity]{}, err
	}
	items := snap.PoolCapacities()
	sort.SliceStable(items, func(i, j int) bool { return items[i].PoolID < items[j].PoolID })
	return paginate(items, page, s.clampLimit(limit)), nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

func paginate[T any](items []T, page, limit int) Page[T] {
	if page <= 0 {
		page = 1
	}
	total := len(items)
	start := total
	// Compare before multiplying so huge page numbers cannot overflow.
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := min(start+limit, total)
	out := make([]T, 0, end-start)
	out = append(out, items[start:end]...)
	return Page[T]{Items: out, Page: page, Limit: limit, Total: total}
}

func (s *Service) fromCache(ctx context.Context) (*Snapshot, bool) {
	snap, ok, err := s.cache.GetSnapshot(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("catalog snapshot cache read failed")
		return nil, false
	}
	return snap, ok
}

func (s *Service) loaded() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Service) adopt(snap *Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	s.observeAge()
}

func (s *Service) observeAge() {
	if age, ok := s.Age(); ok && obs.CatalogSnapshotAge != nil {
		obs.CatalogSnapshotAge.Set(age.Seconds())
	}
}

func recordRefresh(result string) {
	if obs.CatalogRefreshTotal != nil {
		obs.CatalogRefreshTotal.WithLabelValues(result).Inc()
	}
}
