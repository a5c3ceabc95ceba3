package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/servicehub/component"
	"github.com/kbukum/servicehub/config"
	"github.com/kbukum/servicehub/errors"
	"github.com/kbukum/servicehub/logger"
	"github.com/kbukum/servicehub/observability"
	"github.com/kbukum/servicehub/registry"
)

// snapshot is one immutable view of the active service set. A published
// snapshot is never mutated; refresh builds a new one and swaps the pointer.
type snapshot struct {
	services  map[string]*registry.Service
	fetchedAt time.Time
}

// Cache is the gateway's discovery cache. Lookups read the current snapshot
// without locking; when the snapshot is older than TTL the next lookup
// triggers a refresh, with concurrent stale lookups collapsed into a single
// registry fetch. A failed refresh keeps serving the previous snapshot.
type Cache struct {
	lister  Lister
	ttl     time.Duration
	log     *logger.Logger
	metrics *observability.Metrics

	snap      atomic.Pointer[snapshot]
	refreshMu sync.Mutex

	now func() time.Time
}

// NewCache creates a discovery cache over the given registry lister.
func NewCache(lister Lister, cfg config.DiscoveryConfig, metrics *observability.Metrics) *Cache {
	cfg.ApplyDefaults()
	return &Cache{
		lister:  lister,
		ttl:     cfg.TTL,
		log:     logger.WithComponent("discovery-cache"),
		metrics: metrics,
		now:     time.Now,
	}
}

// Name returns the component name.
func (c *Cache) Name() string { return "discovery-cache" }

// Start warms the cache with an initial fetch. A failed warm-up is not fatal:
// the first lookup retries.
func (c *Cache) Start(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	if err := c.refreshLocked(ctx); err != nil {
		c.log.Warn("initial discovery fetch failed, cache starts cold", logger.ErrorFields("warmup", err))
	}
	return nil
}

// Stop is a no-op; the cache holds no background resources.
func (c *Cache) Stop(ctx context.Context) error { return nil }

// Health reports degraded while the cache has never been filled.
func (c *Cache) Health(ctx context.Context) component.Health {
	if c.snap.Load() == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusDegraded,
			Message: "no discovery snapshot yet",
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Resolve returns the active record for a routing name. Unknown names yield
// ServiceNotRegistered; a cache that has never been filled and cannot reach
// the registry yields RegistryUnreachable.
func (c *Cache) Resolve(ctx context.Context, name string) (*registry.Service, error) {
	snap, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	svc, ok := snap.services[name]
	if !ok {
		return nil, errors.ServiceNotRegistered(name)
	}
	if !svc.IsActive {
		// The snapshot is filtered on ingestion, so this only trips if an
		// inactive record slipped through.
		return nil, errors.ServiceUnavailable(name)
	}
	return svc.Clone(), nil
}

// Refresh forces a registry fetch regardless of TTL and returns the size of
// the current snapshot.
func (c *Cache) Refresh(ctx context.Context) (int, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	err := c.refreshLocked(ctx)
	snap := c.snap.Load()
	if snap == nil {
		return 0, errors.RegistryUnreachable(err)
	}
	return len(snap.services), err
}

// Snapshot returns the currently cached services and when they were fetched.
func (c *Cache) Snapshot() ([]*registry.Service, time.Time) {
	snap := c.snap.Load()
	if snap == nil {
		return []*registry.Service{}, time.Time{}
	}
	out := make([]*registry.Service, 0, len(snap.services))
	for _, svc := range snap.services {
		out = append(out, svc.Clone())
	}
	return out, snap.fetchedAt
}

// current returns a usable snapshot, refreshing first if the cached one is
// missing or expired. On refresh failure the stale snapshot is returned; only
// a cold cache propagates the error.
func (c *Cache) current(ctx context.Context) (*snapshot, error) {
	if snap := c.snap.Load(); snap != nil && c.fresh(snap) {
		return snap, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another lookup may have refreshed while this one waited for the lock.
	if snap := c.snap.Load(); snap != nil && c.fresh(snap) {
		return snap, nil
	}

	err := c.refreshLocked(ctx)
	snap := c.snap.Load()
	if snap == nil {
		return nil, errors.RegistryUnreachable(err)
	}
	if err != nil {
		c.log.Warn("serving stale discovery snapshot", logger.Fields(
			"fetched_at", snap.fetchedAt,
			"services", len(snap.services),
		))
	}
	return snap, nil
}

func (c *Cache) fresh(snap *snapshot) bool {
	return c.now().Sub(snap.fetchedAt) < c.ttl
}

// refreshLocked fetches the active set and swaps in a new snapshot. Caller
// holds refreshMu. On failure the previous snapshot stays published.
func (c *Cache) refreshLocked(ctx context.Context) error {
	services, err := c.lister.ListActive(ctx)
	if err != nil {
		c.log.Error("discovery refresh failed", logger.ErrorFields("refresh", err))
		c.metrics.RecordCacheRefresh(ctx, "failure", 0)
		return err
	}

	byName := make(map[string]*registry.Service, len(services))
	for _, svc := range services {
		// The query already filters, but an inactive record must never enter
		// the snapshot regardless of what the registry returned.
		if svc == nil || !svc.IsActive {
			continue
		}
		byName[svc.Name] = svc
	}

	c.snap.Store(&snapshot{services: byName, fetchedAt: c.now()})
	c.metrics.RecordCacheRefresh(ctx, "success", len(byName))
	c.log.Debug("discovery snapshot refreshed", logger.Fields("services", len(byName)))
	return nil
}
