package cache

import (
	"context"
	"log/slog"
	"sync"

	"warden-hq/warden/internal/lru"
	"warden-hq/warden/pkg/checker"
	"warden-hq/warden/pkg/policy"
	"warden-hq/warden/pkg/storage"
	"warden-hq/warden/pkg/telemetry/metrics"
)

// DefaultGuardCacheSize bounds the memoization table.
const DefaultGuardCacheSize = 1024

// GuardCache memoizes FindForInquiry results per (inquiry, checker) pair in
// a bounded LRU. A single staleness flag governs the whole table: while
// stale, every lookup bypasses memoized entries (new results are still
// computed and retained); once marked fresh, memoized entries are served
// again.
//
// The cache never observes storage mutations itself. It starts stale, and
// the staleness transitions are explicit calls the embedding wiring must
// trigger — most conveniently by subscribing the cache to a
// storage.Observable, which makes every mutation call PolicySetChanged,
// and calling MarkFresh once the policy set is settled.
type GuardCache struct {
	backend storage.Storage
	logger  *slog.Logger
	metrics *metrics.CacheMetrics

	mu    sync.Mutex
	table *lru.Cache[string, []*policy.Policy]
	stale bool
}

const guardCacheName = "guard"

// GuardOption configures a GuardCache.
type GuardOption func(*GuardCache)

// WithCapacity sets the LRU capacity.
func WithCapacity(n int) GuardOption {
	return func(c *GuardCache) {
		if n > 0 {
			c.table = lru.New[string, []*policy.Policy](n)
		}
	}
}

// WithGuardLogger sets the logger.
func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(c *GuardCache) {
		c.logger = logger
	}
}

// WithGuardMetrics enables cache instrumentation.
func WithGuardMetrics(m *metrics.CacheMetrics) GuardOption {
	return func(c *GuardCache) {
		c.metrics = m
	}
}

// NewGuardCache wraps backend. The cache starts stale: nothing is served
// from the table until the owner calls MarkFresh.
func NewGuardCache(backend storage.Storage, opts ...GuardOption) *GuardCache {
	c := &GuardCache{
		backend: backend,
		logger:  slog.Default(),
		table:   lru.New[string, []*policy.Policy](DefaultGuardCacheSize),
		stale:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "cache.guard")
	return c
}

// FindForInquiry implements Storage with memoization.
func (c *GuardCache) FindForInquiry(ctx context.Context, inquiry *policy.Inquiry, chk checker.Checker) ([]*policy.Policy, error) {
	key := cacheKey(inquiry, chk)

	c.mu.Lock()
	if !c.stale {
		if cached, ok := c.table.Get(key); ok {
			c.mu.Unlock()
			c.metrics.Hit(guardCacheName)
			return cached, nil
		}
	}
	c.mu.Unlock()
	c.metrics.Miss(guardCacheName)

	candidates, err := c.backend.FindForInquiry(ctx, inquiry, chk)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	before := c.table.Evictions()
	c.table.Put(key, candidates)
	evicted := c.table.Evictions() - before
	entries := c.table.Len()
	c.mu.Unlock()

	for ; evicted > 0; evicted-- {
		c.metrics.Eviction(guardCacheName)
	}
	c.metrics.SetEntries(guardCacheName, entries)
	return candidates, nil
}

// MarkStale makes every subsequent lookup bypass the memoized table.
func (c *GuardCache) MarkStale() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = true
}

// MarkFresh re-enables serving memoized entries.
func (c *GuardCache) MarkFresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = false
}

// Stale reports the current staleness flag.
func (c *GuardCache) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale
}

// PolicySetChanged implements storage.Listener: any mutation of the policy
// set makes the memoized table stale.
func (c *GuardCache) PolicySetChanged() {
	c.MarkStale()
	c.logger.Debug("policy set changed, decision cache marked stale")
}

// Add implements Storage by delegation.
func (c *GuardCache) Add(ctx context.Context, p *policy.Policy) error {
	return c.backend.Add(ctx, p)
}

// Get implements Storage by delegation.
func (c *GuardCache) Get(ctx context.Context, uid string) (*policy.Policy, error) {
	return c.backend.Get(ctx, uid)
}

// GetAll implements Storage by delegation.
func (c *GuardCache) GetAll(ctx context.Context, limit, offset int) ([]*policy.Policy, error) {
	return c.backend.GetAll(ctx, limit, offset)
}

// Update implements Storage by delegation.
func (c *GuardCache) Update(ctx context.Context, p *policy.Policy) error {
	return c.backend.Update(ctx, p)
}

// Delete implements Storage by delegation.
func (c *GuardCache) Delete(ctx context.Context, uid string) error {
	return c.backend.Delete(ctx, uid)
}

// cacheKey derives the memoization key from the inquiry's full content and
// the checker's kind.
func cacheKey(inquiry *policy.Inquiry, chk checker.Checker) string {
	kind := "none"
	if chk != nil {
		kind = string(chk.Kind())
	}
	return inquiry.Hash() + "|" + kind
}
