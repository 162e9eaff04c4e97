package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"warden-hq/warden/pkg/checker"
	"warden-hq/warden/pkg/policy"
	"warden-hq/warden/pkg/storage"
	"warden-hq/warden/pkg/telemetry/metrics"
)

// DefaultWarmUpBatch is the page size used when eagerly mirroring the
// primary storage into the cache tier.
const DefaultWarmUpBatch = 10000

// EnfoldCache wraps a primary Storage and a faster cache Storage behind the
// Storage contract. Writes are applied to the primary first and then always
// to the cache, swallowing the lifecycle errors that merely mean the tiers
// were already in sync. Reads consult the cache first and fall back to the
// primary on an empty answer.
//
// The two writes are not transactional: a failure between them leaves the
// tiers inconsistent until the read-through fallback or a re-warm repairs
// it — the cache tier is a performance optimization, never the source of
// truth. Note the fallback also means a legitimately-empty cached result is
// indistinguishable from an uncached key and costs a primary round trip.
type EnfoldCache struct {
	backend storage.Storage
	cache   storage.Storage
	batch   int
	logger  *slog.Logger
	metrics *metrics.CacheMetrics
}

const enfoldCacheName = "enfold"

// EnfoldOption configures an EnfoldCache.
type EnfoldOption func(*EnfoldCache)

// WithWarmUpBatch sets the page size for WarmUp.
func WithWarmUpBatch(n int) EnfoldOption {
	return func(c *EnfoldCache) {
		c.batch = n
	}
}

// WithEnfoldLogger sets the logger.
func WithEnfoldLogger(logger *slog.Logger) EnfoldOption {
	return func(c *EnfoldCache) {
		c.logger = logger
	}
}

// WithEnfoldMetrics enables cache instrumentation.
func WithEnfoldMetrics(m *metrics.CacheMetrics) EnfoldOption {
	return func(c *EnfoldCache) {
		c.metrics = m
	}
}

// NewEnfoldCache wraps primary behind cache. Typical usage mirrors a
// durable backend into a MemoryStorage:
//
//	st := cache.NewEnfoldCache(sqliteStorage, storage.NewMemoryStorage(nil))
func NewEnfoldCache(primary, cacheTier storage.Storage, opts ...EnfoldOption) *EnfoldCache {
	c := &EnfoldCache{
		backend: primary,
		cache:   cacheTier,
		batch:   DefaultWarmUpBatch,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "cache.enfold")
	return c
}

// WarmUp pages through the primary storage until an empty page is returned,
// inserting every policy into the cache tier. The offset advances by the
// batch size so each page is read exactly once.
func (c *EnfoldCache) WarmUp(ctx context.Context) error {
	offset := 0
	total := 0
	for {
		page, err := c.backend.GetAll(ctx, c.batch, offset)
		if err != nil {
			return fmt.Errorf("cache: warm-up page at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		for _, p := range page {
			if err := c.cache.Add(ctx, p); err != nil && !isExists(err) {
				return fmt.Errorf("cache: warm-up add %q: %w", p.UID, err)
			}
		}
		total += len(page)
		offset += c.batch
	}

	c.logger.Info("cache tier warmed up", "policies", total)
	return nil
}

// Add implements Storage: write to primary (an "already exists" answer
// counts as already synced), then always write to the cache tier.
func (c *EnfoldCache) Add(ctx context.Context, p *policy.Policy) error {
	if err := c.backend.Add(ctx, p); err != nil {
		if !isExists(err) {
			return err
		}
		c.logger.Debug("primary already has policy, syncing cache", "uid", p.UID)
	}
	if err := c.cache.Add(ctx, p); err != nil && !isExists(err) {
		return err
	}
	return nil
}

// Get implements Storage: cache tier first, primary on a miss.
func (c *EnfoldCache) Get(ctx context.Context, uid string) (*policy.Policy, error) {
	p, err := c.cache.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if p != nil {
		c.metrics.Hit(enfoldCacheName)
		return p, nil
	}
	c.metrics.Miss(enfoldCacheName)
	return c.backend.Get(ctx, uid)
}

// GetAll implements Storage: cache tier first, primary when the cached
// answer is empty.
func (c *EnfoldCache) GetAll(ctx context.Context, limit, offset int) ([]*policy.Policy, error) {
	page, err := c.cache.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if len(page) > 0 {
		c.metrics.Hit(enfoldCacheName)
		return page, nil
	}
	c.metrics.Miss(enfoldCacheName)
	return c.backend.GetAll(ctx, limit, offset)
}

// FindForInquiry implements Storage: cache tier first, primary when the
// cached answer is empty.
func (c *EnfoldCache) FindForInquiry(ctx context.Context, inquiry *policy.Inquiry, chk checker.Checker) ([]*policy.Policy, error) {
	candidates, err := c.cache.FindForInquiry(ctx, inquiry, chk)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 {
		c.metrics.Hit(enfoldCacheName)
		return candidates, nil
	}
	c.metrics.Miss(enfoldCacheName)
	return c.backend.FindForInquiry(ctx, inquiry, chk)
}

// Update implements Storage: update the primary (swallowing lifecycle
// errors that mean the tiers were already in sync), then always bring the
// cache tier up to date.
func (c *EnfoldCache) Update(ctx context.Context, p *policy.Policy) error {
	if err := c.backend.Update(ctx, p); err != nil {
		if !isLifecycle(err) {
			return err
		}
		c.logger.Debug("primary update out of sync, syncing cache anyway", "uid", p.UID, "error", err)
	}
	if err := c.cache.Update(ctx, p); err != nil {
		if !isLifecycle(err) {
			return err
		}
		// The cache tier never saw this policy; install it.
		if err := c.cache.Add(ctx, p); err != nil && !isExists(err) {
			return err
		}
	}
	return nil
}

// Delete implements Storage: delete from the primary (an absent uid counts
// as already synced), then always delete from the cache tier.
func (c *EnfoldCache) Delete(ctx context.Context, uid string) error {
	if err := c.backend.Delete(ctx, uid); err != nil {
		if !isLifecycle(err) {
			return err
		}
		c.logger.Debug("primary already lacks policy, syncing cache", "uid", uid)
	}
	if err := c.cache.Delete(ctx, uid); err != nil && !isLifecycle(err) {
		return err
	}
	return nil
}

// isExists reports whether err is the "already exists" lifecycle answer.
func isExists(err error) bool {
	var exists *storage.PolicyExistsError
	return errors.As(err, &exists)
}

// isLifecycle reports whether err belongs to the recoverable policy
// lifecycle class (exists / not found / create / update / delete).
func isLifecycle(err error) bool {
	var (
		exists   *storage.PolicyExistsError
		notFound *storage.PolicyNotFoundError
		created  *storage.PolicyCreationError
		updated  *storage.PolicyUpdateError
		deleted  *storage.PolicyDeletionError
	)
	return errors.As(err, &exists) ||
		errors.As(err, &notFound) ||
		errors.As(err, &created) ||
		errors.As(err, &updated) ||
		errors.As(err, &deleted)
}
