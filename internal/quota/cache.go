package quota

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
	"github.com/phrazzld/studygen-api/internal/redact"
	"github.com/phrazzld/studygen-api/internal/store"
)

// CountCache holds recent usage counts. The redis platform package
// implements it.
type CountCache interface {
	GetCount(ctx context.Context, key string) (int, bool, error)
	SetCount(ctx context.Context, key string, n int, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CachedCounter is a store.UsageStore that caches CountSince results per user
// and drops the cached value whenever a new record is written for that user.
// Cache failures are logged and the underlying store answers instead.
//
// A count read while a write is in flight in this process is returned but not
// cached, so it cannot outlive the write's invalidation. Writes made by other
// processes during a read are not seen; that stale count lasts at most ttl.
type CachedCounter struct {
	usage  store.UsageStore
	cache  CountCache
	ttl    time.Duration
	logger *slog.Logger

	// inflight counts store writes in progress; writes counts finished ones.
	inflight atomic.Int64
	writes   atomic.Uint64
}

// NewCachedCounter wraps usage with cache. A non-positive ttl disables caching
// of reads but still invalidates on writes.
func NewCachedCounter(usage store.UsageStore, cache CountCache, ttl time.Duration, logger *slog.Logger) *CachedCounter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedCounter{
		usage:  usage,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "quota_cache")),
	}
}

// Ensure CachedCounter implements store.UsageStore interface
var _ store.UsageStore = (*CachedCounter)(nil)

func cacheKey(userID uuid.UUID) string {
	return "quota:count:" + userID.String()
}

// CountSince implements store.UsageStore.CountSince.
// The cached value is keyed by user only; the window start moves a little
// during the TTL, which the quota tolerates.
func (c *CachedCounter) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	key := cacheKey(userID)

	if c.ttl > 0 {
		n, ok, err := c.cache.GetCount(ctx, key)
		switch {
		case err != nil:
			log.Warn("quota cache read failed, falling back to store",
				slog.String("error", redact.Error(err)))
		case ok:
			return n, nil
		}
	}

	before := c.writes.Load()
	busy := c.inflight.Load() > 0
	n, err := c.usage.CountSince(ctx, userID, since)
	if err != nil {
		return 0, err
	}

	if busy || c.inflight.Load() > 0 || c.writes.Load() != before {
		log.Debug("usage written during count, not caching",
			slog.String("user_id", userID.String()))
		return n, nil
	}

	if c.ttl > 0 {
		if err := c.cache.SetCount(ctx, key, n, c.ttl); err != nil {
			log.Warn("quota cache write failed",
				slog.String("error", redact.Error(err)))
		}
	}
	return n, nil
}

// Create implements store.UsageStore.Create.
func (c *CachedCounter) Create(ctx context.Context, record *domain.UsageRecord) error {
	c.inflight.Add(1)
	defer func() {
		c.writes.Add(1)
		c.inflight.Add(-1)
	}()

	if err := c.usage.Create(ctx, record); err != nil {
		return err
	}

	if err := c.cache.Delete(ctx, cacheKey(record.UserID)); err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Warn("quota cache invalidation failed",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", record.UserID.String()))
	}
	return nil
}
