package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/callsight-io/callsight/internal/infrastructure/metrics"
	"github.com/callsight-io/callsight/pkg/config"
)

// EntityType keys the per-entity freshness TTLs. TTLs are explicit
// configuration, not ad hoc per-caller choices.
type EntityType string

const (
	EntityTranscript  EntityType = "transcript"
	EntityCallContext EntityType = "call_context"
	EntityCompliance  EntityType = "compliance"
	EntityEscalation  EntityType = "escalation"
	EntityRollup      EntityType = "rollup"
)

// Freshness describes what the caller is actually getting.
type Freshness string

const (
	// Fresh: value is within its TTL.
	Fresh Freshness = "fresh"
	// Stale: recompute failed; this is the previous value past its
	// TTL, with its age attached. Retryable.
	Stale Freshness = "stale"
	// Unavailable: recompute failed and no previous value exists.
	Unavailable Freshness = "unavailable"
)

// Stale values are kept this long past their TTL before eviction.
const staleRetention = 30 * time.Minute

// RecomputeFunc rebuilds an entity's value from source state. It is
// invoked synchronously on miss or expiry, bounded by the recompute
// timeout.
type RecomputeFunc func(ctx context.Context) (interface{}, error)

// ReadCache is the read-through cache serving every external read
// surface. A value is served fresh within its TTL, recomputed past it,
// and served explicitly stale when the recompute fails; it is never
// silently served past TTL as if fresh.
type ReadCache struct {
	store            Store
	ttls             map[EntityType]time.Duration
	recomputeTimeout time.Duration
	logger           *zap.Logger
}

// NewReadCache creates a new read-through cache
func NewReadCache(store Store, cfg *config.Config, logger *zap.Logger) *ReadCache {
	metrics.Init()
	return &ReadCache{
		store: store,
		ttls: map[EntityType]time.Duration{
			EntityTranscript:  cfg.Cache.TranscriptTTL,
			EntityCallContext: cfg.Cache.CallContextTTL,
			EntityCompliance:  cfg.Cache.ComplianceTTL,
			EntityEscalation:  cfg.Cache.EscalationTTL,
			EntityRollup:      cfg.Cache.RollupTTL,
		},
		recomputeTimeout: cfg.Pipeline.RecomputeTimeout,
		logger:           logger,
	}
}

// Get serves the entity value into out, recomputing when needed.
// Returns the freshness of what was written to out plus its age; on
// Unavailable, out is untouched and the recompute error is returned.
func (c *ReadCache) Get(ctx context.Context, entity EntityType, key string, out interface{}, recompute RecomputeFunc) (Freshness, time.Duration, error) {
	ttl := c.ttls[entity]
	cacheKey := string(entity) + ":" + key

	item, err := c.store.Get(ctx, cacheKey)
	if err != nil {
		// A broken store degrades to recompute-every-time; the read
		// path must not fail just because the cache is down.
		if c.logger != nil {
			c.logger.Warn("cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
		item = nil
	}

	now := time.Now()
	if item != nil && now.Sub(item.StoredAt) <= ttl {
		if err := json.Unmarshal(item.Value, out); err == nil {
			metrics.CacheHits.WithLabelValues(string(entity)).Inc()
			return Fresh, now.Sub(item.StoredAt), nil
		}
		// Corrupt entry: fall through to recompute.
		item = nil
	}

	metrics.CacheMisses.WithLabelValues(string(entity)).Inc()

	rctx, cancel := context.WithTimeout(ctx, c.recomputeTimeout)
	defer cancel()

	value, err := recompute(rctx)
	if err == nil {
		data, merr := json.Marshal(value)
		if merr == nil {
			newItem := &Item{Value: data, StoredAt: now}
			if serr := c.store.Set(ctx, cacheKey, newItem, ttl+staleRetention); serr != nil && c.logger != nil {
				c.logger.Warn("cache write failed", zap.String("key", cacheKey), zap.Error(serr))
			}
			if uerr := json.Unmarshal(data, out); uerr != nil {
				return Unavailable, 0, uerr
			}
			return Fresh, 0, nil
		}
		return Unavailable, 0, merr
	}

	// Recompute failed or timed out: serve the previous value marked
	// stale rather than failing the caller.
	if item != nil {
		if uerr := json.Unmarshal(item.Value, out); uerr == nil {
			metrics.CacheStaleServe.WithLabelValues(string(entity)).Inc()
			if c.logger != nil {
				c.logger.Warn("serving stale value after failed recompute",
					zap.String("key", cacheKey),
					zap.Duration("age", now.Sub(item.StoredAt)),
					zap.Error(err),
				)
			}
			return Stale, now.Sub(item.StoredAt), nil
		}
	}

	return Unavailable, 0, err
}

// Invalidate drops the cached value for one entity key.
func (c *ReadCache) Invalidate(ctx context.Context, entity EntityType, key string) {
	if err := c.store.Delete(ctx, string(entity)+":"+key); err != nil && c.logger != nil {
		c.logger.Warn("cache invalidate failed", zap.String("key", string(entity)+":"+key), zap.Error(err))
	}
}
