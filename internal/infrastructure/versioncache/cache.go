package versioncache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/janhq/genai-proxy/internal/infrastructure/metrics"
)

// Fetcher looks up the latest published version of an owner/name model.
type Fetcher interface {
	LatestVersion(ctx context.Context, model string) (string, error)
}

type entry struct {
	version   string
	fetchedAt time.Time
}

// Cache keeps the latest version of unpinned models for a fixed TTL.
// Entries are replaced whole, so readers never see a partial update.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger

	mu      sync.RWMutex
	entries map[string]entry
	// generations counts invalidations per model; a fetch only stores its
	// result if no Invalidate ran while it was in flight.
	generations map[string]uint64
	group       singleflight.Group
}

// New creates a cache. A zero ttl disables caching and every Resolve hits the fetcher.
func New(fetcher Fetcher, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		log:     log.With().Str("component", "version-cache").Logger(),
		entries:     make(map[string]entry),
		generations: make(map[string]uint64),
	}
}

// Resolve returns the cached version for model, refreshing it when expired.
// Concurrent refreshes of the same model share one upstream call.
func (c *Cache) Resolve(ctx context.Context, model string) (string, error) {
	if c.ttl <= 0 {
		metrics.RecordVersionLookup("bypass")
		return c.fetch(ctx, model)
	}

	c.mu.RLock()
	e, ok := c.entries[model]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		metrics.RecordVersionLookup("hit")
		return e.version, nil
	}

	metrics.RecordVersionLookup("miss")
	version, err := c.fetch(ctx, model)
	if err != nil {
		if ok {
			c.log.Warn().Err(err).Str("model", model).Msg("serving stale model version")
			return e.version, nil
		}
		return "", err
	}
	return version, nil
}

// fetch shares one upstream lookup between concurrent callers. The lookup is
// detached from any single caller's cancellation; the fetcher's own timeout
// bounds it, and each caller stops waiting when its own ctx ends.
func (c *Cache) fetch(ctx context.Context, model string) (string, error) {
	c.mu.RLock()
	gen := c.generations[model]
	c.mu.RUnlock()

	ch := c.group.DoChan(model, func() (any, error) {
		version, err := c.fetcher.LatestVersion(context.WithoutCancel(ctx), model)
		if err != nil {
			return "", err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			if c.generations[model] == gen {
				c.entries[model] = entry{version: version, fetchedAt: c.now()}
			}
			c.mu.Unlock()
		}
		c.log.Debug().Str("model", model).Str("version", version).Msg("model version refreshed")
		return version, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the cached version of model so the next Resolve refetches it.
// A lookup already in flight is not stored.
func (c *Cache) Invalidate(model string) {
	c.mu.Lock()
	delete(c.entries, model)
	c.generations[model]++
	c.mu.Unlock()
	c.group.Forget(model)
}
