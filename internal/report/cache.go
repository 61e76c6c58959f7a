package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	pkgredis "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/redis"
)

const statsKeyPrefix = "phrase-stats:top="

// StatsCache keeps recent Collect results in Redis for a short TTL and
// collapses concurrent misses for the same top into one computation.
type StatsCache struct {
	client *pkgredis.Client
	src    Source
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func NewStatsCache(client *pkgredis.Client, src Source, ttl time.Duration) *StatsCache {
	return &StatsCache{
		client: client,
		src:    src,
		ttl:    ttl,
		logger: slog.Default().With("component", "stats-cache"),
	}
}

// Collect returns cached stats when fresh, otherwise computes and caches
// them. The bool reports a cache hit. Cache failures only cost a recompute.
func (c *StatsCache) Collect(ctx context.Context, top int) (Stats, bool, error) {
	if top <= 0 {
		top = DefaultTop
	}
	if stats, ok := c.get(ctx, top); ok {
		return stats, true, nil
	}
	key := statsKeyPrefix + strconv.Itoa(top)
	v, err, _ := c.group.Do(key, func() (any, error) {
		if stats, ok := c.get(ctx, top); ok {
			return stats, nil
		}
		stats, err := Collect(ctx, c.src, top)
		if err != nil {
			return nil, err
		}
		c.set(ctx, top, stats)
		return stats, nil
	})
	if err != nil {
		return Stats{}, false, err
	}
	return v.(Stats), false, nil
}

// Invalidate drops the cached answer for top.
func (c *StatsCache) Invalidate(ctx context.Context, top int) error {
	if err := c.client.Del(ctx, statsKeyPrefix+strconv.Itoa(top)); err != nil {
		return fmt.Errorf("invalidating stats cache: %w", err)
	}
	return nil
}

func (c *StatsCache) HitsAndMisses() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *StatsCache) get(ctx context.Context, top int) (Stats, bool) {
	key := statsKeyPrefix + strconv.Itoa(top)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return Stats{}, false
	}
	var stats Stats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return Stats{}, false
	}
	c.hits.Add(1)
	return stats, true
}

func (c *StatsCache) set(ctx context.Context, top int, stats Stats) {
	key := statsKeyPrefix + strconv.Itoa(top)
	data, err := json.Marshal(stats)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}
