package cache

import (
	"context"
	"sync"
	"time"

	"reviewhub/internal/microservices/http-api/models"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// localItem with nil stats is a tombstone left by Invalidate; it only
// carries the target's generation.
type localItem struct {
	stats     *models.ReviewStats
	gen       uint64
	expiresAt time.Time
}

// LocalStatsCache is the in-process fallback used when no Redis is configured.
// Entries are per instance, so TTL bounds how stale a sibling instance can be.
//
// Generations come from one monotonic clock. A target with no entry reports
// floor, the highest generation ever evicted, so losing a tombstone to LRU
// pressure can only reject a fill, never admit a stale one.
type LocalStatsCache struct {
	mu      sync.Mutex
	entries *simplelru.LRU[string, localItem]
	clock   uint64
	floor   uint64
	ttl     time.Duration
	now     func() time.Time
}

func NewLocalStatsCache(size int, ttl time.Duration) (*LocalStatsCache, error) {
	c := &LocalStatsCache{ttl: ttl, now: time.Now}
	entries, err := simplelru.NewLRU[string, localItem](size, c.evicted)
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// evicted runs inside entries' mutating calls, which all hold c.mu
func (c *LocalStatsCache) evicted(_ string, item localItem) {
	if item.gen > c.floor {
		c.floor = item.gen
	}
}

func (c *LocalStatsCache) Get(_ context.Context, target models.TargetRef) (*models.ReviewStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.entries.Get(statsKey(target))
	if !ok || item.stats == nil || c.now().After(item.expiresAt) {
		return nil, false
	}
	stats := copyStats(*item.stats)
	return &stats, true
}

func (c *LocalStatsCache) Generation(_ context.Context, target models.TargetRef) (uint64, bool) {
	if c.ttl <= 0 {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation(statsKey(target)), true
}

func (c *LocalStatsCache) generation(key string) uint64 {
	if item, ok := c.entries.Peek(key); ok {
		return item.gen
	}
	return c.floor
}

func (c *LocalStatsCache) Set(_ context.Context, stats *models.ReviewStats, gen uint64) {
	if stats == nil || c.ttl <= 0 {
		return
	}
	key := statsKey(stats.Target)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation(key) != gen {
		return
	}
	stored := copyStats(*stats)
	c.entries.Add(key, localItem{
		stats:     &stored,
		gen:       gen,
		expiresAt: c.now().Add(c.ttl),
	})
}

func (c *LocalStatsCache) Invalidate(_ context.Context, target models.TargetRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock++
	c.entries.Add(statsKey(target), localItem{gen: c.clock})
}

// callers may mutate what they get back, so never hand out the stored map
func copyStats(s models.ReviewStats) models.ReviewStats {
	dist := make(map[int]int64, len(s.RatingDistribution))
	for k, v := range s.RatingDistribution {
		dist[k] = v
	}
	s.RatingDistribution = dist
	if s.RecommendationRate != nil {
		rate := *s.RecommendationRate
		s.RecommendationRate = &rate
	}
	if s.VerifiedReviewsCount != nil {
		verified := *s.VerifiedReviewsCount
		s.VerifiedReviewsCount = &verified
	}
	return s
}
