package cache

import (
	"context"
	"fmt"

	"reviewhub/internal/microservices/http-api/models"
)

// StatsCache fronts the statistics aggregator. Implementations must treat
// their own failures as misses; a cache problem never fails a request.
//
// Fills are generation checked: read Generation before aggregating and pass
// it to Set. Any Invalidate of the target in between turns that Set into a
// no-op, so a snapshot read before a write can never outlive the write.
type StatsCache interface {
	Get(ctx context.Context, target models.TargetRef) (*models.ReviewStats, bool)
	// Generation reports ok=false when the cache cannot take a fill right now
	Generation(ctx context.Context, target models.TargetRef) (gen uint64, ok bool)
	Set(ctx context.Context, stats *models.ReviewStats, gen uint64)
	Invalidate(ctx context.Context, target models.TargetRef)
}

func statsKey(target models.TargetRef) string {
	return fmt.Sprintf("stats:%s:%s", target.Type, target.ID)
}

func generationKey(target models.TargetRef) string {
	return fmt.Sprintf("stats:gen:%s:%s", target.Type, target.ID)
}

// NopStatsCache disables caching
type NopStatsCache struct{}

func (NopStatsCache) Get(context.Context, models.TargetRef) (*models.ReviewStats, bool) {
	return nil, false
}

func (NopStatsCache) Generation(context.Context, models.TargetRef) (uint64, bool) {
	return 0, false
}

func (NopStatsCache) Set(context.Context, *models.ReviewStats, uint64) {}

func (NopStatsCache) Invalidate(context.Context, models.TargetRef) {}
