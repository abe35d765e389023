package service

import (
	"context"
	"math"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
)

type StatsService interface {
	ComputeStats(ctx context.Context, target models.TargetRef) (*models.ReviewStats, error)
}

type statsService struct {
	store *repository.Store
	opts  Options
}

func NewStatsService(store *repository.Store, opts Options) StatsService {
	return &statsService{store: store, opts: opts.withDefaults()}
}

// ComputeStats aggregates approved, live reviews of one target. The numbers
// come from one grouped query, so they always describe a single snapshot.
func (s *statsService) ComputeStats(ctx context.Context, target models.TargetRef) (*models.ReviewStats, error) {
	if !target.Type.Valid() {
		return nil, invalidInput("invalid target_type: %s", target.Type)
	}
	if target.ID == "" {
		return nil, invalidInput("target_id is required")
	}

	if cached, ok := s.opts.StatsCache.Get(ctx, target); ok {
		return cached, nil
	}
	// read before the aggregate so a write committing meanwhile voids the fill
	gen, fillable := s.opts.StatsCache.Generation(ctx, target)

	buckets, err := s.store.Reviews().AggregateByRating(ctx, target)
	if err != nil {
		s.opts.Logger.Error("stats_aggregate_failed", "target", target.String(), "error", err)
		return nil, err
	}

	stats := buildStats(target, buckets)
	if fillable {
		s.opts.StatsCache.Set(ctx, stats, gen)
	}
	return stats, nil
}

// buildStats folds the per-rating buckets. The average is rounded half away
// from zero to two decimals, from integer sums.
func buildStats(target models.TargetRef, buckets []repository.RatingBucket) *models.ReviewStats {
	stats := &models.ReviewStats{
		Target:             target,
		RatingDistribution: models.EmptyDistribution(),
	}

	var ratingSum, recommended, verified int64
	for _, b := range buckets {
		if b.Rating < 1 || b.Rating > 5 {
			continue
		}
		stats.RatingDistribution[b.Rating] += b.Count
		stats.TotalReviews += b.Count
		ratingSum += int64(b.Rating) * b.Count
		recommended += b.Recommended
		verified += b.Verified
	}
	if stats.TotalReviews == 0 {
		return stats
	}

	total := float64(stats.TotalReviews)
	stats.AverageRating = math.Round(float64(ratingSum*100)/total) / 100
	rate := int(math.Round(float64(recommended*100) / total))
	stats.RecommendationRate = &rate
	stats.VerifiedReviewsCount = &verified
	return stats
}
