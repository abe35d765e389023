package service_test

import (
	"context"

	"reviewhub/internal/cache"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/testutil"
)

func (s *EngineSuite) TestComputeStats_Empty() {
	s.createReview("alice", property("p1"), 5, false)

	stats, err := s.stats.ComputeStats(s.ctx, property("p1"))
	s.Require().NoError(err)
	s.Zero(stats.TotalReviews)
	s.Zero(stats.AverageRating)
	s.Equal(models.EmptyDistribution(), stats.RatingDistribution)
	s.Nil(stats.RecommendationRate)
	s.Nil(stats.VerifiedReviewsCount)
}

func (s *EngineSuite) TestComputeStats_Aggregates() {
	a, err := s.reviews.CreateReview(s.ctx, "u1", property("p1"), service.ReviewContent{Rating: 4, Recommended: boolPtr(true)})
	s.Require().NoError(err)
	b, err := s.reviews.CreateReview(s.ctx, "u2", property("p1"), service.ReviewContent{Rating: 4, Recommended: boolPtr(false)})
	s.Require().NoError(err)
	c, err := s.reviews.CreateReview(s.ctx, "u3", property("p1"), service.ReviewContent{Rating: 5})
	s.Require().NoError(err)
	for _, r := range []*models.Review{a, b, c} {
		_, err := s.moderation.Approve(s.ctx, r.ID, "mod")
		s.Require().NoError(err)
	}
	_, err = s.moderation.SetVerified(s.ctx, c.ID, true)
	s.Require().NoError(err)

	// excluded: pending, rejected, deleted and other targets
	s.createReview("u4", property("p1"), 1, false)
	rejected := s.createReview("u5", property("p1"), 1, false)
	_, err = s.moderation.Reject(s.ctx, rejected.ID, "mod")
	s.Require().NoError(err)
	deleted := s.createReview("u6", property("p1"), 1, true)
	s.Require().NoError(s.reviews.DeleteReview(s.ctx, deleted.ID, "u6"))
	s.createReview("u7", property("p2"), 1, true)

	stats, err := s.stats.ComputeStats(s.ctx, property("p1"))
	s.Require().NoError(err)
	s.Equal(int64(3), stats.TotalReviews)
	s.Equal(4.33, stats.AverageRating)
	s.Equal(map[int]int64{1: 0, 2: 0, 3: 0, 4: 2, 5: 1}, stats.RatingDistribution)
	s.Require().NotNil(stats.RecommendationRate)
	s.Equal(33, *stats.RecommendationRate)
	s.Require().NotNil(stats.VerifiedReviewsCount)
	s.Equal(int64(1), *stats.VerifiedReviewsCount)
}

func (s *EngineSuite) TestComputeStats_CacheInvalidatedByModeration() {
	s.createReview("u1", property("p1"), 2, true)

	stats, err := s.stats.ComputeStats(s.ctx, property("p1"))
	s.Require().NoError(err)
	s.Equal(2.0, stats.AverageRating)

	_, cached := s.statsCache.Get(s.ctx, property("p1"))
	s.True(cached)

	s.createReview("u2", property("p1"), 5, true)

	stats, err = s.stats.ComputeStats(s.ctx, property("p1"))
	s.Require().NoError(err)
	s.Equal(int64(2), stats.TotalReviews)
	s.Equal(3.5, stats.AverageRating)
}

func (s *EngineSuite) TestComputeStats_CacheInvalidatedByEditAndDelete() {
	r := s.createReview("u1", property("p1"), 2, true)
	_, err := s.stats.ComputeStats(s.ctx, property("p1"))
	s.Require().NoError(err)

	// the edit sends the review back to moderation, so it leaves the stats
	_, err = s.reviews.UpdateReview(s.ctx, r.ID, "u1", service.ReviewPatch{Rating: intPtr(3)})
	s.Require().NoError(err)
	stats, err := s.stats.ComputeStats(s.ctx, property("p1"))
	s.Require().NoError(err)
	s.Zero(stats.TotalReviews)

	other := s.createReview("u2", property("p1"), 4, true)
	_, err = s.stats.ComputeStats(s.ctx, property("p1"))
	s.Require().NoError(err)
	s.Require().NoError(s.reviews.DeleteReview(s.ctx, other.ID, "u2"))

	stats, err = s.stats.ComputeStats(s.ctx, property("p1"))
	s.Require().NoError(err)
	s.Zero(stats.TotalReviews)
}

func (s *EngineSuite) TestComputeStats_InvalidTarget() {
	_, err := s.stats.ComputeStats(s.ctx, models.TargetRef{Type: "moon", ID: "x"})
	s.ErrorIs(err, service.ErrInvalidInput)
	_, err = s.stats.ComputeStats(s.ctx, models.TargetRef{Type: models.TargetCountry})
	s.ErrorIs(err, service.ErrInvalidInput)
}

// interleavingCache runs beforeSet once, after the aggregate was read and
// before its result is stored
type interleavingCache struct {
	*cache.LocalStatsCache
	beforeSet func()
}

func (c *interleavingCache) Set(ctx context.Context, stats *models.ReviewStats, gen uint64) {
	if c.beforeSet != nil {
		hook := c.beforeSet
		c.beforeSet = nil
		hook()
	}
	c.LocalStatsCache.Set(ctx, stats, gen)
}

func (s *EngineSuite) TestComputeStats_WriteDuringFillIsNotCached() {
	pending := s.createReview("u1", property("p1"), 4, false)

	racing := &interleavingCache{
		LocalStatsCache: s.statsCache,
		beforeSet: func() {
			_, err := s.moderation.Approve(s.ctx, pending.ID, "mod")
			s.Require().NoError(err)
		},
	}
	stats := service.NewStatsService(s.store, service.Options{
		StatsCache: racing,
		Logger:     testutil.DiscardLogger(),
	})

	first, err := stats.ComputeStats(s.ctx, property("p1"))
	s.Require().NoError(err)
	s.Zero(first.TotalReviews)

	second, err := stats.ComputeStats(s.ctx, property("p1"))
	s.Require().NoError(err)
	s.Equal(int64(1), second.TotalReviews)
	s.Equal(4.0, second.AverageRating)
}
