package models

// ReviewStats is the aggregate over approved, live reviews of one target.
// RecommendationRate and VerifiedReviewsCount are nil when TotalReviews is 0.
type ReviewStats struct {
	Target               TargetRef     `json:"target"`
	TotalReviews         int64         `json:"total_reviews"`
	AverageRating        float64       `json:"average_rating"`
	RatingDistribution   map[int]int64 `json:"rating_distribution"`
	RecommendationRate   *int          `json:"recommendation_rate,omitempty"`
	VerifiedReviewsCount *int64        `json:"verified_reviews_count,omitempty"`
}

// EmptyDistribution returns buckets 1..5 all set to zero
func EmptyDistribution() map[int]int64 {
	return map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
}
