package dto

import "reviewhub/internal/microservices/http-api/models"

// StatsResponse flattens ReviewStats; distribution keys are "1".."5" on the wire
type StatsResponse struct {
	TargetType           models.TargetType `json:"target_type"`
	TargetID             string            `json:"target_id"`
	TotalReviews         int64             `json:"total_reviews"`
	AverageRating        float64           `json:"average_rating"`
	RatingDistribution   map[int]int64     `json:"rating_distribution"`
	RecommendationRate   *int              `json:"recommendation_rate,omitempty"`
	VerifiedReviewsCount *int64            `json:"verified_reviews_count,omitempty"`
}

func FromModelToStatsResponse(s *models.ReviewStats) *StatsResponse {
	return &StatsResponse{
		TargetType:           s.Target.Type,
		TargetID:             s.Target.ID,
		TotalReviews:         s.TotalReviews,
		AverageRating:        s.AverageRating,
		RatingDistribution:   s.RatingDistribution,
		RecommendationRate:   s.RecommendationRate,
		VerifiedReviewsCount: s.VerifiedReviewsCount,
	}
}
