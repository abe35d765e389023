package service_test

import (
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/service"
)

// TestScenario_ReviewLifecycle walks one review from submission to stats
func (s *EngineSuite) TestScenario_ReviewLifecycle() {
	review, err := s.reviews.CreateReview(s.ctx, "A", property("P1"), service.ReviewContent{Rating: 4})
	s.Require().NoError(err)
	s.Equal(models.StatusPending, review.Status)

	review, err = s.moderation.Approve(s.ctx, review.ID, "moderator")
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, review.Status)

	steps := []struct {
		voter string
		want  models.VoteTally
	}{
		{"B", models.VoteTally{Helpful: 1}},
		{"C", models.VoteTally{Helpful: 2}},
		{"B", models.VoteTally{Helpful: 1}},
	}
	for _, step := range steps {
		_, err := s.votes.Vote(s.ctx, review.ID, step.voter, models.VoteHelpful)
		s.Require().NoError(err)

		got, err := s.reviews.GetReview(s.ctx, review.ID, "")
		s.Require().NoError(err)
		s.Equal(step.want, models.VoteTally{Helpful: got.HelpfulCount, NotHelpful: got.NotHelpfulCount})
	}

	stats, err := s.stats.ComputeStats(s.ctx, property("P1"))
	s.Require().NoError(err)
	s.Equal(int64(1), stats.TotalReviews)
	s.Equal(4.00, stats.AverageRating)
}
