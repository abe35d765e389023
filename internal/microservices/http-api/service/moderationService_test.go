package service_test

import (
	"reviewhub/internal/events"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/service"
)

func (s *EngineSuite) TestModeration_Transitions() {
	r := s.createReview("alice", property("p1"), 4, false)

	approved, err := s.moderation.Approve(s.ctx, r.ID, "mod")
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, approved.Status)

	_, err = s.moderation.Approve(s.ctx, r.ID, "mod")
	s.ErrorIs(err, service.ErrInvalidTransition)
	s.ErrorIs(err, service.ErrInvalidInput)

	_, err = s.moderation.Reject(s.ctx, r.ID, "mod")
	s.ErrorIs(err, service.ErrInvalidTransition)

	// an edit re-opens moderation
	_, err = s.reviews.UpdateReview(s.ctx, r.ID, "alice", service.ReviewPatch{Rating: intPtr(1)})
	s.Require().NoError(err)
	rejected, err := s.moderation.Reject(s.ctx, r.ID, "mod")
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, rejected.Status)

	_, err = s.moderation.Approve(s.ctx, "missing", "mod")
	s.ErrorIs(err, service.ErrNotFound)

	s.Contains(s.publisher.Types(), events.ReviewModerated)
}

func (s *EngineSuite) TestModeration_SetVerified() {
	r := s.createReview("alice", property("p1"), 4, true)

	got, err := s.moderation.SetVerified(s.ctx, r.ID, true)
	s.Require().NoError(err)
	s.True(got.Verified)
	s.Equal(models.StatusApproved, got.Status)

	got, err = s.moderation.SetVerified(s.ctx, r.ID, false)
	s.Require().NoError(err)
	s.False(got.Verified)

	_, err = s.moderation.SetVerified(s.ctx, "missing", true)
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *EngineSuite) TestModeration_ListPending() {
	first := s.createReview("u1", property("p1"), 3, false)
	s.createReview("u2", property("p1"), 3, true)
	second := s.createReview("u3", property("p2"), 3, false)

	page, err := s.moderation.ListPending(s.ctx, 1, 1)
	s.Require().NoError(err)
	s.Equal(int64(2), page.Total)
	s.Require().Len(page.Reviews, 1)
	s.Equal(first.ID, page.Reviews[0].ID)

	page, err = s.moderation.ListPending(s.ctx, 2, 1)
	s.Require().NoError(err)
	s.Require().Len(page.Reviews, 1)
	s.Equal(second.ID, page.Reviews[0].ID)
}

func (s *EngineSuite) TestModeration_PurgeCascades() {
	r := s.createReview("alice", property("p1"), 4, true)
	_, err := s.votes.Vote(s.ctx, r.ID, "bob", models.VoteHelpful)
	s.Require().NoError(err)
	_, err = s.responses.CreateResponse(s.ctx, r.ID, "owner", "thanks")
	s.Require().NoError(err)
	s.Require().NoError(s.reviews.DeleteReview(s.ctx, r.ID, "alice"))

	s.Require().NoError(s.moderation.Purge(s.ctx, r.ID, "mod"))

	var votes, responses int64
	s.Require().NoError(s.store.DB().Model(&models.Vote{}).Where("review_id = ?", r.ID).Count(&votes).Error)
	s.Require().NoError(s.store.DB().Unscoped().Model(&models.Response{}).Where("review_id = ?", r.ID).Count(&responses).Error)
	s.Zero(votes)
	s.Zero(responses)

	s.ErrorIs(s.moderation.Purge(s.ctx, r.ID, "mod"), service.ErrNotFound)
	s.Contains(s.publisher.Types(), events.ReviewPurged)
}
