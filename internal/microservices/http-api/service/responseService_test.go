package service_test

import (
	"strings"
	"time"

	"reviewhub/internal/events"
	"reviewhub/internal/microservices/http-api/service"
)

func (s *EngineSuite) TestCreateResponse_Uniqueness() {
	r := s.createReview("alice", property("p1"), 4, true)

	first, err := s.responses.CreateResponse(s.ctx, r.ID, "owner", "Thank you for staying!")
	s.Require().NoError(err)
	s.Equal("owner", first.ResponderID)

	_, err = s.responses.CreateResponse(s.ctx, r.ID, "owner", "Second thoughts")
	s.ErrorIs(err, service.ErrDuplicateResponse)

	_, err = s.responses.CreateResponse(s.ctx, r.ID, "manager", "Welcome back anytime")
	s.NoError(err)

	s.Contains(s.publisher.Types(), events.ResponseCreated)
}

func (s *EngineSuite) TestCreateResponse_AfterDeleteAllowed() {
	r := s.createReview("alice", property("p1"), 4, true)
	first, err := s.responses.CreateResponse(s.ctx, r.ID, "owner", "v1")
	s.Require().NoError(err)
	s.Require().NoError(s.responses.DeleteResponse(s.ctx, first.ID, "owner"))

	_, err = s.responses.CreateResponse(s.ctx, r.ID, "owner", "v2")
	s.NoError(err)
}

func (s *EngineSuite) TestCreateResponse_Validation() {
	r := s.createReview("alice", property("p1"), 4, true)

	_, err := s.responses.CreateResponse(s.ctx, r.ID, "owner", "   ")
	s.ErrorIs(err, service.ErrInvalidInput)
	_, err = s.responses.CreateResponse(s.ctx, r.ID, "owner", "<i></i>")
	s.ErrorIs(err, service.ErrInvalidInput)
	_, err = s.responses.CreateResponse(s.ctx, r.ID, "owner", strings.Repeat("x", service.MaxResponseLength+1))
	s.ErrorIs(err, service.ErrInvalidInput)

	_, err = s.responses.CreateResponse(s.ctx, "missing", "owner", "hello")
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *EngineSuite) TestUpdateAndDeleteResponse_Ownership() {
	r := s.createReview("alice", property("p1"), 4, true)
	resp, err := s.responses.CreateResponse(s.ctx, r.ID, "owner", "original")
	s.Require().NoError(err)

	_, err = s.responses.UpdateResponse(s.ctx, resp.ID, "intruder", "hijacked")
	s.ErrorIs(err, service.ErrNotAuthor)
	s.ErrorIs(s.responses.DeleteResponse(s.ctx, resp.ID, "intruder"), service.ErrNotAuthor)

	updated, err := s.responses.UpdateResponse(s.ctx, resp.ID, "owner", "<b>edited</b>")
	s.Require().NoError(err)
	s.Equal("edited", updated.Content)

	s.Require().NoError(s.responses.DeleteResponse(s.ctx, resp.ID, "owner"))
	s.ErrorIs(s.responses.DeleteResponse(s.ctx, resp.ID, "owner"), service.ErrNotFound)
	_, err = s.responses.UpdateResponse(s.ctx, resp.ID, "owner", "again")
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *EngineSuite) TestListResponses() {
	r := s.createReview("alice", property("p1"), 4, true)
	first, err := s.responses.CreateResponse(s.ctx, r.ID, "owner", "first")
	s.Require().NoError(err)
	time.Sleep(2 * time.Millisecond)
	second, err := s.responses.CreateResponse(s.ctx, r.ID, "manager", "second")
	s.Require().NoError(err)
	time.Sleep(2 * time.Millisecond)
	gone, err := s.responses.CreateResponse(s.ctx, r.ID, "intern", "oops")
	s.Require().NoError(err)
	s.Require().NoError(s.responses.DeleteResponse(s.ctx, gone.ID, "intern"))

	list, err := s.responses.ListResponses(s.ctx, r.ID, "")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(first.ID, list[0].ID)
	s.Equal(second.ID, list[1].ID)
}

func (s *EngineSuite) TestListResponses_FollowsReviewVisibility() {
	r := s.createReview("alice", property("p1"), 4, false)
	_, err := s.responses.CreateResponse(s.ctx, r.ID, "owner", "early reply")
	s.Require().NoError(err)

	_, err = s.responses.ListResponses(s.ctx, r.ID, "bob")
	s.ErrorIs(err, service.ErrNotFound)

	list, err := s.responses.ListResponses(s.ctx, r.ID, "alice")
	s.Require().NoError(err)
	s.Len(list, 1)
}
