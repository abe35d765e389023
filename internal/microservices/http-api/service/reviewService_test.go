package service_test

import (
	"sync"
	"time"

	"reviewhub/internal/events"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/service"
)

func (s *EngineSuite) TestCreateReview_StartsPending() {
	visit := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	review, err := s.reviews.CreateReview(s.ctx, "alice", property("p1"), service.ReviewContent{
		Rating:      4,
		Title:       strPtr("  <b>Great</b> stay  "),
		Comment:     strPtr("<script>alert(1)</script>Quiet & clean"),
		Photos:      []string{"a.jpg", " b.jpg "},
		Tags:        []string{"Clean", "quiet", "clean"},
		Recommended: boolPtr(true),
		VisitDate:   &visit,
	})
	s.Require().NoError(err)

	s.NotEmpty(review.ID)
	s.Equal(models.StatusPending, review.Status)
	s.Zero(review.HelpfulCount)
	s.Zero(review.NotHelpfulCount)
	s.False(review.Verified)
	s.Equal("Great stay", *review.Title)
	s.Equal("Quiet & clean", *review.Comment)
	s.Equal([]string{"a.jpg", "b.jpg"}, review.Photos)
	s.Equal([]string{"clean", "quiet"}, review.Tags)

	stored, err := s.reviews.GetReview(s.ctx, review.ID, "alice")
	s.Require().NoError(err)
	s.Equal(2, stored.PhotoCount)
	s.Equal([]string{"clean", "quiet"}, stored.Tags)
	s.Contains(s.publisher.Types(), events.ReviewCreated)
}

func (s *EngineSuite) TestCreateReview_BlankTextStoredAsNil() {
	review, err := s.reviews.CreateReview(s.ctx, "alice", property("p1"), service.ReviewContent{
		Rating:  3,
		Title:   strPtr("   "),
		Comment: strPtr("<p></p>"),
	})
	s.Require().NoError(err)
	s.Nil(review.Title)
	s.Nil(review.Comment)
}

func (s *EngineSuite) TestCreateReview_InvalidInput() {
	longTitle := make([]rune, service.MaxTitleLength+1)
	for i := range longTitle {
		longTitle[i] = 'é'
	}
	tooManyPhotos := make([]string, service.MaxPhotos+1)
	for i := range tooManyPhotos {
		tooManyPhotos[i] = "p.jpg"
	}

	tests := []struct {
		name    string
		target  models.TargetRef
		content service.ReviewContent
	}{
		{"RatingZero", property("p1"), service.ReviewContent{Rating: 0}},
		{"RatingSix", property("p1"), service.ReviewContent{Rating: 6}},
		{"TitleTooLong", property("p1"), service.ReviewContent{Rating: 3, Title: strPtr(string(longTitle))}},
		{"TooManyPhotos", property("p1"), service.ReviewContent{Rating: 3, Photos: tooManyPhotos}},
		{"EmptyPhoto", property("p1"), service.ReviewContent{Rating: 3, Photos: []string{" "}}},
		{"UnknownTag", property("p1"), service.ReviewContent{Rating: 3, Tags: []string{"haunted"}}},
		{"UnknownTargetType", models.TargetRef{Type: "planet", ID: "x"}, service.ReviewContent{Rating: 3}},
		{"MissingTargetID", models.TargetRef{Type: models.TargetCity}, service.ReviewContent{Rating: 3}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.reviews.CreateReview(s.ctx, "alice", tt.target, tt.content)
			s.ErrorIs(err, service.ErrInvalidInput)
		})
	}

	// nothing was persisted
	_, total, _, _, err := s.store.Reviews().List(s.ctx, repository.ReviewFilter{ViewerID: "alice"})
	s.Require().NoError(err)
	s.Zero(total)
}

func (s *EngineSuite) TestCreateReview_Duplicate() {
	s.createReview("alice", property("p1"), 4, false)

	_, err := s.reviews.CreateReview(s.ctx, "alice", property("p1"), service.ReviewContent{Rating: 2})
	s.ErrorIs(err, service.ErrDuplicateReview)

	// another target type with the same id is a different target
	_, err = s.reviews.CreateReview(s.ctx, "alice", models.TargetRef{Type: models.TargetCity, ID: "p1"}, service.ReviewContent{Rating: 2})
	s.NoError(err)
}

func (s *EngineSuite) TestCreateReview_ConcurrentExactlyOneWins() {
	const callers = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			_, err := s.reviews.CreateReview(s.ctx, "alice", property("p1"), service.ReviewContent{Rating: rating})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case s.ErrorIs(err, service.ErrDuplicateReview):
				duplicates++
			}
		}(i%5 + 1)
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(callers-1, duplicates)
}

func (s *EngineSuite) TestCreateReview_AllowedAgainAfterDelete() {
	first := s.createReview("alice", property("p1"), 4, false)
	s.Require().NoError(s.reviews.DeleteReview(s.ctx, first.ID, "alice"))

	second, err := s.reviews.CreateReview(s.ctx, "alice", property("p1"), service.ReviewContent{Rating: 5})
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)
}

func (s *EngineSuite) TestGetReview_Visibility() {
	pending := s.createReview("alice", property("p1"), 4, false)
	approved := s.createReview("bob", property("p1"), 5, true)

	_, err := s.reviews.GetReview(s.ctx, pending.ID, "")
	s.ErrorIs(err, service.ErrNotFound)
	_, err = s.reviews.GetReview(s.ctx, pending.ID, "carol")
	s.ErrorIs(err, service.ErrNotFound)

	got, err := s.reviews.GetReview(s.ctx, pending.ID, "alice")
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)

	got, err = s.reviews.GetReview(s.ctx, approved.ID, "")
	s.Require().NoError(err)
	s.Equal(approved.ID, got.ID)

	_, err = s.reviews.GetReview(s.ctx, "does-not-exist", "alice")
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *EngineSuite) TestGetReview_RejectedVisibleToAuthorOnly() {
	r := s.createReview("alice", property("p1"), 1, false)
	_, err := s.moderation.Reject(s.ctx, r.ID, "mod")
	s.Require().NoError(err)

	got, err := s.reviews.GetReview(s.ctx, r.ID, "alice")
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, got.Status)

	_, err = s.reviews.GetReview(s.ctx, r.ID, "bob")
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *EngineSuite) TestGetReview_DeletedHiddenFromAuthor() {
	r := s.createReview("alice", property("p1"), 4, true)
	s.Require().NoError(s.reviews.DeleteReview(s.ctx, r.ID, "alice"))

	_, err := s.reviews.GetReview(s.ctx, r.ID, "alice")
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *EngineSuite) TestUpdateReview_Ownership() {
	r := s.createReview("alice", property("p1"), 4, true)

	_, err := s.reviews.UpdateReview(s.ctx, r.ID, "mallory", service.ReviewPatch{Rating: intPtr(1)})
	s.ErrorIs(err, service.ErrNotAuthor)

	_, err = s.reviews.UpdateReview(s.ctx, "missing", "alice", service.ReviewPatch{Rating: intPtr(1)})
	s.ErrorIs(err, service.ErrNotFound)

	s.Require().NoError(s.reviews.DeleteReview(s.ctx, r.ID, "alice"))
	_, err = s.reviews.UpdateReview(s.ctx, r.ID, "alice", service.ReviewPatch{Rating: intPtr(1)})
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *EngineSuite) TestUpdateReview_Remoderation() {
	photos := []string{"new.jpg"}
	visit := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	tags := []string{"walkable"}

	tests := []struct {
		name       string
		patch      service.ReviewPatch
		wantStatus models.ModerationStatus
	}{
		{"RatingChanged", service.ReviewPatch{Rating: intPtr(2)}, models.StatusPending},
		{"TitleSet", service.ReviewPatch{Title: strPtr("New title")}, models.StatusPending},
		{"CommentSet", service.ReviewPatch{Comment: strPtr("Changed my mind")}, models.StatusPending},
		{"PhotosChanged", service.ReviewPatch{Photos: &photos}, models.StatusPending},
		{"SameRating", service.ReviewPatch{Rating: intPtr(4)}, models.StatusApproved},
		{"BlankTitleOnUntitled", service.ReviewPatch{Title: strPtr("  ")}, models.StatusApproved},
		{"RecommendedOnly", service.ReviewPatch{Recommended: boolPtr(true)}, models.StatusApproved},
		{"VisitDateOnly", service.ReviewPatch{VisitDate: &visit}, models.StatusApproved},
		{"TagsOnly", service.ReviewPatch{Tags: &tags}, models.StatusApproved},
		{"EmptyPatch", service.ReviewPatch{}, models.StatusApproved},
	}

	for i, tt := range tests {
		s.Run(tt.name, func() {
			target := property("remod-" + string(rune('a'+i)))
			r := s.createReview("alice", target, 4, true)

			updated, err := s.reviews.UpdateReview(s.ctx, r.ID, "alice", tt.patch)
			s.Require().NoError(err)
			s.Equal(tt.wantStatus, updated.Status)
		})
	}
}

func (s *EngineSuite) TestUpdateReview_AppliesOnlySuppliedFields() {
	r, err := s.reviews.CreateReview(s.ctx, "alice", property("p1"), service.ReviewContent{
		Rating:  4,
		Title:   strPtr("Nice"),
		Comment: strPtr("Would return"),
		Tags:    []string{"clean"},
	})
	s.Require().NoError(err)

	updated, err := s.reviews.UpdateReview(s.ctx, r.ID, "alice", service.ReviewPatch{
		Comment: strPtr(""),
		Tags:    &[]string{"quiet", "Safe"},
	})
	s.Require().NoError(err)

	s.Equal(4, updated.Rating)
	s.Equal("Nice", *updated.Title)
	s.Nil(updated.Comment)
	s.Equal([]string{"quiet", "safe"}, updated.Tags)
}

func (s *EngineSuite) TestUpdateReview_KeepsVoteCounters() {
	r := s.createReview("alice", property("p1"), 4, true)
	_, err := s.votes.Vote(s.ctx, r.ID, "bob", models.VoteHelpful)
	s.Require().NoError(err)

	updated, err := s.reviews.UpdateReview(s.ctx, r.ID, "alice", service.ReviewPatch{Rating: intPtr(5)})
	s.Require().NoError(err)
	s.Equal(int64(1), updated.HelpfulCount)
	s.Equal(s.ledger(r.ID), s.counters(r.ID))
}

func (s *EngineSuite) TestUpdateReview_InvalidPatch() {
	r := s.createReview("alice", property("p1"), 4, true)

	_, err := s.reviews.UpdateReview(s.ctx, r.ID, "alice", service.ReviewPatch{Rating: intPtr(9)})
	s.ErrorIs(err, service.ErrInvalidInput)
	_, err = s.reviews.UpdateReview(s.ctx, r.ID, "alice", service.ReviewPatch{Tags: &[]string{"spooky"}})
	s.ErrorIs(err, service.ErrInvalidInput)

	got, err := s.reviews.GetReview(s.ctx, r.ID, "")
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, got.Status)
}

func (s *EngineSuite) TestDeleteReview_LeavesLedgerForAudit() {
	r := s.createReview("alice", property("p1"), 4, true)
	_, err := s.votes.Vote(s.ctx, r.ID, "bob", models.VoteHelpful)
	s.Require().NoError(err)
	_, err = s.responses.CreateResponse(s.ctx, r.ID, "owner", "Thanks!")
	s.Require().NoError(err)

	s.ErrorIs(s.reviews.DeleteReview(s.ctx, r.ID, "bob"), service.ErrNotAuthor)
	s.Require().NoError(s.reviews.DeleteReview(s.ctx, r.ID, "alice"))
	s.ErrorIs(s.reviews.DeleteReview(s.ctx, r.ID, "alice"), service.ErrNotFound)

	s.Equal(models.VoteTally{Helpful: 1}, s.ledger(r.ID))
	var responses int64
	s.Require().NoError(s.store.DB().Model(&models.Response{}).Where("review_id = ?", r.ID).Count(&responses).Error)
	s.Equal(int64(1), responses)

	_, err = s.responses.ListResponses(s.ctx, r.ID, "alice")
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *EngineSuite) TestListReviews() {
	mine := s.createReview("alice", property("p1"), 2, false)
	public := s.createReview("bob", property("p1"), 5, true)
	s.createReview("carol", property("p1"), 3, false)
	s.createReview("dave", property("p2"), 4, true)

	page, err := s.reviews.ListReviews(s.ctx, service.ReviewQuery{TargetType: models.TargetProperty, TargetID: "p1"}, "alice")
	s.Require().NoError(err)
	s.Equal(int64(2), page.Total)
	s.Equal(1, page.Page)
	s.Equal(repository.DefaultPageSize, page.Limit)
	s.Equal([]string{public.ID, mine.ID}, []string{page.Reviews[0].ID, page.Reviews[1].ID})

	page, err = s.reviews.ListReviews(s.ctx, service.ReviewQuery{TargetID: "p1"}, "")
	s.Require().NoError(err)
	s.Equal(int64(1), page.Total)

	page, err = s.reviews.ListReviews(s.ctx, service.ReviewQuery{TargetID: "nowhere"}, "")
	s.Require().NoError(err)
	s.NotNil(page.Reviews)
	s.Empty(page.Reviews)
}

func (s *EngineSuite) TestListReviews_InvalidQuery() {
	queries := map[string]service.ReviewQuery{
		"Sort":        {Sort: "loudest"},
		"TargetType":  {TargetType: "galaxy"},
		"MinRating":   {MinRating: intPtr(0)},
		"InvertedMin": {MinRating: intPtr(4), MaxRating: intPtr(2)},
	}
	for name, q := range queries {
		s.Run(name, func() {
			_, err := s.reviews.ListReviews(s.ctx, q, "")
			s.ErrorIs(err, service.ErrInvalidInput)
		})
	}
}
