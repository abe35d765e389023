package service_test

import (
	"fmt"
	"math/rand"
	"sync"

	"reviewhub/internal/events"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/service"
)

func (s *EngineSuite) TestVote_ToggleAndSwitch() {
	r := s.createReview("alice", property("p1"), 4, true)

	res, err := s.votes.Vote(s.ctx, r.ID, "bob", models.VoteHelpful)
	s.Require().NoError(err)
	s.Equal(service.VoteCreated, res.Action)
	s.Equal(models.VoteTally{Helpful: 1}, res.Tally)

	// same type again retracts the vote
	res, err = s.votes.Vote(s.ctx, r.ID, "bob", models.VoteHelpful)
	s.Require().NoError(err)
	s.Equal(service.VoteRemoved, res.Action)
	s.Equal(models.VoteTally{}, s.counters(r.ID))

	_, err = s.votes.Vote(s.ctx, r.ID, "bob", models.VoteHelpful)
	s.Require().NoError(err)
	res, err = s.votes.Vote(s.ctx, r.ID, "bob", models.VoteNotHelpful)
	s.Require().NoError(err)
	s.Equal(service.VoteSwitched, res.Action)
	s.Equal(models.VoteTally{NotHelpful: 1}, s.counters(r.ID))

	var rows int64
	s.Require().NoError(s.store.DB().Model(&models.Vote{}).
		Where("review_id = ? AND voter_id = ?", r.ID, "bob").Count(&rows).Error)
	s.Equal(int64(1), rows)
	s.Equal(s.ledger(r.ID), s.counters(r.ID))
	s.Contains(s.publisher.Types(), events.VoteChanged)
}

func (s *EngineSuite) TestVote_SelfVoteForbidden() {
	r := s.createReview("alice", property("p1"), 4, true)

	for _, vt := range []models.VoteType{models.VoteHelpful, models.VoteNotHelpful} {
		_, err := s.votes.Vote(s.ctx, r.ID, "alice", vt)
		s.ErrorIs(err, service.ErrSelfVote)
	}
	s.Equal(models.VoteTally{}, s.counters(r.ID))
	s.Equal(models.VoteTally{}, s.ledger(r.ID))
}

func (s *EngineSuite) TestVote_NotFound() {
	_, err := s.votes.Vote(s.ctx, "missing", "bob", models.VoteHelpful)
	s.ErrorIs(err, service.ErrNotFound)

	r := s.createReview("alice", property("p1"), 4, true)
	s.Require().NoError(s.reviews.DeleteReview(s.ctx, r.ID, "alice"))
	_, err = s.votes.Vote(s.ctx, r.ID, "bob", models.VoteHelpful)
	s.ErrorIs(err, service.ErrNotFound)
	_, err = s.votes.RemoveVote(s.ctx, r.ID, "bob", models.VoteHelpful)
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *EngineSuite) TestVote_InvalidType() {
	r := s.createReview("alice", property("p1"), 4, true)
	_, err := s.votes.Vote(s.ctx, r.ID, "bob", models.VoteType("love"))
	s.ErrorIs(err, service.ErrInvalidInput)
}

func (s *EngineSuite) TestRemoveVote_Idempotent() {
	r := s.createReview("alice", property("p1"), 4, true)

	res, err := s.votes.RemoveVote(s.ctx, r.ID, "bob", models.VoteHelpful)
	s.Require().NoError(err)
	s.Equal(service.VoteNoop, res.Action)

	_, err = s.votes.Vote(s.ctx, r.ID, "bob", models.VoteHelpful)
	s.Require().NoError(err)

	// a different type does not match the held vote
	res, err = s.votes.RemoveVote(s.ctx, r.ID, "bob", models.VoteNotHelpful)
	s.Require().NoError(err)
	s.Equal(service.VoteNoop, res.Action)
	s.Equal(models.VoteTally{Helpful: 1}, res.Tally)

	res, err = s.votes.RemoveVote(s.ctx, r.ID, "bob", models.VoteHelpful)
	s.Require().NoError(err)
	s.Equal(service.VoteRemoved, res.Action)
	s.Equal(models.VoteTally{}, s.counters(r.ID))

	res, err = s.votes.RemoveVote(s.ctx, r.ID, "bob", models.VoteHelpful)
	s.Require().NoError(err)
	s.Equal(service.VoteNoop, res.Action)
}

// SQLite runs these one at a time on its single connection; the row lock
// itself is contended in TestPostgres_ConcurrentVotesKeepCountersExact.
func (s *EngineSuite) TestVote_ConcurrentCountersMatchLedger() {
	r := s.createReview("alice", property("p1"), 4, true)

	const voters = 20
	const votesEach = 3
	rng := rand.New(rand.NewSource(42))
	plan := make([][]models.VoteType, voters)
	for i := range plan {
		for j := 0; j < votesEach; j++ {
			vt := models.VoteHelpful
			if rng.Intn(2) == 0 {
				vt = models.VoteNotHelpful
			}
			plan[i] = append(plan[i], vt)
		}
	}

	var wg sync.WaitGroup
	for i := range plan {
		wg.Add(1)
		go func(voter string, votes []models.VoteType) {
			defer wg.Done()
			for _, vt := range votes {
				_, err := s.votes.Vote(s.ctx, r.ID, voter, vt)
				s.NoError(err)
			}
		}(fmt.Sprintf("voter-%d", i), plan[i])
	}
	wg.Wait()

	s.Equal(s.ledger(r.ID), s.counters(r.ID))

	var rows int64
	s.Require().NoError(s.store.DB().Model(&models.Vote{}).Where("review_id = ?", r.ID).Count(&rows).Error)
	tally := s.ledger(r.ID)
	s.Equal(rows, tally.Helpful+tally.NotHelpful)
}
