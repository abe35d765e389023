package service

import (
	"context"

	"reviewhub/internal/events"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
)

// VoteAction tells the caller which branch of the toggle a vote took
type VoteAction string

const (
	VoteCreated  VoteAction = "created"
	VoteRemoved  VoteAction = "removed"
	VoteSwitched VoteAction = "switched"
	VoteNoop     VoteAction = "noop"
)

type VoteResult struct {
	Action VoteAction       `json:"action"`
	Tally  models.VoteTally `json:"tally"`
}

type VoteService interface {
	Vote(ctx context.Context, reviewID, voterID string, voteType models.VoteType) (*VoteResult, error)
	RemoveVote(ctx context.Context, reviewID, voterID string, voteType models.VoteType) (*VoteResult, error)
}

type voteService struct {
	store *repository.Store
	opts  Options
}

func NewVoteService(store *repository.Store, opts Options) VoteService {
	return &voteService{store: store, opts: opts.withDefaults()}
}

// Vote inserts, toggles off or switches the voter's vote and recounts the
// review's counters from the ledger, all under the review's row lock.
func (s *voteService) Vote(ctx context.Context, reviewID, voterID string, voteType models.VoteType) (*VoteResult, error) {
	if voteType != models.VoteHelpful && voteType != models.VoteNotHelpful {
		return nil, invalidInput("invalid vote_type: %s", voteType)
	}
	if voterID == "" {
		return nil, invalidInput("voter id is required")
	}

	var (
		result VoteResult
		review *models.Review
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		review, err = tx.Reviews().GetByIDForUpdate(ctx, reviewID)
		if err != nil {
			return err
		}
		if review.ReviewerID == voterID {
			return ErrSelfVote
		}

		existing, err := tx.Votes().Find(ctx, reviewID, voterID)
		if err != nil {
			return err
		}
		switch {
		case existing == nil:
			err = tx.Votes().Create(ctx, &models.Vote{ReviewID: reviewID, VoterID: voterID, Type: voteType})
			result.Action = VoteCreated
		case existing.Type == voteType:
			err = tx.Votes().Delete(ctx, existing.ID)
			result.Action = VoteRemoved
		default:
			err = tx.Votes().UpdateType(ctx, existing.ID, voteType)
			result.Action = VoteSwitched
		}
		if err != nil {
			return err
		}

		result.Tally, err = recount(ctx, tx, reviewID)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.opts.Logger.Debug("vote_applied",
		"review_id", reviewID,
		"voter_id", voterID,
		"vote_type", voteType,
		"action", result.Action,
		"helpful", result.Tally.Helpful,
		"not_helpful", result.Tally.NotHelpful,
	)
	s.opts.Publisher.Publish(reviewEvent(events.VoteChanged, review, voterID))
	return &result, nil
}

// RemoveVote deletes the voter's vote of exactly voteType. Anything else,
// including no vote at all, is a successful no-op.
func (s *voteService) RemoveVote(ctx context.Context, reviewID, voterID string, voteType models.VoteType) (*VoteResult, error) {
	if voteType != models.VoteHelpful && voteType != models.VoteNotHelpful {
		return nil, invalidInput("invalid vote_type: %s", voteType)
	}

	result := VoteResult{Action: VoteNoop}
	var review *models.Review
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		review, err = tx.Reviews().GetByIDForUpdate(ctx, reviewID)
		if err != nil {
			return err
		}

		existing, err := tx.Votes().Find(ctx, reviewID, voterID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Type == voteType {
			if err := tx.Votes().Delete(ctx, existing.ID); err != nil {
				return err
			}
			result.Action = VoteRemoved
			result.Tally, err = recount(ctx, tx, reviewID)
			return err
		}
		result.Tally = models.VoteTally{Helpful: review.HelpfulCount, NotHelpful: review.NotHelpfulCount}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	if result.Action == VoteRemoved {
		s.opts.Logger.Debug("vote_removed", "review_id", reviewID, "voter_id", voterID, "vote_type", voteType)
		s.opts.Publisher.Publish(reviewEvent(events.VoteChanged, review, voterID))
	}
	return &result, nil
}

// recount derives the counters from the ledger and stores them on the review
func recount(ctx context.Context, tx *repository.Store, reviewID string) (models.VoteTally, error) {
	tally, err := tx.Votes().Tally(ctx, reviewID)
	if err != nil {
		return tally, err
	}
	return tally, tx.Reviews().SetVoteCounters(ctx, reviewID, tally)
}
