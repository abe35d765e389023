package service

import (
	"context"

	"reviewhub/internal/events"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
)

// ModerationService is the external moderation process. It is the only way
// a review leaves pending.
type ModerationService interface {
	Approve(ctx context.Context, reviewID, moderatorID string) (*models.Review, error)
	Reject(ctx context.Context, reviewID, moderatorID string) (*models.Review, error)
	SetVerified(ctx context.Context, reviewID string, verified bool) (*models.Review, error)
	ListPending(ctx context.Context, page, limit int) (*ReviewPage, error)
	Purge(ctx context.Context, reviewID, moderatorID string) error
}

type moderationService struct {
	store *repository.Store
	opts  Options
}

func NewModerationService(store *repository.Store, opts Options) ModerationService {
	return &moderationService{store: store, opts: opts.withDefaults()}
}

func (s *moderationService) Approve(ctx context.Context, reviewID, moderatorID string) (*models.Review, error) {
	return s.transition(ctx, reviewID, moderatorID, models.StatusApproved)
}

func (s *moderationService) Reject(ctx context.Context, reviewID, moderatorID string) (*models.Review, error) {
	return s.transition(ctx, reviewID, moderatorID, models.StatusRejected)
}

func (s *moderationService) transition(ctx context.Context, reviewID, moderatorID string, next models.ModerationStatus) (*models.Review, error) {
	var review *models.Review
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Reviews().GetByIDForUpdate(ctx, reviewID)
		if err != nil {
			return err
		}
		if !current.Status.CanModerateTo(next) {
			return invalidTransition(current.Status, next)
		}
		if err := tx.Reviews().SetStatus(ctx, reviewID, next); err != nil {
			return err
		}
		review, err = tx.Reviews().GetByID(ctx, reviewID)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.opts.StatsCache.Invalidate(ctx, review.Target)
	s.opts.Logger.Info("review_moderated",
		"review_id", reviewID,
		"moderator_id", moderatorID,
		"status", next,
	)
	s.opts.Publisher.Publish(reviewEvent(events.ReviewModerated, review, moderatorID))
	return review, nil
}

func (s *moderationService) SetVerified(ctx context.Context, reviewID string, verified bool) (*models.Review, error) {
	var review *models.Review
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Reviews().GetByIDForUpdate(ctx, reviewID)
		if err != nil {
			return err
		}
		if current.Verified == verified {
			review = current
			return nil
		}
		if err := tx.Reviews().SetVerified(ctx, reviewID, verified); err != nil {
			return err
		}
		review, err = tx.Reviews().GetByID(ctx, reviewID)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}

	if review.Status == models.StatusApproved {
		s.opts.StatsCache.Invalidate(ctx, review.Target)
	}
	s.opts.Logger.Info("review_verified", "review_id", reviewID, "verified", verified)
	return review, nil
}

// ListPending is the moderation queue, oldest first
func (s *moderationService) ListPending(ctx context.Context, page, limit int) (*ReviewPage, error) {
	reviews, total, page, limit, err := s.store.Reviews().ListPending(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &ReviewPage{Reviews: reviews, Total: total, Page: page, Limit: limit}, nil
}

// Purge hard-deletes a review, soft-deleted or not. Its votes and responses
// go with it through the cascading foreign keys.
func (s *moderationService) Purge(ctx context.Context, reviewID, moderatorID string) error {
	var review *models.Review
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		if review, err = tx.Reviews().GetByIDUnscoped(ctx, reviewID); err != nil {
			return err
		}
		return tx.Reviews().HardDelete(ctx, reviewID)
	})
	if err != nil {
		return storeError(err)
	}

	s.opts.StatsCache.Invalidate(ctx, review.Target)
	s.opts.Logger.Warn("review_purged", "review_id", reviewID, "moderator_id", moderatorID)
	s.opts.Publisher.Publish(reviewEvent(events.ReviewPurged, review, moderatorID))
	return nil
}
