package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"reviewhub/internal/events"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
)

// ReviewQuery is the caller-facing list filter. Zero values mean "no filter".
type ReviewQuery struct {
	TargetType      models.TargetType
	TargetID        string
	MinRating       *int
	MaxRating       *int
	HasPhotos       bool
	VerifiedOnly    bool
	RecommendedOnly bool
	Sort            repository.ReviewSort
	Page            int
	Limit           int
}

// ReviewPage is one page of a listing together with the normalized paging
type ReviewPage struct {
	Reviews []models.Review
	Total   int64
	Page    int
	Limit   int
}

type ReviewService interface {
	CreateReview(ctx context.Context, reviewerID string, target models.TargetRef, content ReviewContent) (*models.Review, error)
	UpdateReview(ctx context.Context, reviewID, authorID string, patch ReviewPatch) (*models.Review, error)
	DeleteReview(ctx context.Context, reviewID, authorID string) error
	GetReview(ctx context.Context, reviewID, requesterID string) (*models.Review, error)
	ListReviews(ctx context.Context, query ReviewQuery, requesterID string) (*ReviewPage, error)
}

type reviewService struct {
	store *repository.Store
	opts  Options
}

func NewReviewService(store *repository.Store, opts Options) ReviewService {
	return &reviewService{store: store, opts: opts.withDefaults()}
}

// CreateReview stores a new pending review. Two racing creates for the same
// reviewer and target are settled by the live unique index.
func (s *reviewService) CreateReview(ctx context.Context, reviewerID string, target models.TargetRef, content ReviewContent) (*models.Review, error) {
	if strings.TrimSpace(reviewerID) == "" {
		return nil, invalidInput("reviewer id is required")
	}
	if !target.Type.Valid() {
		return nil, invalidInput("invalid target_type: %s", target.Type)
	}
	if strings.TrimSpace(target.ID) == "" {
		return nil, invalidInput("target_id is required")
	}
	content, err := content.normalize()
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		ReviewerID:  reviewerID,
		Target:      target,
		Rating:      content.Rating,
		Title:       content.Title,
		Comment:     content.Comment,
		Photos:      content.Photos,
		PhotoCount:  len(content.Photos),
		Tags:        content.Tags,
		Recommended: content.Recommended,
		VisitDate:   content.VisitDate,
		Status:      models.StatusPending,
	}

	if err := s.store.Reviews().Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateReview
		}
		s.opts.Logger.Error("review_create_failed", "reviewer_id", reviewerID, "target", target.String(), "error", err)
		return nil, err
	}

	s.opts.Logger.Info("review_created", "review_id", review.ID, "reviewer_id", reviewerID, "target", target.String())
	s.publish(events.ReviewCreated, review, reviewerID)
	return review, nil
}

// UpdateReview applies the supplied fields. A real change of rating, title,
// comment or photos sends the review back to moderation.
func (s *reviewService) UpdateReview(ctx context.Context, reviewID, authorID string, patch ReviewPatch) (*models.Review, error) {
	patch, err := patch.normalize()
	if err != nil {
		return nil, err
	}

	var (
		updated     *models.Review
		prevStatus  models.ModerationStatus
		changed     bool
		remoderated bool
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Reviews().GetByIDForUpdate(ctx, reviewID)
		if err != nil {
			return err
		}
		if current.ReviewerID != authorID {
			return ErrNotAuthor
		}
		prevStatus = current.Status

		columns, resetStatus := applyPatch(current, patch)
		changed = len(columns) > 0
		if !changed {
			updated = current
			return nil
		}
		if resetStatus && current.Status != models.StatusPending {
			current.Status = models.StatusPending
			columns = append(columns, "status")
			remoderated = true
		}
		current.UpdatedAt = time.Now()
		columns = append(columns, "updated_at")

		if err := tx.Reviews().SaveContent(ctx, current, columns); err != nil {
			return err
		}
		updated, err = tx.Reviews().GetByID(ctx, reviewID)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}
	if !changed {
		return updated, nil
	}

	if prevStatus == models.StatusApproved {
		s.opts.StatsCache.Invalidate(ctx, updated.Target)
	}
	s.opts.Logger.Info("review_updated",
		"review_id", reviewID,
		"remoderated", remoderated,
		"status", updated.Status,
	)
	s.publish(events.ReviewUpdated, updated, authorID)
	return updated, nil
}

// applyPatch copies changed values into r and returns the touched columns
// plus whether any moderated field really changed.
func applyPatch(r *models.Review, p ReviewPatch) ([]string, bool) {
	var columns []string
	moderated := false

	if p.Rating != nil && *p.Rating != r.Rating {
		r.Rating = *p.Rating
		columns = append(columns, "rating")
		moderated = true
	}
	if p.Title != nil {
		if title := nilIfEmpty(p.Title); !equalText(title, r.Title) {
			r.Title = title
			columns = append(columns, "title")
			moderated = true
		}
	}
	if p.Comment != nil {
		if comment := nilIfEmpty(p.Comment); !equalText(comment, r.Comment) {
			r.Comment = comment
			columns = append(columns, "comment")
			moderated = true
		}
	}
	if p.Photos != nil && !slices.Equal(*p.Photos, r.Photos) {
		r.Photos = *p.Photos
		r.PhotoCount = len(r.Photos)
		columns = append(columns, "photos", "photo_count")
		moderated = true
	}
	if p.Tags != nil && !slices.Equal(*p.Tags, r.Tags) {
		r.Tags = *p.Tags
		columns = append(columns, "tags")
	}
	if p.Recommended != nil && (r.Recommended == nil || *r.Recommended != *p.Recommended) {
		r.Recommended = p.Recommended
		columns = append(columns, "recommended")
	}
	if p.VisitDate != nil && (r.VisitDate == nil || !r.VisitDate.Equal(*p.VisitDate)) {
		r.VisitDate = p.VisitDate
		columns = append(columns, "visit_date")
	}
	return columns, moderated
}

// DeleteReview tombstones the review. Votes and responses stay for audit.
func (s *reviewService) DeleteReview(ctx context.Context, reviewID, authorID string) error {
	var deleted *models.Review
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Reviews().GetByIDForUpdate(ctx, reviewID)
		if err != nil {
			return err
		}
		if current.ReviewerID != authorID {
			return ErrNotAuthor
		}
		deleted = current
		return tx.Reviews().SoftDelete(ctx, reviewID)
	})
	if err != nil {
		return storeError(err)
	}

	if deleted.Status == models.StatusApproved {
		s.opts.StatsCache.Invalidate(ctx, deleted.Target)
	}
	s.opts.Logger.Info("review_deleted", "review_id", reviewID, "reviewer_id", authorID)
	s.publish(events.ReviewDeleted, deleted, authorID)
	return nil
}

// GetReview hides non-approved reviews from everyone but their author.
// Hidden and missing look the same to the caller.
func (s *reviewService) GetReview(ctx context.Context, reviewID, requesterID string) (*models.Review, error) {
	review, err := s.store.Reviews().GetByID(ctx, reviewID)
	if err != nil {
		return nil, storeError(err)
	}
	if !review.VisibleTo(requesterID) {
		return nil, ErrNotFound
	}
	return review, nil
}

func (s *reviewService) ListReviews(ctx context.Context, query ReviewQuery, requesterID string) (*ReviewPage, error) {
	if query.TargetType != "" && !query.TargetType.Valid() {
		return nil, invalidInput("invalid target_type: %s", query.TargetType)
	}
	for _, bound := range []*int{query.MinRating, query.MaxRating} {
		if bound != nil {
			if err := validateRating(*bound); err != nil {
				return nil, err
			}
		}
	}
	if query.MinRating != nil && query.MaxRating != nil && *query.MinRating > *query.MaxRating {
		return nil, invalidInput("min_rating must not exceed max_rating")
	}
	if query.Sort == "" {
		query.Sort = repository.SortRecent
	}
	if !query.Sort.Valid() {
		return nil, invalidInput("invalid sort: %s", query.Sort)
	}

	reviews, total, page, limit, err := s.store.Reviews().List(ctx, repository.ReviewFilter{
		TargetType:      query.TargetType,
		TargetID:        strings.TrimSpace(query.TargetID),
		MinRating:       query.MinRating,
		MaxRating:       query.MaxRating,
		HasPhotos:       query.HasPhotos,
		VerifiedOnly:    query.VerifiedOnly,
		RecommendedOnly: query.RecommendedOnly,
		Sort:            query.Sort,
		Page:            query.Page,
		Limit:           query.Limit,
		ViewerID:        requesterID,
	})
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &ReviewPage{Reviews: reviews, Total: total, Page: page, Limit: limit}, nil
}

func (s *reviewService) publish(t events.Type, r *models.Review, actorID string) {
	s.opts.Publisher.Publish(reviewEvent(t, r, actorID))
}
