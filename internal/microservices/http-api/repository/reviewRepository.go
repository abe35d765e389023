package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewSort selects the primary ordering of a review listing.
// Every ordering falls back to newest first.
type ReviewSort string

const (
	SortRecent     ReviewSort = "recent"
	SortHelpful    ReviewSort = "helpful"
	SortRatingAsc  ReviewSort = "rating_asc"
	SortRatingDesc ReviewSort = "rating_desc"
)

func (s ReviewSort) Valid() bool {
	switch s {
	case SortRecent, SortHelpful, SortRatingAsc, SortRatingDesc:
		return true
	}
	return false
}

// ReviewFilter drives List. Empty TargetType/TargetID mean "any".
// ViewerID additionally reveals the viewer's own pending reviews.
type ReviewFilter struct {
	TargetType      models.TargetType
	TargetID        string
	MinRating       *int
	MaxRating       *int
	HasPhotos       bool
	VerifiedOnly    bool
	RecommendedOnly bool
	Sort            ReviewSort
	Page            int
	Limit           int
	ViewerID        string
}

// RatingBucket is one row of the per-rating aggregate used for stats
type RatingBucket struct {
	Rating      int
	Count       int64
	Recommended int64
	Verified    int64
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	GetByIDForUpdate(ctx context.Context, id string) (*models.Review, error)
	GetByIDUnscoped(ctx context.Context, id string) (*models.Review, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	SaveContent(ctx context.Context, review *models.Review, columns []string) error
	SetStatus(ctx context.Context, id string, status models.ModerationStatus) error
	SetVerified(ctx context.Context, id string, verified bool) error
	SetVoteCounters(ctx context.Context, id string, tally models.VoteTally) error
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter ReviewFilter) ([]models.Review, int64, int, int, error)
	ListPending(ctx context.Context, page, limit int) ([]models.Review, int64, int, int, error)
	AggregateByRating(ctx context.Context, target models.TargetRef) ([]RatingBucket, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review; the live (reviewer, target) index turns a
// concurrent second insert into ErrDuplicate.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// GetByID returns gorm.ErrRecordNotFound for missing and soft-deleted reviews
func (r *reviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByIDForUpdate row-locks the review until the surrounding transaction ends
func (r *reviewRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByIDUnscoped also finds soft-deleted reviews
func (r *reviewRepository) GetByIDUnscoped(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateFields writes only the given columns so the vote counters written by
// concurrent vote transactions are never overwritten with stale values.
func (r *reviewRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SaveContent writes the named columns of review, zero values included.
// Struct updates go through the json serializer for photos and tags.
func (r *reviewRepository) SaveContent(ctx context.Context, review *models.Review, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(review).Select(columns).Updates(review)
	if result.Error != nil {
		return fmt.Errorf("update review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reviewRepository) SetStatus(ctx context.Context, id string, status models.ModerationStatus) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"status": status})
}

func (r *reviewRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"verified": verified})
}

// SetVoteCounters stores the recounted tally without touching updated_at,
// a vote is not an edit of the review.
func (r *reviewRepository) SetVoteCounters(ctx context.Context, id string, tally models.VoteTally) error {
	result := r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"helpful_count":     tally.Helpful,
			"not_helpful_count": tally.NotHelpful,
		})
	if result.Error != nil {
		return fmt.Errorf("set vote counters: %w", result.Error)
	}
	return nil
}

func (r *reviewRepository) SoftDelete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Review{})
	if result.Error != nil {
		return fmt.Errorf("delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HardDelete removes the row; votes and responses go with it through the
// ON DELETE CASCADE foreign keys.
func (r *reviewRepository) HardDelete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.Review{})
	if result.Error != nil {
		return fmt.Errorf("purge review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns one page plus the total match count and the normalized
// page/limit actually used.
func (r *reviewRepository) List(ctx context.Context, f ReviewFilter) ([]models.Review, int64, int, int, error) {
	page, limit, offset := paginate(f.Page, f.Limit)

	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, 0, 0, fmt.Errorf("count reviews: %w", err)
	}

	var reviews []models.Review
	err := r.filtered(ctx, f).
		Order(orderBy(f.Sort)).
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, page, limit, nil
}

// filtered builds a fresh query each call, gorm chains are not reusable
// after Count.
func (r *reviewRepository) filtered(ctx context.Context, f ReviewFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Review{})

	if f.ViewerID != "" {
		q = q.Where("(status = ? OR (status = ? AND reviewer_id = ?))",
			models.StatusApproved, models.StatusPending, f.ViewerID)
	} else {
		q = q.Where("status = ?", models.StatusApproved)
	}

	if f.TargetType != "" {
		q = q.Where("target_type = ?", f.TargetType)
	}
	if f.TargetID != "" {
		q = q.Where("target_id = ?", f.TargetID)
	}
	if f.MinRating != nil {
		q = q.Where("rating >= ?", *f.MinRating)
	}
	if f.MaxRating != nil {
		q = q.Where("rating <= ?", *f.MaxRating)
	}
	if f.HasPhotos {
		q = q.Where("photo_count > 0")
	}
	if f.VerifiedOnly {
		q = q.Where("verified = ?", true)
	}
	if f.RecommendedOnly {
		q = q.Where("recommended = ?", true)
	}
	return q
}

func orderBy(sort ReviewSort) string {
	switch sort {
	case SortHelpful:
		return "helpful_count DESC, created_at DESC, id DESC"
	case SortRatingAsc:
		return "rating ASC, created_at DESC, id DESC"
	case SortRatingDesc:
		return "rating DESC, created_at DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

// ListPending is the moderation queue, oldest first
func (r *reviewRepository) ListPending(ctx context.Context, page, limit int) ([]models.Review, int64, int, int, error) {
	page, limit, offset := paginate(page, limit)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("status = ?", models.StatusPending).
		Count(&total).Error; err != nil {
		return nil, 0, 0, 0, fmt.Errorf("count pending reviews: %w", err)
	}

	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("list pending reviews: %w", err)
	}
	return reviews, total, page, limit, nil
}

// AggregateByRating groups approved, live reviews of one target by rating in
// a single statement, which gives the caller a consistent snapshot.
func (r *reviewRepository) AggregateByRating(ctx context.Context, target models.TargetRef) ([]RatingBucket, error) {
	var buckets []RatingBucket
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select(`rating,
			COUNT(*) AS count,
			SUM(CASE WHEN recommended = ? THEN 1 ELSE 0 END) AS recommended,
			SUM(CASE WHEN verified = ? THEN 1 ELSE 0 END) AS verified`, true, true).
		Where("target_type = ? AND target_id = ? AND status = ?", target.Type, target.ID, models.StatusApproved).
		Group("rating").
		Scan(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate reviews: %w", err)
	}
	return buckets, nil
}
