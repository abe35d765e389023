package dto

import (
	"time"

	"reviewhub/internal/microservices/http-api/models"
)

// CreateReviewDTO for submitting a review
type CreateReviewDTO struct {
	TargetType  string     `json:"target_type" binding:"required"`
	TargetID    string     `json:"target_id" binding:"required"`
	Rating      int        `json:"rating" binding:"required,min=1,max=5"`
	Title       *string    `json:"title"`
	Comment     *string    `json:"comment"`
	Photos      []string   `json:"photos"`
	Tags        []string   `json:"tags"`
	Recommended *bool      `json:"recommended"`
	VisitDate   *time.Time `json:"visit_date"`
}

// UpdateReviewDTO is a partial update: omitted fields are left untouched,
// an empty string clears title/comment and an empty array clears photos/tags.
type UpdateReviewDTO struct {
	Rating      *int       `json:"rating" binding:"omitempty,min=1,max=5"`
	Title       *string    `json:"title"`
	Comment     *string    `json:"comment"`
	Photos      *[]string  `json:"photos"`
	Tags        *[]string  `json:"tags"`
	Recommended *bool      `json:"recommended"`
	VisitDate   *time.Time `json:"visit_date"`
}

// ReviewResponse for returning a single review
type ReviewResponse struct {
	ID              string                  `json:"id"`
	ReviewerID      string                  `json:"reviewer_id"`
	TargetType      models.TargetType       `json:"target_type"`
	TargetID        string                  `json:"target_id"`
	Rating          int                     `json:"rating"`
	Title           *string                 `json:"title,omitempty"`
	Comment         *string                 `json:"comment,omitempty"`
	Photos          []string                `json:"photos"`
	Tags            []string                `json:"tags"`
	Recommended     *bool                   `json:"recommended,omitempty"`
	VisitDate       *time.Time              `json:"visit_date,omitempty"`
	Verified        bool                    `json:"verified"`
	Status          models.ModerationStatus `json:"status"`
	HelpfulCount    int64                   `json:"helpful_count"`
	NotHelpfulCount int64                   `json:"not_helpful_count"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// FromModelToReviewResponse converts a Review model to ReviewResponse DTO
func FromModelToReviewResponse(r *models.Review) *ReviewResponse {
	photos := r.Photos
	if photos == nil {
		photos = []string{}
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return &ReviewResponse{
		ID:              r.ID,
		ReviewerID:      r.ReviewerID,
		TargetType:      r.Target.Type,
		TargetID:        r.Target.ID,
		Rating:          r.Rating,
		Title:           r.Title,
		Comment:         r.Comment,
		Photos:          photos,
		Tags:            tags,
		Recommended:     r.Recommended,
		VisitDate:       r.VisitDate,
		Verified:        r.Verified,
		Status:          r.Status,
		HelpfulCount:    r.HelpfulCount,
		NotHelpfulCount: r.NotHelpfulCount,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func FromModelsToReviewResponses(reviews []models.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, *FromModelToReviewResponse(&reviews[i]))
	}
	return out
}

// PaginatedReviewResponse for returning paginated reviews
type PaginatedReviewResponse struct {
	Data       []ReviewResponse `json:"data"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Total      int64            `json:"total"`
	TotalPages int64            `json:"total_pages"`
}

// NewPaginatedReviewResponse creates a paginated review response
func NewPaginatedReviewResponse(data []ReviewResponse, total int64, page, limit int) *PaginatedReviewResponse {
	var totalPages int64
	if limit > 0 {
		totalPages = total / int64(limit)
		if total%int64(limit) != 0 {
			totalPages++
		}
	}

	return &PaginatedReviewResponse{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// VerifyReviewDTO sets or clears the verified flag
type VerifyReviewDTO struct {
	Verified *bool `json:"verified" binding:"required"`
}
