package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type ResponseRepository interface {
	Create(ctx context.Context, response *models.Response) error
	GetByID(ctx context.Context, id string) (*models.Response, error)
	ExistsLive(ctx context.Context, reviewID, responderID string) (bool, error)
	UpdateContent(ctx context.Context, id, content string) error
	SoftDelete(ctx context.Context, id string) error
	ListByReview(ctx context.Context, reviewID string) ([]models.Response, error)
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Create(ctx context.Context, response *models.Response) error {
	if err := r.db.WithContext(ctx).Omit("Review").Create(response).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create response: %w", err)
	}
	return nil
}

// GetByID returns gorm.ErrRecordNotFound for missing and soft-deleted responses
func (r *responseRepository) GetByID(ctx context.Context, id string) (*models.Response, error) {
	var response models.Response
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&response).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepository) ExistsLive(ctx context.Context, reviewID, responderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Response{}).
		Where("review_id = ? AND responder_id = ?", reviewID, responderID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check response: %w", err)
	}
	return count > 0, nil
}

func (r *responseRepository) UpdateContent(ctx context.Context, id, content string) error {
	result := r.db.WithContext(ctx).Model(&models.Response{}).
		Where("id = ?", id).
		Update("content", content)
	if result.Error != nil {
		return fmt.Errorf("update response: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *responseRepository) SoftDelete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Response{})
	if result.Error != nil {
		return fmt.Errorf("delete response: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByReview returns live responses in conversation order
func (r *responseRepository) ListByReview(ctx context.Context, reviewID string) ([]models.Response, error) {
	responses := make([]models.Response, 0)
	err := r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Order("created_at ASC, id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return responses, nil
}
