package repository

import (
	"context"
	"errors"
	"fmt"

	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type VoteRepository interface {
	Find(ctx context.Context, reviewID, voterID string) (*models.Vote, error)
	Create(ctx context.Context, vote *models.Vote) error
	UpdateType(ctx context.Context, voteID string, voteType models.VoteType) error
	Delete(ctx context.Context, voteID string) error
	Tally(ctx context.Context, reviewID string) (models.VoteTally, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Find returns (nil, nil) when the voter has no vote on the review
func (r *voteRepository) Find(ctx context.Context, reviewID, voterID string) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("review_id = ? AND voter_id = ?", reviewID, voterID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find vote: %w", err)
	}
	return &vote, nil
}

func (r *voteRepository) Create(ctx context.Context, vote *models.Vote) error {
	if err := r.db.WithContext(ctx).Omit("Review").Create(vote).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create vote: %w", err)
	}
	return nil
}

func (r *voteRepository) UpdateType(ctx context.Context, voteID string, voteType models.VoteType) error {
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("id = ?", voteID).
		Update("vote_type", voteType).Error
	if err != nil {
		return fmt.Errorf("switch vote: %w", err)
	}
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, voteID string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", voteID).Delete(&models.Vote{}).Error; err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}
	return nil
}

// Tally counts the live ledger rows of each type for one review
func (r *voteRepository) Tally(ctx context.Context, reviewID string) (models.VoteTally, error) {
	var rows []struct {
		VoteType models.VoteType
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("vote_type, COUNT(*) AS total").
		Where("review_id = ?", reviewID).
		Group("vote_type").
		Scan(&rows).Error
	if err != nil {
		return models.VoteTally{}, fmt.Errorf("tally votes: %w", err)
	}

	var tally models.VoteTally
	for _, row := range rows {
		switch row.VoteType {
		case models.VoteHelpful:
			tally.Helpful = row.Total
		case models.VoteNotHelpful:
			tally.NotHelpful = row.Total
		}
	}
	return tally, nil
}
