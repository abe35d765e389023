package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ReviewerID string    `json:"reviewer_id" gorm:"type:varchar(64);not null;index"`
	Target     TargetRef `json:"target" gorm:"embedded"`

	Rating      int        `json:"rating" gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5"`
	Title       *string    `json:"title,omitempty" gorm:"type:varchar(200)"`
	Comment     *string    `json:"comment,omitempty" gorm:"type:text"`
	Photos      []string   `json:"photos,omitempty" gorm:"type:text;serializer:json"`
	PhotoCount  int        `json:"-" gorm:"not null;default:0"`
	Tags        []string   `json:"tags,omitempty" gorm:"type:text;serializer:json"`
	Recommended *bool      `json:"recommended,omitempty"`
	VisitDate   *time.Time `json:"visit_date,omitempty"`
	Verified    bool       `json:"verified" gorm:"not null;default:false"`

	Status ModerationStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`

	// Cached projection of the votes table, rewritten inside every vote transaction
	HelpfulCount    int64 `json:"helpful_count" gorm:"not null;default:0"`
	NotHelpfulCount int64 `json:"not_helpful_count" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate hook to set UUID before creating a Review
func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

func (Review) TableName() string {
	return "reviews"
}

// VisibleTo applies the read rule: approved reviews are public, authors
// always see their own.
func (r *Review) VisibleTo(requesterID string) bool {
	if r.Status == StatusApproved {
		return true
	}
	return requesterID != "" && requesterID == r.ReviewerID
}
