package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Response is an owner reply threaded under a review.
type Response struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ReviewID    string         `json:"review_id" gorm:"type:varchar(36);not null;index"`
	ResponderID string         `json:"responder_id" gorm:"type:varchar(64);not null"`
	Content     string         `json:"content" gorm:"type:text;not null"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Associations
	Review Review `json:"-" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;"`
}

func (r *Response) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

func (Response) TableName() string {
	return "review_responses"
}
