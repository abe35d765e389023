package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoteType string

const (
	VoteHelpful    VoteType = "helpful"
	VoteNotHelpful VoteType = "not_helpful"
)

func ParseVoteType(raw string) (VoteType, error) {
	v := VoteType(strings.ToLower(strings.TrimSpace(raw)))
	if v != VoteHelpful && v != VoteNotHelpful {
		return "", fmt.Errorf("invalid vote_type: %s", raw)
	}
	return v, nil
}

// Vote is one row of the ledger; (review, voter) is unique.
type Vote struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ReviewID  string    `json:"review_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_votes_review_voter,priority:1"`
	VoterID   string    `json:"voter_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_votes_review_voter,priority:2"`
	Type      VoteType  `json:"vote_type" gorm:"column:vote_type;type:varchar(16);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	Review Review `json:"-" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}

func (Vote) TableName() string {
	return "review_votes"
}

// VoteTally is the ground truth the review counters must match.
type VoteTally struct {
	Helpful    int64 `json:"helpful"`
	NotHelpful int64 `json:"not_helpful"`
}
