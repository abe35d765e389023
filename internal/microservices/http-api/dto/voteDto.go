package dto

// VoteDTO for casting, toggling or switching a vote
type VoteDTO struct {
	VoteType string `json:"vote_type" binding:"required,oneof=helpful not_helpful"`
}

// VoteResultResponse reports the branch taken and the recounted counters
type VoteResultResponse struct {
	ReviewID        string `json:"review_id"`
	Action          string `json:"action"`
	HelpfulCount    int64  `json:"helpful_count"`
	NotHelpfulCount int64  `json:"not_helpful_count"`
}
