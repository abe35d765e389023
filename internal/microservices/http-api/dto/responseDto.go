package dto

import (
	"time"

	"reviewhub/internal/microservices/http-api/models"
)

// ResponseContentDTO for creating or editing an owner response
type ResponseContentDTO struct {
	Content string `json:"content" binding:"required"`
}

// ThreadResponse is one owner response as returned to clients
type ThreadResponse struct {
	ID          string    `json:"id"`
	ReviewID    string    `json:"review_id"`
	ResponderID string    `json:"responder_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromModelToThreadResponse(r *models.Response) *ThreadResponse {
	return &ThreadResponse{
		ID:          r.ID,
		ReviewID:    r.ReviewID,
		ResponderID: r.ResponderID,
		Content:     r.Content,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
