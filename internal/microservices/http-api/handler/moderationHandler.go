package handler

import (
	"context"
	"net/http"
	"strconv"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	moderationService service.ModerationService
}

func NewModerationHandler(moderationService service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// RegisterRoutes expects a group already restricted to moderators
func (h *ModerationHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/pending", h.ListPending)
	admin.POST("/reviews/:id/approve", h.Approve)
	admin.POST("/reviews/:id/reject", h.Reject)
	admin.POST("/reviews/:id/verify", h.Verify)
	admin.DELETE("/reviews/:id", h.Purge)
}

// ListPending returns the moderation queue, oldest first
// GET /api/v1/moderation/pending?page=1&limit=20
func (h *ModerationHandler) ListPending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.moderationService.ListPending(ctx, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedReviewResponse(
		dto.FromModelsToReviewResponses(result.Reviews), result.Total, result.Page, result.Limit))
}

// POST /api/v1/moderation/reviews/:id/approve
func (h *ModerationHandler) Approve(c *gin.Context) {
	h.decide(c, h.moderationService.Approve)
}

// POST /api/v1/moderation/reviews/:id/reject
func (h *ModerationHandler) Reject(c *gin.Context) {
	h.decide(c, h.moderationService.Reject)
}

func (h *ModerationHandler) decide(c *gin.Context, decision func(ctx context.Context, reviewID, moderatorID string) (*models.Review, error)) {
	moderatorID, ok := requireUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := decision(ctx, c.Param("id"), moderatorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToReviewResponse(review))
}

// Verify sets or clears the external trust signal
// POST /api/v1/moderation/reviews/:id/verify {"verified": true}
func (h *ModerationHandler) Verify(c *gin.Context) {
	var req dto.VerifyReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.moderationService.SetVerified(ctx, c.Param("id"), *req.Verified)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToReviewResponse(review))
}

// Purge hard-deletes a review with its votes and responses
// DELETE /api/v1/moderation/reviews/:id
func (h *ModerationHandler) Purge(c *gin.Context) {
	moderatorID, ok := requireUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.moderationService.Purge(ctx, c.Param("id"), moderatorID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review purged"})
}
