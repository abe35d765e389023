package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	voteService service.VoteService
}

func NewVoteHandler(voteService service.VoteService) *VoteHandler {
	return &VoteHandler{voteService: voteService}
}

// RegisterRoutes registers vote routes; extra middleware (rate limiting)
// runs before both handlers.
func (h *VoteHandler) RegisterRoutes(protected *gin.RouterGroup, mw ...gin.HandlerFunc) {
	votes := protected.Group("/reviews/:id/votes", mw...)
	{
		votes.POST("", h.Vote)
		votes.DELETE("", h.Remove)
	}
}

// Vote casts, toggles off or switches the caller's vote
// POST /api/v1/reviews/:id/votes
func (h *VoteHandler) Vote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.VoteDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	voteType, err := models.ParseVoteType(req.VoteType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.voteService.Vote(ctx, c.Param("id"), userID, voteType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, voteResult(c.Param("id"), result))
}

// Remove retracts the caller's vote of the given type; idempotent
// DELETE /api/v1/reviews/:id/votes?type=helpful
func (h *VoteHandler) Remove(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	voteType, err := models.ParseVoteType(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.voteService.RemoveVote(ctx, c.Param("id"), userID, voteType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, voteResult(c.Param("id"), result))
}

func voteResult(reviewID string, r *service.VoteResult) dto.VoteResultResponse {
	return dto.VoteResultResponse{
		ReviewID:        reviewID,
		Action:          string(r.Action),
		HelpfulCount:    r.Tally.Helpful,
		NotHelpfulCount: r.Tally.NotHelpful,
	}
}
