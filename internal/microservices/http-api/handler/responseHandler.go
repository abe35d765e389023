package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	responseService service.ResponseService
}

func NewResponseHandler(responseService service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseService: responseService}
}

// RegisterRoutes registers the owner response thread routes
func (h *ResponseHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/reviews/:id/responses", h.List)

	protected.POST("/reviews/:id/responses", h.Create)
	protected.PATCH("/responses/:id", h.Update)
	protected.DELETE("/responses/:id", h.Delete)
}

// List returns the thread under a visible review, oldest first
// GET /api/v1/reviews/:id/responses
func (h *ResponseHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	responses, err := h.responseService.ListResponses(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]dto.ThreadResponse, 0, len(responses))
	for i := range responses {
		data = append(data, *dto.FromModelToThreadResponse(&responses[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Create adds the caller's response to a review
// POST /api/v1/reviews/:id/responses
func (h *ResponseHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.ResponseContentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	response, err := h.responseService.CreateResponse(ctx, c.Param("id"), userID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromModelToThreadResponse(response))
}

// Update edits the caller's own response
// PATCH /api/v1/responses/:id
func (h *ResponseHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.ResponseContentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	response, err := h.responseService.UpdateResponse(ctx, c.Param("id"), userID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToThreadResponse(response))
}

// Delete soft-deletes the caller's own response
// DELETE /api/v1/responses/:id
func (h *ResponseHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.responseService.DeleteResponse(ctx, c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Response deleted successfully"})
}
