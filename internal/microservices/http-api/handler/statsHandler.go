package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService service.StatsService
}

func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/stats/:target_type/:target_id", h.Get)
}

// Get returns aggregate statistics over a target's approved reviews
// GET /api/v1/stats/:target_type/:target_id
func (h *StatsHandler) Get(c *gin.Context) {
	target, err := models.NewTargetRef(c.Param("target_type"), c.Param("target_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.statsService.ComputeStats(ctx, target)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToStatsResponse(stats))
}
