package handler

import (
	"net/http"
	"strconv"
	"strings"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// RegisterRoutes registers review routes. Reads go on the optionally
// authenticated group, writes on the authenticated one.
func (h *ReviewHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/reviews", h.List)
	public.GET("/reviews/:id", h.Get)

	protected.POST("/reviews", h.Create)
	protected.PATCH("/reviews/:id", h.Update)
	protected.DELETE("/reviews/:id", h.Delete)
}

// Create submits a new review, pending moderation
// POST /api/v1/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := models.NewTargetRef(req.TargetType, req.TargetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.reviewService.CreateReview(ctx, userID, target, service.ReviewContent{
		Rating:      req.Rating,
		Title:       req.Title,
		Comment:     req.Comment,
		Photos:      req.Photos,
		Tags:        req.Tags,
		Recommended: req.Recommended,
		VisitDate:   req.VisitDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromModelToReviewResponse(review))
}

// Get returns a review visible to the caller
// GET /api/v1/reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.reviewService.GetReview(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToReviewResponse(review))
}

// Update applies a partial change to the caller's own review
// PATCH /api/v1/reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.UpdateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := service.ReviewPatch{
		Rating:      req.Rating,
		Title:       req.Title,
		Comment:     req.Comment,
		Photos:      req.Photos,
		Tags:        req.Tags,
		Recommended: req.Recommended,
		VisitDate:   req.VisitDate,
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.reviewService.UpdateReview(ctx, c.Param("id"), userID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToReviewResponse(review))
}

// Delete soft-deletes the caller's own review
// DELETE /api/v1/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.reviewService.DeleteReview(ctx, c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

// List returns a filtered, sorted page of reviews
// GET /api/v1/reviews?target_type=property&target_id=p1&min_rating=3&sort=helpful&page=1&limit=20
func (h *ReviewHandler) List(c *gin.Context) {
	query, err := parseReviewQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.reviewService.ListReviews(ctx, query, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedReviewResponse(
		dto.FromModelsToReviewResponses(page.Reviews), page.Total, page.Page, page.Limit))
}

func parseReviewQuery(c *gin.Context) (service.ReviewQuery, error) {
	q := service.ReviewQuery{
		TargetID: strings.TrimSpace(c.Query("target_id")),
		Sort:     repository.ReviewSort(strings.TrimSpace(c.Query("sort"))),
	}

	if raw := strings.TrimSpace(c.Query("target_type")); raw != "" {
		t, err := models.ParseTargetType(raw)
		if err != nil {
			return q, err
		}
		q.TargetType = t
	}

	// Parse pagination parameters; bad values fall back to the defaults
	if p, err := strconv.Atoi(c.Query("page")); err == nil {
		q.Page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil {
		q.Limit = l
	}

	var err error
	if q.MinRating, err = optionalInt(c, "min_rating"); err != nil {
		return q, err
	}
	if q.MaxRating, err = optionalInt(c, "max_rating"); err != nil {
		return q, err
	}
	if q.HasPhotos, err = optionalBool(c, "has_photos"); err != nil {
		return q, err
	}
	if q.VerifiedOnly, err = optionalBool(c, "verified_only"); err != nil {
		return q, err
	}
	if q.RecommendedOnly, err = optionalBool(c, "recommended_only"); err != nil {
		return q, err
	}
	return q, nil
}

func optionalInt(c *gin.Context, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &queryError{key: key, value: raw}
	}
	return &v, nil
}

func optionalBool(c *gin.Context, key string) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &queryError{key: key, value: raw}
	}
	return v, nil
}

type queryError struct {
	key, value string
}

func (e *queryError) Error() string {
	return "invalid value for " + e.key + ": " + e.value
}
