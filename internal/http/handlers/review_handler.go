package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gigmarket/backend/internal/service"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create POST /reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		AssignmentID string  `json:"assignment_id" binding:"required"`
		ReviewType   string  `json:"review_type" binding:"required"`
		Rating       int     `json:"rating" binding:"required"`
		Comment      *string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	assignmentID, ok := parseUUID(c, req.AssignmentID, "assignment_id")
	if !ok {
		return
	}

	result, err := h.reviews.Create(c.Request.Context(), actor, service.ReviewInput{
		AssignmentID: assignmentID,
		ReviewType:   req.ReviewType,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"review":         result.Review,
		"target_average": result.TargetAverage,
	})
}

// Get GET /reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	review, err := h.reviews.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// ListAboutUser GET /users/:id/reviews
func (h *ReviewHandler) ListAboutUser(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	limit, offset := pagination(c)

	reviews, err := h.reviews.ListAboutUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// ListForAssignment GET /assignments/:id/reviews
func (h *ReviewHandler) ListForAssignment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	assignmentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviews.ListForAssignment(c.Request.Context(), actor, assignmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
