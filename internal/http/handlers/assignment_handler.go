package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gigmarket/backend/internal/service"
)

type AssignmentHandler struct {
	assignments *service.AssignmentService
}

func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// Create POST /assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		ProposalID string     `json:"proposal_id" binding:"required"`
		StartDate  time.Time  `json:"start_date" binding:"required"`
		EndDate    *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	proposalID, ok := parseUUID(c, req.ProposalID, "proposal_id")
	if !ok {
		return
	}

	assignment, err := h.assignments.Create(c.Request.Context(), actor, service.AssignmentInput{
		ProposalID: proposalID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// UpdateDates PATCH /assignments/:id/dates
func (h *AssignmentHandler) UpdateDates(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	assignment, err := h.assignments.UpdateDates(c.Request.Context(), actor, id, service.AssignmentDatesInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// Complete POST /assignments/:id/complete
func (h *AssignmentHandler) Complete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	assignment, err := h.assignments.Complete(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// Cancel POST /assignments/:id/cancel
func (h *AssignmentHandler) Cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	assignment, err := h.assignments.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// Get GET /assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	assignment, err := h.assignments.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// GetByProject GET /projects/:id/assignment
func (h *AssignmentHandler) GetByProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	assignment, err := h.assignments.GetByProject(c.Request.Context(), actor, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// ListMine GET /assignments/mine
func (h *AssignmentHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	assignments, err := h.assignments.ListMine(c.Request.Context(), actor, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}
