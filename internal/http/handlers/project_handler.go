package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/service"
)

type ProjectHandler struct {
	projects *service.ProjectService
}

func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type projectRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	BudgetMin   *decimal.Decimal `json:"budget_min"`
	BudgetMax   *decimal.Decimal `json:"budget_max"`
	Currency    string           `json:"currency"`
	Deadline    *time.Time       `json:"deadline"`
}

func (r projectRequest) toInput() service.ProjectInput {
	return service.ProjectInput{
		Title:       r.Title,
		Description: r.Description,
		BudgetMin:   r.BudgetMin,
		BudgetMax:   r.BudgetMax,
		Currency:    r.Currency,
		Deadline:    r.Deadline,
	}
}

// Create POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	project, err := h.projects.Create(c.Request.Context(), actor, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// Get GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Update PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	project, err := h.projects.Update(c.Request.Context(), actor, id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Delete DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Publish POST /projects/:id/publish
func (h *ProjectHandler) Publish(c *gin.Context) {
	h.statusAction(c, h.projects.Publish)
}

// Complete POST /projects/:id/complete
func (h *ProjectHandler) Complete(c *gin.Context) {
	h.statusAction(c, h.projects.Complete)
}

// Cancel POST /projects/:id/cancel
func (h *ProjectHandler) Cancel(c *gin.Context) {
	h.statusAction(c, h.projects.Cancel)
}

// Close POST /projects/:id/close
func (h *ProjectHandler) Close(c *gin.Context) {
	h.statusAction(c, h.projects.Close)
}

// ListMine GET /projects/mine
func (h *ProjectHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	projects, err := h.projects.ListMine(c.Request.Context(), actor, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// ListOpen GET /projects
func (h *ProjectHandler) ListOpen(c *gin.Context) {
	limit, offset := pagination(c)

	projects, err := h.projects.ListOpen(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

type projectAction func(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Project, error)

func (h *ProjectHandler) statusAction(c *gin.Context, action projectAction) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	project, err := action(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}
