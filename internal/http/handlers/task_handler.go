package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gigmarket/backend/internal/service"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create POST /assignments/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	assignmentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title       string     `json:"title" binding:"required"`
		Description *string    `json:"description"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), actor, service.TaskInput{
		AssignmentID: assignmentID,
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// List GET /assignments/:id/tasks
func (h *TaskHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	assignmentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), actor, assignmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// Get GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateStatus PATCH /tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	task, err := h.tasks.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}
