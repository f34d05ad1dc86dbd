package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/service"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Create POST /payments
func (h *PaymentHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		AssignmentID string          `json:"assignment_id" binding:"required"`
		Amount       decimal.Decimal `json:"amount"`
		Currency     string          `json:"currency" binding:"required"`
		Type         string          `json:"type" binding:"required"`
		Description  *string         `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	assignmentID, ok := parseUUID(c, req.AssignmentID, "assignment_id")
	if !ok {
		return
	}

	payment, err := h.payments.Create(c.Request.Context(), actor, service.PaymentInput{
		AssignmentID: assignmentID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Type:         req.Type,
		Description:  req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// Get GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.payments.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// ListByAssignment GET /assignments/:id/payments
func (h *PaymentHandler) ListByAssignment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	assignmentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	limit, offset := pagination(c)

	payments, err := h.payments.ListByAssignment(c.Request.Context(), actor, assignmentID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// ListMine GET /payments/mine
func (h *PaymentHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	payments, err := h.payments.ListMine(c.Request.Context(), actor, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
