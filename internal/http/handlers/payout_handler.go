package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/service"
)

type PayoutHandler struct {
	payouts *service.PayoutService
}

func NewPayoutHandler(payouts *service.PayoutService) *PayoutHandler {
	return &PayoutHandler{payouts: payouts}
}

// Create POST /payouts
func (h *PayoutHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		Amount         decimal.Decimal `json:"amount"`
		Currency       string          `json:"currency" binding:"required"`
		Method         string          `json:"method" binding:"required"`
		AccountDetails *string         `json:"account_details"`
		Description    *string         `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	payout, err := h.payouts.Create(c.Request.Context(), actor, service.PayoutInput{
		Amount:         req.Amount,
		Currency:       req.Currency,
		Method:         req.Method,
		AccountDetails: req.AccountDetails,
		Description:    req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payout)
}

// Balance GET /payouts/balance
func (h *PayoutHandler) Balance(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	balance, err := h.payouts.AvailableBalance(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"available_balance": balance})
}

// Get GET /payouts/:id
func (h *PayoutHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	payout, err := h.payouts.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

// ListMine GET /payouts/mine
func (h *PayoutHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	payouts, err := h.payouts.ListMine(c.Request.Context(), actor, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}
