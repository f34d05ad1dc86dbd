package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/service"
)

type ProposalHandler struct {
	proposals *service.ProposalService
}

func NewProposalHandler(proposals *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

// Submit POST /proposals
func (h *ProposalHandler) Submit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		ProjectID             string          `json:"project_id" binding:"required"`
		CoverLetter           string          `json:"cover_letter"`
		BidAmount             decimal.Decimal `json:"bid_amount"`
		EstimatedDurationDays *int            `json:"estimated_duration_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	projectID, ok := parseUUID(c, req.ProjectID, "project_id")
	if !ok {
		return
	}

	proposal, err := h.proposals.Submit(c.Request.Context(), actor, service.ProposalInput{
		ProjectID:             projectID,
		CoverLetter:           req.CoverLetter,
		BidAmount:             req.BidAmount,
		EstimatedDurationDays: req.EstimatedDurationDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// Invite POST /proposals/invite
func (h *ProposalHandler) Invite(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		ProjectID             string           `json:"project_id" binding:"required"`
		FreelancerID          string           `json:"freelancer_id" binding:"required"`
		Message               string           `json:"message"`
		SuggestedBid          *decimal.Decimal `json:"suggested_bid"`
		EstimatedDurationDays *int             `json:"estimated_duration_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	projectID, ok := parseUUID(c, req.ProjectID, "project_id")
	if !ok {
		return
	}
	freelancerID, ok := parseUUID(c, req.FreelancerID, "freelancer_id")
	if !ok {
		return
	}

	proposal, err := h.proposals.Invite(c.Request.Context(), actor, service.InviteInput{
		ProjectID:             projectID,
		FreelancerID:          freelancerID,
		Message:               req.Message,
		SuggestedBid:          req.SuggestedBid,
		EstimatedDurationDays: req.EstimatedDurationDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// Accept POST /proposals/:id/accept
func (h *ProposalHandler) Accept(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.proposals.Accept(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposal":          result.Proposal,
		"project":           result.Project,
		"rejected_siblings": result.Rejected,
	})
}

// Reject POST /proposals/:id/reject
func (h *ProposalHandler) Reject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposals.Reject(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// Withdraw POST /proposals/:id/withdraw
func (h *ProposalHandler) Withdraw(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposals.Withdraw(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// Update PUT /proposals/:id
func (h *ProposalHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		CoverLetter           string          `json:"cover_letter"`
		BidAmount             decimal.Decimal `json:"bid_amount"`
		EstimatedDurationDays *int            `json:"estimated_duration_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	proposal, err := h.proposals.Update(c.Request.Context(), actor, id, service.ProposalInput{
		CoverLetter:           req.CoverLetter,
		BidAmount:             req.BidAmount,
		EstimatedDurationDays: req.EstimatedDurationDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// Get GET /proposals/:id
func (h *ProposalHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposals.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// ListMine GET /proposals/mine
func (h *ProposalHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	proposals, err := h.proposals.ListMine(c.Request.Context(), actor, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// ListForProject GET /projects/:id/proposals
func (h *ProposalHandler) ListForProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	limit, offset := pagination(c)

	proposals, err := h.proposals.ListForProject(c.Request.Context(), actor, projectID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}
