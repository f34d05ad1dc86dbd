package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/domain/valueobject"
)

// Proposal is a freelancer's bid on a project, unique per
// (project, freelancer). At most one proposal per project ever stays
// accepted; the rest are swept to rejected at acceptance time.
type Proposal struct {
	ID                    uuid.UUID                  `db:"id" json:"id"`
	ProjectID             uuid.UUID                  `db:"project_id" json:"project_id"`
	FreelancerID          uuid.UUID                  `db:"freelancer_id" json:"freelancer_id"`
	CoverLetter           string                     `db:"cover_letter" json:"cover_letter"`
	BidAmount             decimal.Decimal            `db:"bid_amount" json:"bid_amount"`
	EstimatedDurationDays *int                       `db:"estimated_duration_days" json:"estimated_duration_days,omitempty"`
	Status                valueobject.ProposalStatus `db:"status" json:"status"`
	CreatedAt             time.Time                  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time                  `db:"updated_at" json:"updated_at"`
}

func (p *Proposal) IsOwnedBy(userID uuid.UUID) bool {
	return p.FreelancerID == userID
}
