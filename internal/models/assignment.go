package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigmarket/backend/internal/domain/valueobject"
)

// Assignment binds one accepted proposal to its project and freelancer.
// Uniqueness holds on two independent keys: one assignment per project and
// one per proposal. Client id is copied from the project at creation so the
// payment and review paths can authorize without a join.
type Assignment struct {
	ID           uuid.UUID                    `db:"id" json:"id"`
	ProjectID    uuid.UUID                    `db:"project_id" json:"project_id"`
	ProposalID   uuid.UUID                    `db:"proposal_id" json:"proposal_id"`
	ClientID     uuid.UUID                    `db:"client_id" json:"client_id"`
	FreelancerID uuid.UUID                    `db:"freelancer_id" json:"freelancer_id"`
	StartDate    time.Time                    `db:"start_date" json:"start_date"`
	EndDate      *time.Time                   `db:"end_date" json:"end_date,omitempty"`
	Status       valueobject.AssignmentStatus `db:"status" json:"status"`
	CreatedAt    time.Time                    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time                    `db:"updated_at" json:"updated_at"`
}

// IsParticipant reports whether the user is on either side of the assignment.
func (a *Assignment) IsParticipant(userID uuid.UUID) bool {
	return a.ClientID == userID || a.FreelancerID == userID
}
