package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/domain/valueobject"
)

// Project is a unit of work a client posts for bidding. A project is never
// deleted once it has proposals or has left the open stage.
type Project struct {
	ID          uuid.UUID                 `db:"id" json:"id"`
	ClientID    uuid.UUID                 `db:"client_id" json:"client_id"`
	Title       string                    `db:"title" json:"title"`
	Description string                    `db:"description" json:"description"`
	BudgetMin   decimal.NullDecimal       `db:"budget_min" json:"budget_min,omitempty"`
	BudgetMax   decimal.NullDecimal       `db:"budget_max" json:"budget_max,omitempty"`
	Currency    string                    `db:"currency" json:"currency"`
	Status      valueobject.ProjectStatus `db:"status" json:"status"`
	Deadline    *time.Time                `db:"deadline" json:"deadline,omitempty"`
	CreatedAt   time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time                 `db:"updated_at" json:"updated_at"`
}

func (p *Project) IsOwnedBy(userID uuid.UUID) bool {
	return p.ClientID == userID
}
