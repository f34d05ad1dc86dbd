package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/domain/valueobject"
)

// Payment is an escrow or release movement against an assignment. Amounts are
// exact decimals; the transaction id is opaque and unique so settlement can
// never be applied twice. A payment is immutable once completed or failed.
type Payment struct {
	ID            uuid.UUID                 `db:"id" json:"id"`
	AssignmentID  uuid.UUID                 `db:"assignment_id" json:"assignment_id"`
	Amount        decimal.Decimal           `db:"amount" json:"amount"`
	Currency      string                    `db:"currency" json:"currency"`
	Type          valueobject.PaymentType   `db:"type" json:"type"`
	Status        valueobject.PaymentStatus `db:"status" json:"status"`
	TransactionID string                    `db:"transaction_id" json:"transaction_id"`
	Description   *string                   `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time                 `db:"updated_at" json:"updated_at"`
}

// Payout is a freelancer-initiated withdrawal of earned, unpaid balance.
type Payout struct {
	ID             uuid.UUID                 `db:"id" json:"id"`
	FreelancerID   uuid.UUID                 `db:"freelancer_id" json:"freelancer_id"`
	Amount         decimal.Decimal           `db:"amount" json:"amount"`
	Currency       string                    `db:"currency" json:"currency"`
	Method         valueobject.PayoutMethod  `db:"method" json:"method"`
	Status         valueobject.PaymentStatus `db:"status" json:"status"`
	AccountDetails *string                   `db:"account_details" json:"account_details,omitempty"`
	TransactionID  string                    `db:"transaction_id" json:"transaction_id"`
	Description    *string                   `db:"description" json:"description,omitempty"`
	CreatedAt      time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time                 `db:"updated_at" json:"updated_at"`
}
