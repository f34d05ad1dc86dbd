// Package ledger holds the pure escrow and balance arithmetic. Everything
// here computes over records already loaded by the caller; nothing touches
// the database, so the same functions back both the transactional checks and
// the read-only balance endpoints.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/models"
)

// EscrowTotals are the completed escrow and release sums of one assignment.
type EscrowTotals struct {
	Escrow   decimal.Decimal
	Released decimal.Decimal
}

// Totals sums the COMPLETED payments of an assignment by type. Payments in
// any other status carry no weight.
func Totals(payments []models.Payment) EscrowTotals {
	t := EscrowTotals{Escrow: decimal.Zero, Released: decimal.Zero}
	for _, p := range payments {
		if p.Status != valueobject.PaymentStatusCompleted {
			continue
		}
		switch p.Type {
		case valueobject.PaymentTypeEscrow:
			t.Escrow = t.Escrow.Add(p.Amount)
		case valueobject.PaymentTypeRelease:
			t.Released = t.Released.Add(p.Amount)
		}
	}
	return t
}

// Available is the escrow still held against the assignment.
func (t EscrowTotals) Available() decimal.Decimal {
	return t.Escrow.Sub(t.Released)
}

// CanRelease reports whether releasing amount keeps the conservation
// invariant: completed releases never exceed completed escrow. The
// comparison is exact.
func (t EscrowTotals) CanRelease(amount decimal.Decimal) bool {
	return t.Released.Add(amount).LessThanOrEqual(t.Escrow)
}

// AvailableBalance is the freelancer's withdrawable balance: completed
// releases credited to the freelancer minus completed payouts minus payouts
// still pending. Pending payouts are reserved so two concurrent requests
// cannot both spend the same funds.
func AvailableBalance(released, completedPayouts, pendingPayouts decimal.Decimal) decimal.Decimal {
	return released.Sub(completedPayouts).Sub(pendingPayouts)
}
