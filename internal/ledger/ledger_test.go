package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/models"
)

func payment(t valueobject.PaymentType, s valueobject.PaymentStatus, amount string) models.Payment {
	return models.Payment{
		Type:   t,
		Status: s,
		Amount: decimal.RequireFromString(amount),
	}
}

func TestTotals_OnlyCompletedPaymentsCount(t *testing.T) {
	payments := []models.Payment{
		payment(valueobject.PaymentTypeEscrow, valueobject.PaymentStatusCompleted, "1000.00"),
		payment(valueobject.PaymentTypeEscrow, valueobject.PaymentStatusPending, "500.00"),
		payment(valueobject.PaymentTypeEscrow, valueobject.PaymentStatusFailed, "250.00"),
		payment(valueobject.PaymentTypeRelease, valueobject.PaymentStatusCompleted, "300.00"),
		payment(valueobject.PaymentTypeRelease, valueobject.PaymentStatusProcessing, "100.00"),
	}

	totals := Totals(payments)

	assert.True(t, totals.Escrow.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, totals.Released.Equal(decimal.RequireFromString("300.00")))
	assert.True(t, totals.Available().Equal(decimal.RequireFromString("700.00")))
}

func TestTotals_Empty(t *testing.T) {
	totals := Totals(nil)

	assert.True(t, totals.Escrow.IsZero())
	assert.True(t, totals.Released.IsZero())
	assert.True(t, totals.Available().IsZero())
}

func TestCanRelease_Conservation(t *testing.T) {
	payments := []models.Payment{
		payment(valueobject.PaymentTypeEscrow, valueobject.PaymentStatusCompleted, "1000.00"),
	}
	totals := Totals(payments)

	assert.False(t, totals.CanRelease(decimal.RequireFromString("1200.00")))
	assert.True(t, totals.CanRelease(decimal.RequireFromString("1000.00")))

	// After the full release nothing is left, not even one unit.
	payments = append(payments,
		payment(valueobject.PaymentTypeRelease, valueobject.PaymentStatusCompleted, "1000.00"))
	totals = Totals(payments)

	assert.False(t, totals.CanRelease(decimal.RequireFromString("1.00")))
	assert.False(t, totals.CanRelease(decimal.RequireFromString("0.01")))
}

func TestCanRelease_ExactComparison(t *testing.T) {
	// 0.1 + 0.2 must equal 0.3 exactly; binary floats would break this.
	payments := []models.Payment{
		payment(valueobject.PaymentTypeEscrow, valueobject.PaymentStatusCompleted, "0.10"),
		payment(valueobject.PaymentTypeEscrow, valueobject.PaymentStatusCompleted, "0.20"),
	}
	totals := Totals(payments)

	assert.True(t, totals.CanRelease(decimal.RequireFromString("0.30")))
	assert.False(t, totals.CanRelease(decimal.RequireFromString("0.31")))
}

func TestAvailableBalance(t *testing.T) {
	released := decimal.RequireFromString("1500.00")
	completed := decimal.RequireFromString("400.00")
	pending := decimal.RequireFromString("100.00")

	balance := AvailableBalance(released, completed, pending)
	assert.True(t, balance.Equal(decimal.RequireFromString("1000.00")))

	// Same inputs, same value: the derivation is a pure function.
	assert.True(t, balance.Equal(AvailableBalance(released, completed, pending)))

	// A completed payout of A lowers the balance by exactly A.
	after := AvailableBalance(released, completed.Add(decimal.RequireFromString("250.00")), pending)
	assert.True(t, balance.Sub(after).Equal(decimal.RequireFromString("250.00")))
}

func TestAvailableBalance_CanGoNegativeOnlyArithmetically(t *testing.T) {
	// The guard lives in the payout path; the arithmetic itself is total.
	balance := AvailableBalance(decimal.Zero, decimal.Zero, decimal.RequireFromString("10.00"))
	assert.True(t, balance.Equal(decimal.RequireFromString("-10.00")))
}
