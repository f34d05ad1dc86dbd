package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/ledger"
	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/repository/common"
)

var ErrPayoutNotFound = errors.New("payout not found")

// InsufficientBalanceError carries the balance observed inside the payout
// transaction alongside the amount that exceeded it.
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, requested %s",
		e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

type PayoutRepository struct {
	db *sqlx.DB
}

func NewPayoutRepository(db *sqlx.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

// balanceQuerier is satisfied by both *sqlx.DB and *sqlx.Tx so the balance
// is derived by exactly one formula whether it is read for display or
// checked under the lock inside Create.
type balanceQuerier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func availableBalance(ctx context.Context, q balanceQuerier, freelancerID uuid.UUID) (decimal.Decimal, error) {
	var sums struct {
		Released         decimal.Decimal `db:"released"`
		CompletedPayouts decimal.Decimal `db:"completed_payouts"`
		PendingPayouts   decimal.Decimal `db:"pending_payouts"`
	}
	err := q.GetContext(ctx, &sums, `
		SELECT
			COALESCE((
				SELECT SUM(p.amount) FROM payments p
				JOIN assignments a ON a.id = p.assignment_id
				WHERE a.freelancer_id = $1 AND p.type = 'release' AND p.status = 'completed'
			), 0) AS released,
			COALESCE((
				SELECT SUM(amount) FROM payouts
				WHERE freelancer_id = $1 AND status = 'completed'
			), 0) AS completed_payouts,
			COALESCE((
				SELECT SUM(amount) FROM payouts
				WHERE freelancer_id = $1 AND status = 'pending'
			), 0) AS pending_payouts
	`, freelancerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("payout repository: balance sums: %w", err)
	}
	return ledger.AvailableBalance(sums.Released, sums.CompletedPayouts, sums.PendingPayouts), nil
}

// Create checks the freelancer's available balance and records the payout in
// one transaction. The freelancer's user row is locked first so two
// concurrent payouts cannot both pass the check against the same funds.
func (r *PayoutRepository) Create(ctx context.Context, payout *models.Payout) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked uuid.UUID
		err := tx.GetContext(ctx, &locked, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, payout.FreelancerID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("payout repository: lock freelancer: %w", err)
		}

		available, err := availableBalance(ctx, tx, payout.FreelancerID)
		if err != nil {
			return err
		}
		if payout.Amount.GreaterThan(available) {
			return &InsufficientBalanceError{Available: available, Requested: payout.Amount}
		}

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO payouts (id, freelancer_id, amount, currency, method, status, account_details, transaction_id, description)
			VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7, $8)
			RETURNING created_at, updated_at
		`, payout.ID, payout.FreelancerID, payout.Amount, payout.Currency, payout.Method,
			payout.AccountDetails, payout.TransactionID, payout.Description,
		).Scan(&payout.CreatedAt, &payout.UpdatedAt)
		if err != nil {
			return fmt.Errorf("payout repository: insert: %w", err)
		}

		if err := settle(ctx, tx, "payouts", payout.ID); err != nil {
			return err
		}
		payout.Status = valueobject.PaymentStatusCompleted
		return nil
	})
}

// AvailableBalance is the read-only derivation, same formula as the check
// inside Create.
func (r *PayoutRepository) AvailableBalance(ctx context.Context, freelancerID uuid.UUID) (decimal.Decimal, error) {
	return availableBalance(ctx, r.db, freelancerID)
}

func (r *PayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	return common.GetByID[models.Payout](ctx, r.db, "payouts", id, ErrPayoutNotFound)
}

func (r *PayoutRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.SelectContext(ctx, &payouts, `
		SELECT * FROM payouts WHERE freelancer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, freelancerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("payout repository: list by freelancer: %w", err)
	}
	return payouts, nil
}
