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

var ErrPaymentNotFound = errors.New("payment not found")

// InsufficientEscrowError is returned when a release would exceed the
// completed escrow of the assignment. It carries the totals observed inside
// the transaction so the caller can report exact numbers.
type InsufficientEscrowError struct {
	TotalEscrow   decimal.Decimal
	TotalReleased decimal.Decimal
	Requested     decimal.Decimal
}

func (e *InsufficientEscrowError) Error() string {
	return fmt.Sprintf("insufficient escrow: escrow %s, released %s, requested %s",
		e.TotalEscrow.StringFixed(2), e.TotalReleased.StringFixed(2), e.Requested.StringFixed(2))
}

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create records a payment and settles it in one transaction. The assignment
// row is locked first and its status re-read under the lock, so a concurrent
// cancel cannot slip in between the caller's check and the insert, and for
// releases the conservation check reads a snapshot no concurrent payment can
// invalidate before this one commits.
// Settlement is the deterministic pending -> processing -> completed walk;
// the unique transaction id keeps a retried call from applying twice.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var status valueobject.AssignmentStatus
		err := tx.GetContext(ctx, &status, `SELECT status FROM assignments WHERE id = $1 FOR UPDATE`, payment.AssignmentID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAssignmentNotFound
		}
		if err != nil {
			return fmt.Errorf("payment repository: lock assignment: %w", err)
		}
		if status == valueobject.AssignmentStatusCancelled {
			return ErrAssignmentCancelled
		}

		if payment.Type == valueobject.PaymentTypeRelease {
			var completed []models.Payment
			err = tx.SelectContext(ctx, &completed, `
				SELECT * FROM payments WHERE assignment_id = $1 AND status = 'completed'
			`, payment.AssignmentID)
			if err != nil {
				return fmt.Errorf("payment repository: load completed payments: %w", err)
			}

			totals := ledger.Totals(completed)
			if !totals.CanRelease(payment.Amount) {
				return &InsufficientEscrowError{
					TotalEscrow:   totals.Escrow,
					TotalReleased: totals.Released,
					Requested:     payment.Amount,
				}
			}
		}

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO payments (id, assignment_id, amount, currency, type, status, transaction_id, description)
			VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7)
			RETURNING created_at, updated_at
		`, payment.ID, payment.AssignmentID, payment.Amount, payment.Currency,
			payment.Type, payment.TransactionID, payment.Description,
		).Scan(&payment.CreatedAt, &payment.UpdatedAt)
		if err != nil {
			if common.IsUniqueViolation(err, "uniq_payments_transaction_id") {
				return fmt.Errorf("payment repository: duplicate transaction id: %w", common.ErrAlreadyExists)
			}
			return fmt.Errorf("payment repository: insert: %w", err)
		}
		payment.Status = valueobject.PaymentStatusPending

		if err := settle(ctx, tx, "payments", payment.ID); err != nil {
			return err
		}
		payment.Status = valueobject.PaymentStatusCompleted
		return nil
	})
}

// settle walks a payment or payout through processing to completed. Each
// step is guarded by the expected current status, so the progression is
// monotonic even if the statement is ever replayed.
func settle(ctx context.Context, tx *sqlx.Tx, table string, id uuid.UUID) error {
	steps := []struct {
		from valueobject.PaymentStatus
		to   valueobject.PaymentStatus
	}{
		{valueobject.PaymentStatusPending, valueobject.PaymentStatusProcessing},
		{valueobject.PaymentStatusProcessing, valueobject.PaymentStatusCompleted},
	}
	for _, step := range steps {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`, table),
			step.to, id, step.from)
		if err != nil {
			return fmt.Errorf("%s settle %s->%s: %w", table, step.from, step.to, err)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			return fmt.Errorf("%s settle %s->%s: row not in expected status", table, step.from, step.to)
		}
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return common.GetByID[models.Payment](ctx, r.db, "payments", id, ErrPaymentNotFound)
}

func (r *PaymentRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.SelectContext(ctx, &payments, `
		SELECT * FROM payments WHERE assignment_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, assignmentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("payment repository: list by assignment: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.SelectContext(ctx, &payments, `
		SELECT p.* FROM payments p
		JOIN assignments a ON a.id = p.assignment_id
		WHERE a.freelancer_id = $1
		ORDER BY p.created_at DESC LIMIT $2 OFFSET $3
	`, freelancerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("payment repository: list by freelancer: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.SelectContext(ctx, &payments, `
		SELECT p.* FROM payments p
		JOIN assignments a ON a.id = p.assignment_id
		WHERE a.client_id = $1
		ORDER BY p.created_at DESC LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("payment repository: list by client: %w", err)
	}
	return payments, nil
}
