package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/logger"
	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/pkg/apperror"
	"github.com/gigmarket/backend/internal/repository"
)

// PaymentRepositoryIface is the storage surface the payment service depends
// on.
type PaymentRepositoryIface interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID, limit, offset int) ([]models.Payment, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Payment, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Payment, error)
}

// AssignmentRepoForPayment is the read surface onto assignments the payment
// service needs.
type AssignmentRepoForPayment interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
}

type PaymentService struct {
	repo        PaymentRepositoryIface
	assignments AssignmentRepoForPayment
}

type PaymentInput struct {
	AssignmentID uuid.UUID
	Amount       decimal.Decimal
	Currency     string
	Type         string
	Description  *string
}

func NewPaymentService(repo PaymentRepositoryIface, assignments AssignmentRepoForPayment) *PaymentService {
	return &PaymentService{repo: repo, assignments: assignments}
}

// Create funds escrow or releases part of it to the freelancer. Only the
// assignment's client may move money. The repository re-checks escrow
// conservation under the assignment row lock and settles the payment
// synchronously, so a successful return means the payment completed.
func (s *PaymentService) Create(ctx context.Context, actor valueobject.Actor, in PaymentInput) (*models.Payment, error) {
	paymentType, err := valueobject.NewPaymentType(in.Type)
	if err != nil {
		return nil, err
	}
	if err := valueobject.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	currency, err := valueobject.NormalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignments.GetByID(ctx, in.AssignmentID)
	if err != nil {
		return nil, apperror.ErrAssignmentNotFound
	}
	if assignment.ClientID != actor.UserID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the assignment's client can create payments").
			WithDetail("assignment_id", in.AssignmentID)
	}
	if err := s.checkAssignmentStage(assignment, paymentType); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:            uuid.New(),
		AssignmentID:  in.AssignmentID,
		Amount:        in.Amount,
		Currency:      currency,
		Type:          paymentType,
		Status:        valueobject.PaymentStatusPending,
		TransactionID: newTransactionID("pay"),
		Description:   in.Description,
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		var insufficient *repository.InsufficientEscrowError
		switch {
		case errors.As(err, &insufficient):
			return nil, apperror.New(apperror.ErrCodeInvariant, "release exceeds escrowed funds").
				WithDetail("assignment_id", in.AssignmentID).
				WithDetail("total_escrow", insufficient.TotalEscrow.String()).
				WithDetail("total_released", insufficient.TotalReleased.String()).
				WithDetail("requested", insufficient.Requested.String())
		case errors.Is(err, repository.ErrAssignmentNotFound):
			return nil, apperror.ErrAssignmentNotFound
		case errors.Is(err, repository.ErrAssignmentCancelled):
			return nil, apperror.New(apperror.ErrCodeState, "cannot create payments on a cancelled assignment").
				WithDetail("assignment_id", in.AssignmentID)
		default:
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to create payment")
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"payment_id":     payment.ID,
		"assignment_id":  in.AssignmentID,
		"type":           paymentType,
		"amount":         in.Amount.String(),
		"transaction_id": payment.TransactionID,
	}).Info("payment completed")

	return payment, nil
}

// Money moves on active and completed assignments alike, so the client can
// still fund and release after the work is accepted. Only cancellation shuts
// the assignment off from payments.
func (s *PaymentService) checkAssignmentStage(assignment *models.Assignment, paymentType valueobject.PaymentType) error {
	if assignment.Status == valueobject.AssignmentStatusCancelled {
		return apperror.New(apperror.ErrCodeState, "cannot create payments on a cancelled assignment").
			WithDetail("assignment_id", assignment.ID).
			WithDetail("type", paymentType)
	}
	return nil
}

// Get returns a payment to the assignment's participants.
func (s *PaymentService) Get(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrPaymentNotFound
	}
	if _, err := s.participatingAssignment(ctx, actor, payment.AssignmentID); err != nil {
		return nil, err
	}
	return payment, nil
}

// ListByAssignment returns an assignment's payment history to its
// participants.
func (s *PaymentService) ListByAssignment(ctx context.Context, actor valueobject.Actor, assignmentID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	if _, err := s.participatingAssignment(ctx, actor, assignmentID); err != nil {
		return nil, err
	}
	limit = clampLimit(limit)
	payments, err := s.repo.ListByAssignment(ctx, assignmentID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to list payments")
	}
	return payments, nil
}

// ListMine returns the caller's payment feed across assignments.
func (s *PaymentService) ListMine(ctx context.Context, actor valueobject.Actor, limit, offset int) ([]models.Payment, error) {
	limit = clampLimit(limit)
	var (
		payments []models.Payment
		err      error
	)
	if actor.IsClient() {
		payments, err = s.repo.ListByClient(ctx, actor.UserID, limit, offset)
	} else {
		payments, err = s.repo.ListByFreelancer(ctx, actor.UserID, limit, offset)
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to list payments")
	}
	return payments, nil
}

func (s *PaymentService) participatingAssignment(ctx context.Context, actor valueobject.Actor, assignmentID uuid.UUID) (*models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, apperror.ErrAssignmentNotFound
	}
	if !assignment.IsParticipant(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "not a participant of this assignment").
			WithDetail("assignment_id", assignmentID)
	}
	return assignment, nil
}

// newTransactionID mints the opaque unique id settlement is keyed on.
func newTransactionID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
