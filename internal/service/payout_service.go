package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/logger"
	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/pkg/apperror"
	"github.com/gigmarket/backend/internal/repository"
)

// PayoutRepositoryIface is the storage surface the payout service depends
// on.
type PayoutRepositoryIface interface {
	Create(ctx context.Context, payout *models.Payout) error
	AvailableBalance(ctx context.Context, freelancerID uuid.UUID) (decimal.Decimal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Payout, error)
}

type PayoutService struct {
	repo PayoutRepositoryIface
}

type PayoutInput struct {
	Amount         decimal.Decimal
	Currency       string
	Method         string
	AccountDetails *string
	Description    *string
}

func NewPayoutService(repo PayoutRepositoryIface) *PayoutService {
	return &PayoutService{repo: repo}
}

// Create withdraws earned balance. Freelancers only. The repository
// recomputes the available balance under the freelancer's row lock, so two
// concurrent payouts cannot both draw on the same funds; settlement is
// synchronous.
func (s *PayoutService) Create(ctx context.Context, actor valueobject.Actor, in PayoutInput) (*models.Payout, error) {
	if !actor.IsFreelancer() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only freelancers can request payouts")
	}
	if err := valueobject.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	currency, err := valueobject.NormalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	method, err := valueobject.NewPayoutMethod(in.Method)
	if err != nil {
		return nil, err
	}

	payout := &models.Payout{
		ID:             uuid.New(),
		FreelancerID:   actor.UserID,
		Amount:         in.Amount,
		Currency:       currency,
		Method:         method,
		Status:         valueobject.PaymentStatusPending,
		AccountDetails: in.AccountDetails,
		TransactionID:  newTransactionID("payout"),
		Description:    in.Description,
	}

	if err := s.repo.Create(ctx, payout); err != nil {
		var insufficient *repository.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			return nil, apperror.New(apperror.ErrCodeInvariant, "payout exceeds available balance").
				WithDetail("available", insufficient.Available.String()).
				WithDetail("requested", insufficient.Requested.String())
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to create payout")
	}

	logger.Log.WithFields(map[string]interface{}{
		"payout_id":      payout.ID,
		"freelancer_id":  actor.UserID,
		"amount":         in.Amount.String(),
		"method":         method,
		"transaction_id": payout.TransactionID,
	}).Info("payout completed")

	return payout, nil
}

// AvailableBalance reports what the freelancer could withdraw right now,
// using the same formula the payout path checks against.
func (s *PayoutService) AvailableBalance(ctx context.Context, actor valueobject.Actor) (decimal.Decimal, error) {
	if !actor.IsFreelancer() {
		return decimal.Zero, apperror.New(apperror.ErrCodeForbidden, "only freelancers have a payout balance")
	}
	balance, err := s.repo.AvailableBalance(ctx, actor.UserID)
	if err != nil {
		return decimal.Zero, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to compute balance")
	}
	return balance, nil
}

// Get returns a payout to its owner.
func (s *PayoutService) Get(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Payout, error) {
	payout, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrPayoutNotFound
	}
	if payout.FreelancerID != actor.UserID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "payout belongs to another freelancer").
			WithDetail("payout_id", id)
	}
	return payout, nil
}

// ListMine returns the calling freelancer's payout history.
func (s *PayoutService) ListMine(ctx context.Context, actor valueobject.Actor, limit, offset int) ([]models.Payout, error) {
	limit = clampLimit(limit)
	payouts, err := s.repo.ListByFreelancer(ctx, actor.UserID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to list payouts")
	}
	return payouts, nil
}
