package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/pkg/apperror"
	"github.com/gigmarket/backend/internal/repository"
)

func newPaymentService() (*PaymentService, *mockPaymentRepo, *mockAssignmentRepo) {
	payments := new(mockPaymentRepo)
	assignments := new(mockAssignmentRepo)
	return NewPaymentService(payments, assignments), payments, assignments
}

func TestPaymentService_Escrow_Success(t *testing.T) {
	svc, payments, assignments := newPaymentService()
	ctx := context.Background()

	clientID := uuid.New()
	assignment := activeAssignment(clientID, uuid.New())

	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)
	payments.On("Create", ctx, mock.AnythingOfType("*models.Payment")).Return(nil)

	payment, err := svc.Create(ctx, clientActor(clientID), PaymentInput{
		AssignmentID: assignment.ID,
		Amount:       decimal.NewFromInt(1000),
		Currency:     "USD",
		Type:         "escrow",
	})

	assert.NoError(t, err)
	assert.Equal(t, valueobject.PaymentTypeEscrow, payment.Type)
	assert.NotEmpty(t, payment.TransactionID)
}

func TestPaymentService_Release_ExceedsEscrow(t *testing.T) {
	svc, payments, assignments := newPaymentService()
	ctx := context.Background()

	clientID := uuid.New()
	assignment := activeAssignment(clientID, uuid.New())

	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)
	payments.On("Create", ctx, mock.AnythingOfType("*models.Payment")).
		Return(&repository.InsufficientEscrowError{
			TotalEscrow:   decimal.NewFromInt(1000),
			TotalReleased: decimal.NewFromInt(1000),
			Requested:     decimal.NewFromInt(1),
		})

	_, err := svc.Create(ctx, clientActor(clientID), PaymentInput{
		AssignmentID: assignment.ID,
		Amount:       decimal.NewFromInt(1),
		Currency:     "USD",
		Type:         "release",
	})

	assert.True(t, apperror.IsInvariant(err))
	appErr, _ := apperror.As(err)
	assert.Equal(t, "1000", appErr.Details["total_escrow"])
	assert.Equal(t, "1", appErr.Details["requested"])
}

func TestPaymentService_Create_FreelancerForbidden(t *testing.T) {
	svc, _, assignments := newPaymentService()
	ctx := context.Background()

	freelancerID := uuid.New()
	assignment := activeAssignment(uuid.New(), freelancerID)
	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)

	_, err := svc.Create(ctx, freelancerActor(freelancerID), PaymentInput{
		AssignmentID: assignment.ID,
		Amount:       decimal.NewFromInt(100),
		Currency:     "USD",
		Type:         "escrow",
	})

	assert.True(t, apperror.IsForbidden(err))
}

// Completing the work does not shut off funding: the client can still escrow
// after completion and release right after, paying for finished work.
func TestPaymentService_Escrow_CompletedAssignment(t *testing.T) {
	svc, payments, assignments := newPaymentService()
	ctx := context.Background()

	clientID := uuid.New()
	assignment := activeAssignment(clientID, uuid.New())
	assignment.Status = valueobject.AssignmentStatusCompleted

	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)
	payments.On("Create", ctx, mock.AnythingOfType("*models.Payment")).Return(nil)

	payment, err := svc.Create(ctx, clientActor(clientID), PaymentInput{
		AssignmentID: assignment.ID,
		Amount:       decimal.NewFromInt(100),
		Currency:     "USD",
		Type:         "escrow",
	})

	assert.NoError(t, err)
	assert.Equal(t, valueobject.PaymentTypeEscrow, payment.Type)
}

func TestPaymentService_Escrow_CancelledAssignment(t *testing.T) {
	svc, _, assignments := newPaymentService()
	ctx := context.Background()

	clientID := uuid.New()
	assignment := activeAssignment(clientID, uuid.New())
	assignment.Status = valueobject.AssignmentStatusCancelled
	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)

	_, err := svc.Create(ctx, clientActor(clientID), PaymentInput{
		AssignmentID: assignment.ID,
		Amount:       decimal.NewFromInt(100),
		Currency:     "USD",
		Type:         "escrow",
	})

	assert.True(t, apperror.IsState(err))
}

// A cancel that lands between the service check and the insert surfaces as
// the repository's in-transaction rejection and still maps to a state error.
func TestPaymentService_Create_CancelledInTransaction(t *testing.T) {
	svc, payments, assignments := newPaymentService()
	ctx := context.Background()

	clientID := uuid.New()
	assignment := activeAssignment(clientID, uuid.New())

	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)
	payments.On("Create", ctx, mock.AnythingOfType("*models.Payment")).
		Return(repository.ErrAssignmentCancelled)

	_, err := svc.Create(ctx, clientActor(clientID), PaymentInput{
		AssignmentID: assignment.ID,
		Amount:       decimal.NewFromInt(100),
		Currency:     "USD",
		Type:         "escrow",
	})

	assert.True(t, apperror.IsState(err))
}

// Releases stay allowed after completion so finished work can be paid.
func TestPaymentService_Release_CompletedAssignment(t *testing.T) {
	svc, payments, assignments := newPaymentService()
	ctx := context.Background()

	clientID := uuid.New()
	assignment := activeAssignment(clientID, uuid.New())
	assignment.Status = valueobject.AssignmentStatusCompleted

	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)
	payments.On("Create", ctx, mock.AnythingOfType("*models.Payment")).Return(nil)

	payment, err := svc.Create(ctx, clientActor(clientID), PaymentInput{
		AssignmentID: assignment.ID,
		Amount:       decimal.NewFromInt(400),
		Currency:     "USD",
		Type:         "release",
	})

	assert.NoError(t, err)
	assert.Equal(t, valueobject.PaymentTypeRelease, payment.Type)
}

func TestPaymentService_Create_NegativeAmount(t *testing.T) {
	svc, _, _ := newPaymentService()

	_, err := svc.Create(context.Background(), clientActor(uuid.New()), PaymentInput{
		AssignmentID: uuid.New(),
		Amount:       decimal.NewFromInt(-50),
		Currency:     "USD",
		Type:         "escrow",
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestPaymentService_Create_UnknownType(t *testing.T) {
	svc, _, _ := newPaymentService()

	_, err := svc.Create(context.Background(), clientActor(uuid.New()), PaymentInput{
		AssignmentID: uuid.New(),
		Amount:       decimal.NewFromInt(50),
		Currency:     "USD",
		Type:         "refund",
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestPaymentService_ListByAssignment_NotParticipant(t *testing.T) {
	svc, _, assignments := newPaymentService()
	ctx := context.Background()

	assignment := activeAssignment(uuid.New(), uuid.New())
	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)

	_, err := svc.ListByAssignment(ctx, clientActor(uuid.New()), assignment.ID, 20, 0)

	assert.True(t, apperror.IsForbidden(err))
}
