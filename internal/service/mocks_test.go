package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockProjectRepo) Update(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *mockProjectRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.ProjectStatus) (*models.Project, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProjectRepo) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Project, error) {
	args := m.Called(ctx, clientID, limit, offset)
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *mockProjectRepo) ListOpen(ctx context.Context, limit, offset int) ([]models.Project, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Project), args.Error(1)
}

type mockProposalRepo struct {
	mock.Mock
}

func (m *mockProposalRepo) Create(ctx context.Context, proposal *models.Proposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *mockProposalRepo) CreateWithPublish(ctx context.Context, proposal *models.Proposal) (*models.Project, error) {
	args := m.Called(ctx, proposal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) Accept(ctx context.Context, proposalID uuid.UUID) (*repository.AcceptResult, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.AcceptResult), args.Error(1)
}

func (m *mockProposalRepo) UpdateStatus(ctx context.Context, id uuid.UUID, to valueobject.ProposalStatus) (*models.Proposal, error) {
	args := m.Called(ctx, id, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) UpdateContent(ctx context.Context, proposal *models.Proposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *mockProposalRepo) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	args := m.Called(ctx, projectID, limit, offset)
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	args := m.Called(ctx, freelancerID, limit, offset)
	return args.Get(0).([]models.Proposal), args.Error(1)
}

type mockAssignmentRepo struct {
	mock.Mock
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *mockAssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) GetByProjectID(ctx context.Context, projectID uuid.UUID) (*models.Assignment, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) UpdateDates(ctx context.Context, id uuid.UUID, startDate time.Time, endDate *time.Time) (*models.Assignment, error) {
	args := m.Called(ctx, id, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, to valueobject.AssignmentStatus) (*models.Assignment, error) {
	args := m.Called(ctx, id, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Assignment, error) {
	args := m.Called(ctx, freelancerID, limit, offset)
	return args.Get(0).([]models.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Assignment, error) {
	args := m.Called(ctx, clientID, limit, offset)
	return args.Get(0).([]models.Assignment), args.Error(1)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ListByAssignment(ctx context.Context, assignmentID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	args := m.Called(ctx, assignmentID, limit, offset)
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	args := m.Called(ctx, freelancerID, limit, offset)
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	args := m.Called(ctx, clientID, limit, offset)
	return args.Get(0).([]models.Payment), args.Error(1)
}

type mockPayoutRepo struct {
	mock.Mock
}

func (m *mockPayoutRepo) Create(ctx context.Context, payout *models.Payout) error {
	args := m.Called(ctx, payout)
	return args.Error(0)
}

func (m *mockPayoutRepo) AvailableBalance(ctx context.Context, freelancerID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, freelancerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockPayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Payout, error) {
	args := m.Called(ctx, freelancerID, limit, offset)
	return args.Get(0).([]models.Payout), args.Error(1)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) (decimal.Decimal, error) {
	args := m.Called(ctx, review)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByTarget(ctx context.Context, targetID uuid.UUID, limit, offset int) ([]models.Review, error) {
	args := m.Called(ctx, targetID, limit, offset)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Review, error) {
	args := m.Called(ctx, assignmentID)
	return args.Get(0).([]models.Review), args.Error(1)
}

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *mockTaskRepo) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Task, error) {
	args := m.Called(ctx, assignmentID)
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *mockTaskRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Task, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func clientActor(id uuid.UUID) valueobject.Actor {
	return valueobject.Actor{UserID: id, Party: valueobject.PartyClient}
}

func freelancerActor(id uuid.UUID) valueobject.Actor {
	return valueobject.Actor{UserID: id, Party: valueobject.PartyFreelancer}
}
