package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/pkg/apperror"
	"github.com/gigmarket/backend/internal/repository"
)

func newProposalService() (*ProposalService, *mockProposalRepo, *mockProjectRepo, *mockUserRepo) {
	proposals := new(mockProposalRepo)
	projects := new(mockProjectRepo)
	users := new(mockUserRepo)
	return NewProposalService(proposals, projects, users), proposals, projects, users
}

func openProject(clientID uuid.UUID) *models.Project {
	return &models.Project{
		ID:       uuid.New(),
		ClientID: clientID,
		Title:    "Build a CLI",
		Currency: "USD",
		Status:   valueobject.ProjectStatusOpen,
	}
}

func TestProposalService_Submit_Success(t *testing.T) {
	svc, proposals, projects, _ := newProposalService()
	ctx := context.Background()

	clientID := uuid.New()
	freelancerID := uuid.New()
	project := openProject(clientID)

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	proposals.On("Create", ctx, mock.AnythingOfType("*models.Proposal")).Return(nil)

	proposal, err := svc.Submit(ctx, freelancerActor(freelancerID), ProposalInput{
		ProjectID:   project.ID,
		CoverLetter: "I can do this",
		BidAmount:   decimal.NewFromInt(500),
	})

	assert.NoError(t, err)
	assert.Equal(t, valueobject.ProposalStatusPending, proposal.Status)
	assert.Equal(t, freelancerID, proposal.FreelancerID)
}

func TestProposalService_Submit_ClientForbidden(t *testing.T) {
	svc, _, _, _ := newProposalService()

	_, err := svc.Submit(context.Background(), clientActor(uuid.New()), ProposalInput{
		ProjectID: uuid.New(),
		BidAmount: decimal.NewFromInt(500),
	})

	assert.True(t, apperror.IsForbidden(err))
}

func TestProposalService_Submit_OwnProject(t *testing.T) {
	svc, _, projects, _ := newProposalService()
	ctx := context.Background()

	ownerID := uuid.New()
	project := openProject(ownerID)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.Submit(ctx, freelancerActor(ownerID), ProposalInput{
		ProjectID: project.ID,
		BidAmount: decimal.NewFromInt(500),
	})

	assert.True(t, apperror.IsForbidden(err))
}

func TestProposalService_Submit_ProjectNotOpen(t *testing.T) {
	svc, _, projects, _ := newProposalService()
	ctx := context.Background()

	project := openProject(uuid.New())
	project.Status = valueobject.ProjectStatusInProgress
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.Submit(ctx, freelancerActor(uuid.New()), ProposalInput{
		ProjectID: project.ID,
		BidAmount: decimal.NewFromInt(500),
	})

	assert.True(t, apperror.IsState(err))
}

func TestProposalService_Submit_Duplicate(t *testing.T) {
	svc, proposals, projects, _ := newProposalService()
	ctx := context.Background()

	project := openProject(uuid.New())
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	proposals.On("Create", ctx, mock.AnythingOfType("*models.Proposal")).
		Return(repository.ErrDuplicateProposal)

	_, err := svc.Submit(ctx, freelancerActor(uuid.New()), ProposalInput{
		ProjectID: project.ID,
		BidAmount: decimal.NewFromInt(500),
	})

	assert.True(t, apperror.IsConflict(err))
}

func TestProposalService_Submit_FractionalCentBid(t *testing.T) {
	svc, _, _, _ := newProposalService()

	_, err := svc.Submit(context.Background(), freelancerActor(uuid.New()), ProposalInput{
		ProjectID: uuid.New(),
		BidAmount: decimal.RequireFromString("100.555"),
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestProposalService_Accept_SweepsSiblings(t *testing.T) {
	svc, proposals, projects, _ := newProposalService()
	ctx := context.Background()

	clientID := uuid.New()
	project := openProject(clientID)
	proposal := &models.Proposal{
		ID:           uuid.New(),
		ProjectID:    project.ID,
		FreelancerID: uuid.New(),
		Status:       valueobject.ProposalStatusPending,
	}

	accepted := *proposal
	accepted.Status = valueobject.ProposalStatusAccepted
	advanced := *project
	advanced.Status = valueobject.ProjectStatusInProgress

	proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	proposals.On("Accept", ctx, proposal.ID).Return(&repository.AcceptResult{
		Proposal: &accepted,
		Project:  &advanced,
		Rejected: 2,
	}, nil)

	result, err := svc.Accept(ctx, clientActor(clientID), proposal.ID)

	assert.NoError(t, err)
	assert.Equal(t, valueobject.ProposalStatusAccepted, result.Proposal.Status)
	assert.Equal(t, valueobject.ProjectStatusInProgress, result.Project.Status)
	assert.Equal(t, int64(2), result.Rejected)
}

func TestProposalService_Accept_NotOwner(t *testing.T) {
	svc, proposals, projects, _ := newProposalService()
	ctx := context.Background()

	project := openProject(uuid.New())
	proposal := &models.Proposal{ID: uuid.New(), ProjectID: project.ID, Status: valueobject.ProposalStatusPending}

	proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.Accept(ctx, clientActor(uuid.New()), proposal.ID)

	assert.True(t, apperror.IsForbidden(err))
}

// Losing a second accept: the first winner advanced the project, so the
// repository reports the project no longer open and the caller gets a state
// error, not a silent overwrite.
func TestProposalService_Accept_AfterProjectAdvanced(t *testing.T) {
	svc, proposals, projects, _ := newProposalService()
	ctx := context.Background()

	clientID := uuid.New()
	project := openProject(clientID)
	proposal := &models.Proposal{ID: uuid.New(), ProjectID: project.ID, Status: valueobject.ProposalStatusPending}

	proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	proposals.On("Accept", ctx, proposal.ID).Return(nil, repository.ErrProjectNotOpen)

	_, err := svc.Accept(ctx, clientActor(clientID), proposal.ID)

	assert.True(t, apperror.IsState(err))
}

func TestProposalService_Withdraw_NotOwner(t *testing.T) {
	svc, proposals, _, _ := newProposalService()
	ctx := context.Background()

	proposal := &models.Proposal{
		ID:           uuid.New(),
		FreelancerID: uuid.New(),
		Status:       valueobject.ProposalStatusPending,
	}
	proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)

	_, err := svc.Withdraw(ctx, freelancerActor(uuid.New()), proposal.ID)

	assert.True(t, apperror.IsForbidden(err))
}

func TestProposalService_Withdraw_Terminal(t *testing.T) {
	svc, proposals, _, _ := newProposalService()
	ctx := context.Background()

	freelancerID := uuid.New()
	proposal := &models.Proposal{
		ID:           uuid.New(),
		FreelancerID: freelancerID,
		Status:       valueobject.ProposalStatusRejected,
	}
	proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	proposals.On("UpdateStatus", ctx, proposal.ID, valueobject.ProposalStatusWithdrawn).
		Return(nil, repository.ErrProposalNotPending)

	_, err := svc.Withdraw(ctx, freelancerActor(freelancerID), proposal.ID)

	assert.True(t, apperror.IsState(err))
}

func TestProposalService_Invite_DefaultsToBudgetMin(t *testing.T) {
	svc, proposals, projects, users := newProposalService()
	ctx := context.Background()

	clientID := uuid.New()
	freelancerID := uuid.New()
	project := openProject(clientID)
	project.Status = valueobject.ProjectStatusDraft
	project.BudgetMin = decimal.NullDecimal{Decimal: decimal.NewFromInt(300), Valid: true}

	published := *project
	published.Status = valueobject.ProjectStatusOpen

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	users.On("GetByID", ctx, freelancerID).Return(&models.User{
		ID:   freelancerID,
		Role: valueobject.PartyFreelancer,
	}, nil)
	proposals.On("CreateWithPublish", ctx, mock.AnythingOfType("*models.Proposal")).
		Return(&published, nil)

	proposal, err := svc.Invite(ctx, clientActor(clientID), InviteInput{
		ProjectID:    project.ID,
		FreelancerID: freelancerID,
		Message:      "interested?",
	})

	assert.NoError(t, err)
	assert.True(t, proposal.BidAmount.Equal(decimal.NewFromInt(300)))
}

func TestProposalService_Invite_NonFreelancer(t *testing.T) {
	svc, _, projects, users := newProposalService()
	ctx := context.Background()

	clientID := uuid.New()
	otherClientID := uuid.New()
	project := openProject(clientID)

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	users.On("GetByID", ctx, otherClientID).Return(&models.User{
		ID:   otherClientID,
		Role: valueobject.PartyClient,
	}, nil)

	_, err := svc.Invite(ctx, clientActor(clientID), InviteInput{
		ProjectID:    project.ID,
		FreelancerID: otherClientID,
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestProposalService_Update_NotPending(t *testing.T) {
	svc, proposals, _, _ := newProposalService()
	ctx := context.Background()

	freelancerID := uuid.New()
	proposal := &models.Proposal{
		ID:           uuid.New(),
		FreelancerID: freelancerID,
		Status:       valueobject.ProposalStatusAccepted,
	}
	proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)

	_, err := svc.Update(ctx, freelancerActor(freelancerID), proposal.ID, ProposalInput{CoverLetter: "updated"})

	assert.True(t, apperror.IsState(err))
}

func TestProposalService_ListForProject_NotOwner(t *testing.T) {
	svc, _, projects, _ := newProposalService()
	ctx := context.Background()

	project := openProject(uuid.New())
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.ListForProject(ctx, clientActor(uuid.New()), project.ID, 20, 0)

	assert.True(t, apperror.IsForbidden(err))
}
