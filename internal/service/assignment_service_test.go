package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/pkg/apperror"
	"github.com/gigmarket/backend/internal/repository"
)

func newAssignmentService() (*AssignmentService, *mockAssignmentRepo, *mockProposalRepo, *mockProjectRepo) {
	assignments := new(mockAssignmentRepo)
	proposals := new(mockProposalRepo)
	projects := new(mockProjectRepo)
	return NewAssignmentService(assignments, proposals, projects), assignments, proposals, projects
}

func acceptedProposal(projectID, freelancerID uuid.UUID) *models.Proposal {
	return &models.Proposal{
		ID:           uuid.New(),
		ProjectID:    projectID,
		FreelancerID: freelancerID,
		Status:       valueobject.ProposalStatusAccepted,
	}
}

func activeAssignment(clientID, freelancerID uuid.UUID) *models.Assignment {
	return &models.Assignment{
		ID:           uuid.New(),
		ProjectID:    uuid.New(),
		ProposalID:   uuid.New(),
		ClientID:     clientID,
		FreelancerID: freelancerID,
		StartDate:    time.Now().UTC().AddDate(0, 0, 1),
		Status:       valueobject.AssignmentStatusActive,
	}
}

func TestAssignmentService_Create_Success(t *testing.T) {
	svc, assignments, proposals, projects := newAssignmentService()
	ctx := context.Background()

	clientID := uuid.New()
	freelancerID := uuid.New()
	project := &models.Project{ID: uuid.New(), ClientID: clientID, Status: valueobject.ProjectStatusInProgress}
	proposal := acceptedProposal(project.ID, freelancerID)

	proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	assignments.On("Create", ctx, mock.AnythingOfType("*models.Assignment")).Return(nil)

	assignment, err := svc.Create(ctx, clientActor(clientID), AssignmentInput{
		ProposalID: proposal.ID,
		StartDate:  time.Now().UTC().AddDate(0, 0, 3),
	})

	assert.NoError(t, err)
	assert.Equal(t, valueobject.AssignmentStatusActive, assignment.Status)
	assert.Equal(t, clientID, assignment.ClientID)
	assert.Equal(t, freelancerID, assignment.FreelancerID)
}

func TestAssignmentService_Create_ProposalNotAccepted(t *testing.T) {
	svc, _, proposals, _ := newAssignmentService()
	ctx := context.Background()

	proposal := acceptedProposal(uuid.New(), uuid.New())
	proposal.Status = valueobject.ProposalStatusPending
	proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)

	_, err := svc.Create(ctx, clientActor(uuid.New()), AssignmentInput{
		ProposalID: proposal.ID,
		StartDate:  time.Now().UTC().AddDate(0, 0, 1),
	})

	assert.True(t, apperror.IsState(err))
}

func TestAssignmentService_Create_Duplicate(t *testing.T) {
	svc, assignments, proposals, projects := newAssignmentService()
	ctx := context.Background()

	clientID := uuid.New()
	project := &models.Project{ID: uuid.New(), ClientID: clientID, Status: valueobject.ProjectStatusInProgress}
	proposal := acceptedProposal(project.ID, uuid.New())

	proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	assignments.On("Create", ctx, mock.AnythingOfType("*models.Assignment")).
		Return(repository.ErrDuplicateAssignment)

	_, err := svc.Create(ctx, clientActor(clientID), AssignmentInput{
		ProposalID: proposal.ID,
		StartDate:  time.Now().UTC().AddDate(0, 0, 1),
	})

	assert.True(t, apperror.IsConflict(err))
}

func TestAssignmentService_Create_PastStartDate(t *testing.T) {
	svc, _, proposals, projects := newAssignmentService()
	ctx := context.Background()

	clientID := uuid.New()
	project := &models.Project{ID: uuid.New(), ClientID: clientID, Status: valueobject.ProjectStatusInProgress}
	proposal := acceptedProposal(project.ID, uuid.New())

	proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.Create(ctx, clientActor(clientID), AssignmentInput{
		ProposalID: proposal.ID,
		StartDate:  time.Now().UTC().AddDate(0, 0, -2),
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestAssignmentService_Create_EndBeforeStart(t *testing.T) {
	svc, _, proposals, projects := newAssignmentService()
	ctx := context.Background()

	clientID := uuid.New()
	project := &models.Project{ID: uuid.New(), ClientID: clientID, Status: valueobject.ProjectStatusInProgress}
	proposal := acceptedProposal(project.ID, uuid.New())

	proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	start := time.Now().UTC().AddDate(0, 0, 10)
	end := start.AddDate(0, 0, -3)
	_, err := svc.Create(ctx, clientActor(clientID), AssignmentInput{
		ProposalID: proposal.ID,
		StartDate:  start,
		EndDate:    &end,
	})

	assert.True(t, apperror.IsValidation(err))
}

// A single-day engagement ends the day it starts; end == start is a valid
// schedule.
func TestAssignmentService_Create_SameDayEnd(t *testing.T) {
	svc, assignments, proposals, projects := newAssignmentService()
	ctx := context.Background()

	clientID := uuid.New()
	project := &models.Project{ID: uuid.New(), ClientID: clientID, Status: valueobject.ProjectStatusInProgress}
	proposal := acceptedProposal(project.ID, uuid.New())

	proposals.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	assignments.On("Create", ctx, mock.AnythingOfType("*models.Assignment")).Return(nil)

	start := time.Now().UTC().AddDate(0, 0, 5)
	end := start
	assignment, err := svc.Create(ctx, clientActor(clientID), AssignmentInput{
		ProposalID: proposal.ID,
		StartDate:  start,
		EndDate:    &end,
	})

	assert.NoError(t, err)
	assert.True(t, assignment.EndDate.Equal(assignment.StartDate))
}

// Rescheduling only the end date must not trip the past-date rule on an
// assignment whose work already started.
func TestAssignmentService_UpdateDates_KeepsStartedDate(t *testing.T) {
	svc, assignments, _, _ := newAssignmentService()
	ctx := context.Background()

	clientID := uuid.New()
	assignment := activeAssignment(clientID, uuid.New())
	assignment.StartDate = time.Now().UTC().AddDate(0, 0, -30)

	newEnd := time.Now().UTC().AddDate(0, 0, 14)
	updated := *assignment
	updated.EndDate = &newEnd

	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)
	assignments.On("UpdateDates", ctx, assignment.ID, assignment.StartDate, &newEnd).
		Return(&updated, nil)

	got, err := svc.UpdateDates(ctx, clientActor(clientID), assignment.ID, AssignmentDatesInput{EndDate: &newEnd})

	assert.NoError(t, err)
	assert.Equal(t, newEnd, *got.EndDate)
}

func TestAssignmentService_UpdateDates_NewPastStart(t *testing.T) {
	svc, assignments, _, _ := newAssignmentService()
	ctx := context.Background()

	clientID := uuid.New()
	assignment := activeAssignment(clientID, uuid.New())
	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)

	past := time.Now().UTC().AddDate(0, 0, -5)
	_, err := svc.UpdateDates(ctx, clientActor(clientID), assignment.ID, AssignmentDatesInput{StartDate: &past})

	assert.True(t, apperror.IsValidation(err))
}

func TestAssignmentService_UpdateDates_SameDayEnd(t *testing.T) {
	svc, assignments, _, _ := newAssignmentService()
	ctx := context.Background()

	clientID := uuid.New()
	assignment := activeAssignment(clientID, uuid.New())

	sameDay := assignment.StartDate
	updated := *assignment
	updated.EndDate = &sameDay

	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)
	assignments.On("UpdateDates", ctx, assignment.ID, assignment.StartDate, &sameDay).
		Return(&updated, nil)

	got, err := svc.UpdateDates(ctx, clientActor(clientID), assignment.ID, AssignmentDatesInput{EndDate: &sameDay})

	assert.NoError(t, err)
	assert.True(t, got.EndDate.Equal(got.StartDate))
}

func TestAssignmentService_Complete_ByFreelancer(t *testing.T) {
	svc, assignments, _, _ := newAssignmentService()
	ctx := context.Background()

	freelancerID := uuid.New()
	assignment := activeAssignment(uuid.New(), freelancerID)
	completed := *assignment
	completed.Status = valueobject.AssignmentStatusCompleted

	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)
	assignments.On("UpdateStatus", ctx, assignment.ID, valueobject.AssignmentStatusCompleted).
		Return(&completed, nil)

	got, err := svc.Complete(ctx, freelancerActor(freelancerID), assignment.ID)

	assert.NoError(t, err)
	assert.Equal(t, valueobject.AssignmentStatusCompleted, got.Status)
}

func TestAssignmentService_Cancel_FreelancerForbidden(t *testing.T) {
	svc, assignments, _, _ := newAssignmentService()
	ctx := context.Background()

	freelancerID := uuid.New()
	assignment := activeAssignment(uuid.New(), freelancerID)
	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)

	_, err := svc.Cancel(ctx, freelancerActor(freelancerID), assignment.ID)

	assert.True(t, apperror.IsForbidden(err))
}

func TestAssignmentService_Complete_AlreadyFinished(t *testing.T) {
	svc, assignments, _, _ := newAssignmentService()
	ctx := context.Background()

	clientID := uuid.New()
	assignment := activeAssignment(clientID, uuid.New())

	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)
	assignments.On("UpdateStatus", ctx, assignment.ID, valueobject.AssignmentStatusCompleted).
		Return(nil, repository.ErrAssignmentNotActive)

	_, err := svc.Complete(ctx, clientActor(clientID), assignment.ID)

	assert.True(t, apperror.IsState(err))
}

func TestAssignmentService_Get_NotParticipant(t *testing.T) {
	svc, assignments, _, _ := newAssignmentService()
	ctx := context.Background()

	assignment := activeAssignment(uuid.New(), uuid.New())
	assignments.On("GetByID", ctx, assignment.ID).Return(assignment, nil)

	_, err := svc.Get(ctx, clientActor(uuid.New()), assignment.ID)

	assert.True(t, apperror.IsForbidden(err))
}
