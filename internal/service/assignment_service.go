package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/logger"
	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/pkg/apperror"
	"github.com/gigmarket/backend/internal/repository"
)

// AssignmentRepositoryIface is the storage surface the assignment service
// depends on.
type AssignmentRepositoryIface interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	GetByProjectID(ctx context.Context, projectID uuid.UUID) (*models.Assignment, error)
	UpdateDates(ctx context.Context, id uuid.UUID, startDate time.Time, endDate *time.Time) (*models.Assignment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to valueobject.AssignmentStatus) (*models.Assignment, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Assignment, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Assignment, error)
}

// ProposalRepoForAssignment is the read surface onto proposals the
// assignment service needs.
type ProposalRepoForAssignment interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
}

type AssignmentService struct {
	repo      AssignmentRepositoryIface
	proposals ProposalRepoForAssignment
	projects  ProjectRepoForProposal
}

type AssignmentInput struct {
	ProposalID uuid.UUID
	StartDate  time.Time
	EndDate    *time.Time
}

type AssignmentDatesInput struct {
	StartDate *time.Time
	EndDate   *time.Time
}

func NewAssignmentService(repo AssignmentRepositoryIface, proposals ProposalRepoForAssignment, projects ProjectRepoForProposal) *AssignmentService {
	return &AssignmentService{repo: repo, proposals: proposals, projects: projects}
}

// Create turns an accepted proposal into an active assignment. Uniqueness
// holds on both the project and the proposal; the database indexes arbitrate
// concurrent creates.
func (s *AssignmentService) Create(ctx context.Context, actor valueobject.Actor, in AssignmentInput) (*models.Assignment, error) {
	proposal, err := s.proposals.GetByID(ctx, in.ProposalID)
	if err != nil {
		return nil, apperror.ErrProposalNotFound
	}
	if proposal.Status != valueobject.ProposalStatusAccepted {
		return nil, apperror.New(apperror.ErrCodeState, "assignment requires an accepted proposal").
			WithDetail("proposal_id", in.ProposalID).
			WithDetail("status", proposal.Status)
	}

	project, err := s.projects.GetByID(ctx, proposal.ProjectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsOwnedBy(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "project belongs to another client").
			WithDetail("project_id", project.ID)
	}

	if err := validateDates(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		ID:           uuid.New(),
		ProjectID:    proposal.ProjectID,
		ProposalID:   proposal.ID,
		ClientID:     project.ClientID,
		FreelancerID: proposal.FreelancerID,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       valueobject.AssignmentStatusActive,
	}

	if err := s.repo.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicateAssignment) {
			return nil, apperror.New(apperror.ErrCodeConflict, "assignment already exists for this project or proposal").
				WithDetail("project_id", proposal.ProjectID).
				WithDetail("proposal_id", proposal.ID)
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to create assignment")
	}

	logger.Log.WithFields(map[string]interface{}{
		"assignment_id": assignment.ID,
		"project_id":    proposal.ProjectID,
		"proposal_id":   proposal.ID,
		"freelancer_id": proposal.FreelancerID,
	}).Info("assignment created")

	return assignment, nil
}

// UpdateDates reschedules an active assignment. The effective start date is
// the existing one when not supplied; a changed start date must not lie in
// the past, but keeping the original one is always valid.
func (s *AssignmentService) UpdateDates(ctx context.Context, actor valueobject.Actor, id uuid.UUID, in AssignmentDatesInput) (*models.Assignment, error) {
	assignment, err := s.getParticipating(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if assignment.ClientID != actor.UserID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the client can reschedule the assignment").
			WithDetail("assignment_id", id)
	}

	startDate := assignment.StartDate
	if in.StartDate != nil {
		startDate = *in.StartDate
		if !startDate.Equal(assignment.StartDate) && startDate.Before(today()) {
			return nil, apperror.New(apperror.ErrCodeValidation, "start date cannot be in the past").
				WithDetail("start_date", startDate.Format("2006-01-02"))
		}
	}
	endDate := assignment.EndDate
	if in.EndDate != nil {
		endDate = in.EndDate
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, apperror.New(apperror.ErrCodeValidation, "end date cannot be before start date").
			WithDetail("start_date", startDate.Format("2006-01-02")).
			WithDetail("end_date", endDate.Format("2006-01-02"))
	}

	updated, err := s.repo.UpdateDates(ctx, id, startDate, endDate)
	if err != nil {
		return nil, s.mapWriteErr(err, id)
	}
	return updated, nil
}

// Complete closes an active assignment as done. Either participant may
// complete.
func (s *AssignmentService) Complete(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Assignment, error) {
	if _, err := s.getParticipating(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.moveStatus(ctx, actor, id, valueobject.AssignmentStatusCompleted)
}

// Cancel aborts an active assignment. Client only.
func (s *AssignmentService) Cancel(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Assignment, error) {
	assignment, err := s.getParticipating(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if assignment.ClientID != actor.UserID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the client can cancel the assignment").
			WithDetail("assignment_id", id)
	}
	return s.moveStatus(ctx, actor, id, valueobject.AssignmentStatusCancelled)
}

func (s *AssignmentService) moveStatus(ctx context.Context, actor valueobject.Actor, id uuid.UUID, to valueobject.AssignmentStatus) (*models.Assignment, error) {
	updated, err := s.repo.UpdateStatus(ctx, id, to)
	if err != nil {
		return nil, s.mapWriteErr(err, id)
	}

	logger.Log.WithFields(map[string]interface{}{
		"assignment_id": id,
		"to":            to,
		"actor_id":      actor.UserID,
	}).Info("assignment status changed")

	return updated, nil
}

// Get returns an assignment to its participants.
func (s *AssignmentService) Get(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Assignment, error) {
	return s.getParticipating(ctx, actor, id)
}

// GetByProject returns the project's assignment to its participants.
func (s *AssignmentService) GetByProject(ctx context.Context, actor valueobject.Actor, projectID uuid.UUID) (*models.Assignment, error) {
	assignment, err := s.repo.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, apperror.ErrAssignmentNotFound
	}
	if !assignment.IsParticipant(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "not a participant of this assignment").
			WithDetail("assignment_id", assignment.ID)
	}
	return assignment, nil
}

// ListMine returns the caller's assignments for whichever side they act on.
func (s *AssignmentService) ListMine(ctx context.Context, actor valueobject.Actor, limit, offset int) ([]models.Assignment, error) {
	limit = clampLimit(limit)
	var (
		assignments []models.Assignment
		err         error
	)
	if actor.IsClient() {
		assignments, err = s.repo.ListByClient(ctx, actor.UserID, limit, offset)
	} else {
		assignments, err = s.repo.ListByFreelancer(ctx, actor.UserID, limit, offset)
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to list assignments")
	}
	return assignments, nil
}

func (s *AssignmentService) getParticipating(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Assignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrAssignmentNotFound
	}
	if !assignment.IsParticipant(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "not a participant of this assignment").
			WithDetail("assignment_id", id)
	}
	return assignment, nil
}

func (s *AssignmentService) mapWriteErr(err error, id uuid.UUID) error {
	switch {
	case errors.Is(err, repository.ErrAssignmentNotFound):
		return apperror.ErrAssignmentNotFound
	case errors.Is(err, repository.ErrAssignmentNotActive):
		return apperror.New(apperror.ErrCodeState, "assignment is not active").
			WithDetail("assignment_id", id)
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to update assignment")
	}
}

func validateDates(startDate time.Time, endDate *time.Time) error {
	if startDate.IsZero() {
		return apperror.New(apperror.ErrCodeValidation, "start date is required")
	}
	if startDate.Before(today()) {
		return apperror.New(apperror.ErrCodeValidation, "start date cannot be in the past").
			WithDetail("start_date", startDate.Format("2006-01-02"))
	}
	if endDate != nil && endDate.Before(startDate) {
		return apperror.New(apperror.ErrCodeValidation, "end date cannot be before start date").
			WithDetail("start_date", startDate.Format("2006-01-02")).
			WithDetail("end_date", endDate.Format("2006-01-02"))
	}
	return nil
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
