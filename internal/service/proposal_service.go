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

// ProposalRepositoryIface is the storage surface the proposal service
// depends on.
type ProposalRepositoryIface interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	CreateWithPublish(ctx context.Context, proposal *models.Proposal) (*models.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	Accept(ctx context.Context, proposalID uuid.UUID) (*repository.AcceptResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to valueobject.ProposalStatus) (*models.Proposal, error)
	UpdateContent(ctx context.Context, proposal *models.Proposal) error
	ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]models.Proposal, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Proposal, error)
}

// ProjectRepoForProposal is the read surface onto projects the proposal
// service needs.
type ProjectRepoForProposal interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// UserReader resolves invited freelancers.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type ProposalService struct {
	repo     ProposalRepositoryIface
	projects ProjectRepoForProposal
	users    UserReader
}

type ProposalInput struct {
	ProjectID             uuid.UUID
	CoverLetter           string
	BidAmount             decimal.Decimal
	EstimatedDurationDays *int
}

type InviteInput struct {
	ProjectID             uuid.UUID
	FreelancerID          uuid.UUID
	Message               string
	SuggestedBid          *decimal.Decimal
	EstimatedDurationDays *int
}

func NewProposalService(repo ProposalRepositoryIface, projects ProjectRepoForProposal, users UserReader) *ProposalService {
	return &ProposalService{repo: repo, projects: projects, users: users}
}

// Submit files a bid on an open project. A client cannot bid, a freelancer
// cannot bid on their own project, and each freelancer gets one proposal per
// project.
func (s *ProposalService) Submit(ctx context.Context, actor valueobject.Actor, in ProposalInput) (*models.Proposal, error) {
	if !actor.IsFreelancer() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only freelancers can submit proposals")
	}
	if err := valueobject.ValidateAmount(in.BidAmount); err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if project.IsOwnedBy(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "cannot bid on your own project").
			WithDetail("project_id", in.ProjectID)
	}
	if project.Status != valueobject.ProjectStatusOpen {
		return nil, apperror.New(apperror.ErrCodeState, "project is not open for proposals").
			WithDetail("project_id", in.ProjectID).
			WithDetail("status", project.Status)
	}

	proposal := &models.Proposal{
		ID:                    uuid.New(),
		ProjectID:             in.ProjectID,
		FreelancerID:          actor.UserID,
		CoverLetter:           in.CoverLetter,
		BidAmount:             in.BidAmount,
		EstimatedDurationDays: in.EstimatedDurationDays,
		Status:                valueobject.ProposalStatusPending,
	}

	if err := s.repo.Create(ctx, proposal); err != nil {
		if errors.Is(err, repository.ErrDuplicateProposal) {
			return nil, apperror.New(apperror.ErrCodeConflict, "proposal already submitted for this project").
				WithDetail("project_id", in.ProjectID)
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to create proposal")
	}

	logger.Log.WithFields(map[string]interface{}{
		"proposal_id":   proposal.ID,
		"project_id":    in.ProjectID,
		"freelancer_id": actor.UserID,
	}).Info("proposal submitted")

	return proposal, nil
}

// Invite creates a proposal on the freelancer's behalf at the client's
// request. A draft project is published in the same transaction. When no bid
// is suggested the project's minimum budget is used.
func (s *ProposalService) Invite(ctx context.Context, actor valueobject.Actor, in InviteInput) (*models.Proposal, error) {
	if !actor.IsClient() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only clients can invite freelancers")
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsOwnedBy(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "project belongs to another client").
			WithDetail("project_id", in.ProjectID)
	}

	invitee, err := s.users.GetByID(ctx, in.FreelancerID)
	if err != nil {
		return nil, apperror.ErrUserNotFound
	}
	if invitee.Role != valueobject.PartyFreelancer {
		return nil, apperror.New(apperror.ErrCodeValidation, "invited user is not a freelancer").
			WithDetail("user_id", in.FreelancerID)
	}

	bid := in.SuggestedBid
	if bid == nil {
		if !project.BudgetMin.Valid {
			return nil, apperror.New(apperror.ErrCodeValidation, "no suggested bid and project has no minimum budget")
		}
		bid = &project.BudgetMin.Decimal
	}
	if err := valueobject.ValidateAmount(*bid); err != nil {
		return nil, err
	}

	proposal := &models.Proposal{
		ID:                    uuid.New(),
		ProjectID:             in.ProjectID,
		FreelancerID:          in.FreelancerID,
		CoverLetter:           in.Message,
		BidAmount:             *bid,
		EstimatedDurationDays: in.EstimatedDurationDays,
		Status:                valueobject.ProposalStatusPending,
	}

	published, err := s.repo.CreateWithPublish(ctx, proposal)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateProposal):
			return nil, apperror.New(apperror.ErrCodeConflict, "freelancer already has a proposal on this project").
				WithDetail("project_id", in.ProjectID).
				WithDetail("freelancer_id", in.FreelancerID)
		case errors.Is(err, repository.ErrProjectNotOpen):
			return nil, apperror.New(apperror.ErrCodeState, "project is not accepting proposals").
				WithDetail("project_id", in.ProjectID)
		case errors.Is(err, repository.ErrProjectNotFound):
			return nil, apperror.ErrProjectNotFound
		default:
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to create invitation")
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"proposal_id":    proposal.ID,
		"project_id":     in.ProjectID,
		"freelancer_id":  in.FreelancerID,
		"project_status": published.Status,
	}).Info("freelancer invited")

	return proposal, nil
}

// Accept picks the winning proposal. The repository performs the whole step
// atomically: the proposal goes to accepted, every sibling still pending to
// rejected, and the project to in_progress. Losing a race to another accept
// reports a state error because the project has already advanced.
func (s *ProposalService) Accept(ctx context.Context, actor valueobject.Actor, proposalID uuid.UUID) (*repository.AcceptResult, error) {
	proposal, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, apperror.ErrProposalNotFound
	}

	project, err := s.projects.GetByID(ctx, proposal.ProjectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsOwnedBy(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "project belongs to another client").
			WithDetail("project_id", project.ID)
	}

	result, err := s.repo.Accept(ctx, proposalID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProposalNotFound):
			return nil, apperror.ErrProposalNotFound
		case errors.Is(err, repository.ErrProjectNotOpen):
			return nil, apperror.New(apperror.ErrCodeState, "project is no longer open").
				WithDetail("project_id", project.ID)
		case errors.Is(err, repository.ErrProposalNotPending):
			return nil, apperror.New(apperror.ErrCodeState, "proposal is not pending").
				WithDetail("proposal_id", proposalID)
		default:
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to accept proposal")
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"proposal_id": proposalID,
		"project_id":  project.ID,
		"rejected":    result.Rejected,
	}).Info("proposal accepted")

	return result, nil
}

// Reject declines a pending proposal. Client side of the project only.
func (s *ProposalService) Reject(ctx context.Context, actor valueobject.Actor, proposalID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, apperror.ErrProposalNotFound
	}

	project, err := s.projects.GetByID(ctx, proposal.ProjectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsOwnedBy(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "project belongs to another client").
			WithDetail("project_id", project.ID)
	}

	return s.moveStatus(ctx, proposalID, valueobject.ProposalStatusRejected)
}

// Withdraw retracts the freelancer's own pending proposal.
func (s *ProposalService) Withdraw(ctx context.Context, actor valueobject.Actor, proposalID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, apperror.ErrProposalNotFound
	}
	if !proposal.IsOwnedBy(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "proposal belongs to another freelancer").
			WithDetail("proposal_id", proposalID)
	}

	return s.moveStatus(ctx, proposalID, valueobject.ProposalStatusWithdrawn)
}

func (s *ProposalService) moveStatus(ctx context.Context, proposalID uuid.UUID, to valueobject.ProposalStatus) (*models.Proposal, error) {
	updated, err := s.repo.UpdateStatus(ctx, proposalID, to)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProposalNotFound):
			return nil, apperror.ErrProposalNotFound
		case errors.Is(err, repository.ErrProposalNotPending):
			return nil, apperror.New(apperror.ErrCodeState, "proposal is not pending").
				WithDetail("proposal_id", proposalID)
		default:
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to update proposal")
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"proposal_id": proposalID,
		"to":          to,
	}).Info("proposal status changed")

	return updated, nil
}

// Update edits a proposal's content while it is still pending.
func (s *ProposalService) Update(ctx context.Context, actor valueobject.Actor, proposalID uuid.UUID, in ProposalInput) (*models.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, apperror.ErrProposalNotFound
	}
	if !proposal.IsOwnedBy(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "proposal belongs to another freelancer").
			WithDetail("proposal_id", proposalID)
	}
	if proposal.Status != valueobject.ProposalStatusPending {
		return nil, apperror.New(apperror.ErrCodeState, "only pending proposals can be edited").
			WithDetail("proposal_id", proposalID).
			WithDetail("status", proposal.Status)
	}

	if in.CoverLetter != "" {
		proposal.CoverLetter = in.CoverLetter
	}
	if !in.BidAmount.IsZero() {
		if err := valueobject.ValidateAmount(in.BidAmount); err != nil {
			return nil, err
		}
		proposal.BidAmount = in.BidAmount
	}
	if in.EstimatedDurationDays != nil {
		proposal.EstimatedDurationDays = in.EstimatedDurationDays
	}

	if err := s.repo.UpdateContent(ctx, proposal); err != nil {
		if errors.Is(err, repository.ErrProposalNotPending) {
			return nil, apperror.New(apperror.ErrCodeConflict, "proposal left pending concurrently").
				WithDetail("proposal_id", proposalID)
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to update proposal")
	}
	return proposal, nil
}

// Get returns a proposal. Visible to the bidding freelancer and the project
// owner only.
func (s *ProposalService) Get(ctx context.Context, actor valueobject.Actor, proposalID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, apperror.ErrProposalNotFound
	}
	if proposal.IsOwnedBy(actor.UserID) {
		return proposal, nil
	}
	project, err := s.projects.GetByID(ctx, proposal.ProjectID)
	if err != nil || !project.IsOwnedBy(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "not a participant of this proposal").
			WithDetail("proposal_id", proposalID)
	}
	return proposal, nil
}

// ListMine returns the calling freelancer's proposals.
func (s *ProposalService) ListMine(ctx context.Context, actor valueobject.Actor, limit, offset int) ([]models.Proposal, error) {
	limit = clampLimit(limit)
	proposals, err := s.repo.ListByFreelancer(ctx, actor.UserID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to list proposals")
	}
	return proposals, nil
}

// ListForProject returns a project's proposals to its owner.
func (s *ProposalService) ListForProject(ctx context.Context, actor valueobject.Actor, projectID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsOwnedBy(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "project belongs to another client").
			WithDetail("project_id", projectID)
	}

	limit = clampLimit(limit)
	proposals, err := s.repo.ListByProject(ctx, projectID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to list proposals")
	}
	return proposals, nil
}
