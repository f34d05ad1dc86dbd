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
	"github.com/shopspring/decimal"
)

// ProjectRepository is the storage surface the project service depends on.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.ProjectStatus) (*models.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Project, error)
	ListOpen(ctx context.Context, limit, offset int) ([]models.Project, error)
}

type ProjectService struct {
	repo ProjectRepository
}

type ProjectInput struct {
	Title       string
	Description string
	BudgetMin   *decimal.Decimal
	BudgetMax   *decimal.Decimal
	Currency    string
	Deadline    *time.Time
}

func NewProjectService(repo ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

// Create posts a new draft project owned by the calling client.
func (s *ProjectService) Create(ctx context.Context, actor valueobject.Actor, in ProjectInput) (*models.Project, error) {
	if !actor.IsClient() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only clients can create projects")
	}
	if in.Title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "title is required")
	}

	budget, err := valueobject.NewBudget(in.BudgetMin, in.BudgetMax)
	if err != nil {
		return nil, err
	}
	currency, err := valueobject.NormalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		ID:          uuid.New(),
		ClientID:    actor.UserID,
		Title:       in.Title,
		Description: in.Description,
		BudgetMin:   budget.NullMin(),
		BudgetMax:   budget.NullMax(),
		Currency:    currency,
		Status:      valueobject.ProjectStatusDraft,
		Deadline:    in.Deadline,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to create project")
	}

	logger.Log.WithFields(map[string]interface{}{
		"project_id": project.ID,
		"client_id":  actor.UserID,
	}).Info("project created")

	return project, nil
}

// Publish moves a draft project to open so freelancers can bid.
func (s *ProjectService) Publish(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Project, error) {
	project, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, valueobject.ProjectStatusDraft, valueobject.ProjectStatusOpen)
	if err != nil {
		return nil, s.mapStatusErr(err, project, valueobject.ProjectStatusDraft)
	}

	logger.Log.WithFields(map[string]interface{}{
		"project_id": id,
		"from":       valueobject.ProjectStatusDraft,
		"to":         valueobject.ProjectStatusOpen,
	}).Info("project published")

	return updated, nil
}

// Complete finishes an in-progress project.
func (s *ProjectService) Complete(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Project, error) {
	return s.transition(ctx, actor, id, valueobject.ProjectStatusInProgress, valueobject.ProjectStatusCompleted)
}

// Cancel abandons an in-progress project.
func (s *ProjectService) Cancel(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Project, error) {
	return s.transition(ctx, actor, id, valueobject.ProjectStatusInProgress, valueobject.ProjectStatusCancelled)
}

// Close retires a project that never went into work. Allowed from draft or
// open.
func (s *ProjectService) Close(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Project, error) {
	project, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if project.Status != valueobject.ProjectStatusDraft && project.Status != valueobject.ProjectStatusOpen {
		return nil, apperror.New(apperror.ErrCodeState, "project cannot be closed").
			WithDetail("project_id", id).
			WithDetail("status", project.Status)
	}
	return s.transition(ctx, actor, id, project.Status, valueobject.ProjectStatusClosed)
}

func (s *ProjectService) transition(ctx context.Context, actor valueobject.Actor, id uuid.UUID, from, to valueobject.ProjectStatus) (*models.Project, error) {
	project, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !from.CanTransitionTo(to) {
		return nil, apperror.New(apperror.ErrCodeState, "invalid project transition").
			WithDetail("from", from).WithDetail("to", to)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return nil, s.mapStatusErr(err, project, from)
	}

	logger.Log.WithFields(map[string]interface{}{
		"project_id": id,
		"from":       from,
		"to":         to,
		"actor_id":   actor.UserID,
	}).Info("project status changed")

	return updated, nil
}

// Update edits a project's content. Finalized projects are immutable; the
// repository refuses the write once the status is completed or cancelled.
func (s *ProjectService) Update(ctx context.Context, actor valueobject.Actor, id uuid.UUID, in ProjectInput) (*models.Project, error) {
	project, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if project.Status.IsFinalized() {
		return nil, apperror.New(apperror.ErrCodeState, "finalized project cannot be updated").
			WithDetail("project_id", id).
			WithDetail("status", project.Status)
	}

	if in.Title != "" {
		project.Title = in.Title
	}
	if in.Description != "" {
		project.Description = in.Description
	}
	if in.BudgetMin != nil || in.BudgetMax != nil {
		budget, err := valueobject.NewBudget(in.BudgetMin, in.BudgetMax)
		if err != nil {
			return nil, err
		}
		project.BudgetMin = budget.NullMin()
		project.BudgetMax = budget.NullMax()
	}
	if in.Currency != "" {
		currency, err := valueobject.NormalizeCurrency(in.Currency)
		if err != nil {
			return nil, err
		}
		project.Currency = currency
	}
	if in.Deadline != nil {
		project.Deadline = in.Deadline
	}

	if err := s.repo.Update(ctx, project); err != nil {
		if errors.Is(err, repository.ErrProjectWrongStatus) {
			return nil, apperror.New(apperror.ErrCodeConflict, "project was finalized concurrently").
				WithDetail("project_id", id)
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to update project")
	}
	return project, nil
}

// Delete removes a draft project that no one has bid on.
func (s *ProjectService) Delete(ctx context.Context, actor valueobject.Actor, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, actor, id); err != nil {
		return err
	}

	err := s.repo.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrProjectNotFound):
		return apperror.ErrProjectNotFound
	case errors.Is(err, repository.ErrProjectWrongStatus):
		return apperror.New(apperror.ErrCodeState, "only draft projects can be deleted").
			WithDetail("project_id", id)
	case errors.Is(err, repository.ErrProjectHasProposals):
		return apperror.New(apperror.ErrCodeState, "project with proposals cannot be deleted").
			WithDetail("project_id", id)
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to delete project")
	}
}

// Get returns a project by id. Draft projects are visible to their owner
// only.
func (s *ProjectService) Get(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if project.Status == valueobject.ProjectStatusDraft && !project.IsOwnedBy(actor.UserID) {
		return nil, apperror.ErrProjectNotFound
	}
	return project, nil
}

// ListMine returns the calling client's projects.
func (s *ProjectService) ListMine(ctx context.Context, actor valueobject.Actor, limit, offset int) ([]models.Project, error) {
	limit = clampLimit(limit)
	projects, err := s.repo.ListByClient(ctx, actor.UserID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to list projects")
	}
	return projects, nil
}

// ListOpen returns open projects for browsing.
func (s *ProjectService) ListOpen(ctx context.Context, limit, offset int) ([]models.Project, error) {
	limit = clampLimit(limit)
	projects, err := s.repo.ListOpen(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to list open projects")
	}
	return projects, nil
}

func (s *ProjectService) getOwned(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsOwnedBy(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "project belongs to another client").
			WithDetail("project_id", id)
	}
	return project, nil
}

func (s *ProjectService) mapStatusErr(err error, project *models.Project, required valueobject.ProjectStatus) error {
	switch {
	case errors.Is(err, repository.ErrProjectNotFound):
		return apperror.ErrProjectNotFound
	case errors.Is(err, repository.ErrProjectWrongStatus):
		return apperror.New(apperror.ErrCodeState, "project is not in the required status").
			WithDetail("project_id", project.ID).
			WithDetail("required", required)
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to update project status")
	}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
