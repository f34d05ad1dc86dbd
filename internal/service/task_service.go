package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/pkg/apperror"
	"github.com/gigmarket/backend/internal/repository"
)

// TaskRepositoryIface is the storage surface the task service depends on.
type TaskRepositoryIface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Task, error)
}

type TaskService struct {
	repo        TaskRepositoryIface
	assignments AssignmentRepoForPayment
}

type TaskInput struct {
	AssignmentID uuid.UUID
	Title        string
	Description  *string
	DueDate      *time.Time
}

func NewTaskService(repo TaskRepositoryIface, assignments AssignmentRepoForPayment) *TaskService {
	return &TaskService{repo: repo, assignments: assignments}
}

// Create adds a task to an active assignment. Either participant may add
// tasks; the repository re-checks the assignment status under its row lock.
func (s *TaskService) Create(ctx context.Context, actor valueobject.Actor, in TaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "title is required")
	}

	assignment, err := s.participating(ctx, actor, in.AssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != valueobject.AssignmentStatusActive {
		return nil, apperror.New(apperror.ErrCodeState, "tasks can only be added to an active assignment").
			WithDetail("assignment_id", in.AssignmentID).
			WithDetail("status", assignment.Status)
	}

	task := &models.Task{
		ID:           uuid.New(),
		AssignmentID: in.AssignmentID,
		Title:        in.Title,
		Description:  in.Description,
		Status:       valueobject.TaskStatusTodo,
		DueDate:      in.DueDate,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, s.mapWriteErr(err, in.AssignmentID)
	}
	return task, nil
}

// Get returns a task to the assignment's participants.
func (s *TaskService) Get(ctx context.Context, actor valueobject.Actor, id uuid.UUID) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrTaskNotFound
	}
	if _, err := s.participating(ctx, actor, task.AssignmentID); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns an assignment's tasks to its participants.
func (s *TaskService) List(ctx context.Context, actor valueobject.Actor, assignmentID uuid.UUID) ([]models.Task, error) {
	if _, err := s.participating(ctx, actor, assignmentID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to list tasks")
	}
	return tasks, nil
}

// UpdateStatus moves a task between todo, in_progress and done while the
// assignment is active.
func (s *TaskService) UpdateStatus(ctx context.Context, actor valueobject.Actor, id uuid.UUID, status string) (*models.Task, error) {
	taskStatus, err := valueobject.NewTaskStatus(status)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrTaskNotFound
	}
	if _, err := s.participating(ctx, actor, task.AssignmentID); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, string(taskStatus))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, s.mapWriteErr(err, task.AssignmentID)
	}
	return updated, nil
}

func (s *TaskService) participating(ctx context.Context, actor valueobject.Actor, assignmentID uuid.UUID) (*models.Assignment, error) {
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

func (s *TaskService) mapWriteErr(err error, assignmentID uuid.UUID) error {
	switch {
	case errors.Is(err, repository.ErrAssignmentNotFound):
		return apperror.ErrAssignmentNotFound
	case errors.Is(err, repository.ErrAssignmentNotActive):
		return apperror.New(apperror.ErrCodeState, "assignment is not active").
			WithDetail("assignment_id", assignmentID)
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to write task")
	}
}
