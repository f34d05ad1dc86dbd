package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/repository/common"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a task to an assignment. The assignment row is locked and
// checked so tasks cannot be attached to a finished assignment that a
// concurrent writer is closing.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var status string
		err := tx.GetContext(ctx, &status, `SELECT status FROM assignments WHERE id = $1 FOR UPDATE`, task.AssignmentID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAssignmentNotFound
		}
		if err != nil {
			return fmt.Errorf("task repository: lock assignment: %w", err)
		}
		if status != "active" {
			return ErrAssignmentNotActive
		}

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO tasks (id, assignment_id, title, description, status, due_date)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at
		`, task.ID, task.AssignmentID, task.Title, task.Description, task.Status, task.DueDate,
		).Scan(&task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			return fmt.Errorf("task repository: create: %w", err)
		}
		return nil
	})
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return common.GetByID[models.Task](ctx, r.db, "tasks", id, ErrTaskNotFound)
}

func (r *TaskRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.SelectContext(ctx, &tasks, `
		SELECT * FROM tasks WHERE assignment_id = $1 ORDER BY created_at
	`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("task repository: list by assignment: %w", err)
	}
	return tasks, nil
}

// UpdateStatus moves a task between todo, in_progress and done. Task status
// is freely editable while the parent assignment is active.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Task, error) {
	var task models.Task
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var assignmentStatus string
		err := tx.GetContext(ctx, &assignmentStatus, `
			SELECT a.status FROM assignments a JOIN tasks t ON t.assignment_id = a.id
			WHERE t.id = $1 FOR UPDATE OF a
		`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("task repository: lock assignment: %w", err)
		}
		if assignmentStatus != "active" {
			return ErrAssignmentNotActive
		}

		err = tx.GetContext(ctx, &task, `
			UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING *
		`, id, status)
		if err != nil {
			return fmt.Errorf("task repository: update status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}
