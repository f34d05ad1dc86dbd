package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/repository/common"
)

var (
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrDuplicateAssignment = errors.New("assignment already exists for this project or proposal")
	ErrAssignmentNotActive = errors.New("assignment is not active")
	ErrAssignmentCancelled = errors.New("assignment is cancelled")
)

type AssignmentRepository struct {
	db *sqlx.DB
}

func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts the assignment and lets the unique indexes on project_id
// and proposal_id arbitrate races: two concurrent creates for the same
// proposal (or project) commit exactly one row, the loser gets a conflict.
// A pre-check alone would be a TOCTOU hole.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	query := `
		INSERT INTO assignments (id, project_id, proposal_id, client_id, freelancer_id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		assignment.ID, assignment.ProjectID, assignment.ProposalID, assignment.ClientID,
		assignment.FreelancerID, assignment.StartDate, assignment.EndDate, assignment.Status,
	).Scan(&assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "") {
			return ErrDuplicateAssignment
		}
		return fmt.Errorf("assignment repository: create: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	return common.GetByID[models.Assignment](ctx, r.db, "assignments", id, ErrAssignmentNotFound)
}

func (r *AssignmentRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) (*models.Assignment, error) {
	return common.GetByField[models.Assignment](ctx, r.db, "assignments", "project_id", projectID, ErrAssignmentNotFound)
}

// UpdateDates rewrites the schedule while the assignment is still active.
func (r *AssignmentRepository) UpdateDates(ctx context.Context, id uuid.UUID, startDate time.Time, endDate *time.Time) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.GetContext(ctx, &assignment, `
		UPDATE assignments SET start_date = $2, end_date = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
		RETURNING *
	`, id, startDate, endDate)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAssignmentNotActive
	}
	if err != nil {
		return nil, fmt.Errorf("assignment repository: update dates: %w", err)
	}
	return &assignment, nil
}

// UpdateStatus is the only writer of terminal assignment states. The status
// guard makes complete/cancel first-writer-wins under concurrency.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, to valueobject.AssignmentStatus) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.GetContext(ctx, &assignment, `
		UPDATE assignments SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
		RETURNING *
	`, id, to)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAssignmentNotActive
	}
	if err != nil {
		return nil, fmt.Errorf("assignment repository: update status: %w", err)
	}
	return &assignment, nil
}

func (r *AssignmentRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.SelectContext(ctx, &assignments, `
		SELECT * FROM assignments WHERE freelancer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, freelancerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("assignment repository: list by freelancer: %w", err)
	}
	return assignments, nil
}

func (r *AssignmentRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.SelectContext(ctx, &assignments, `
		SELECT * FROM assignments WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("assignment repository: list by client: %w", err)
	}
	return assignments, nil
}
