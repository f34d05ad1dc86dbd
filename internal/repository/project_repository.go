package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/repository/common"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectWrongStatus  = errors.New("project is not in the expected status")
	ErrProjectHasProposals = errors.New("project has proposals")
)

type ProjectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, client_id, title, description, budget_min, budget_max, currency, status, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		project.ID, project.ClientID, project.Title, project.Description,
		project.BudgetMin, project.BudgetMax, project.Currency, project.Status, project.Deadline,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("project repository: create: %w", err)
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return common.GetByID[models.Project](ctx, r.db, "projects", id, ErrProjectNotFound)
}

// Update persists the mutable fields. The finalized guard runs in the
// service, and again here via the status list so a finalized row can never
// be overwritten by a stale writer.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET title = $2, description = $3, budget_min = $4, budget_max = $5,
		    currency = $6, status = $7, deadline = $8, updated_at = NOW()
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		project.ID, project.Title, project.Description, project.BudgetMin,
		project.BudgetMax, project.Currency, project.Status, project.Deadline,
	).Scan(&project.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProjectNotFound
	}
	if err != nil {
		return fmt.Errorf("project repository: update: %w", err)
	}
	return nil
}

// UpdateStatus moves the project between lifecycle states, guarded by the
// expected current status so concurrent transitions cannot stack.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.ProjectStatus) (*models.Project, error) {
	var project models.Project
	query := `
		UPDATE projects SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING *
	`
	err := r.db.GetContext(ctx, &project, query, id, from, to)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the project is gone or it left the expected state.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrProjectWrongStatus
	}
	if err != nil {
		return nil, fmt.Errorf("project repository: update status: %w", err)
	}
	return &project, nil
}

// Delete removes a draft project with no proposals. Both checks run inside
// one transaction so a proposal arriving concurrently blocks the delete.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var project models.Project
		err := tx.GetContext(ctx, &project, `SELECT * FROM projects WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		if err != nil {
			return fmt.Errorf("project repository: delete lock: %w", err)
		}

		if project.Status != valueobject.ProjectStatusDraft {
			return ErrProjectWrongStatus
		}

		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM proposals WHERE project_id = $1`, id); err != nil {
			return fmt.Errorf("project repository: delete count proposals: %w", err)
		}
		if count > 0 {
			return ErrProjectHasProposals
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
			return fmt.Errorf("project repository: delete: %w", err)
		}
		return nil
	})
}

func (r *ProjectRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.SelectContext(ctx, &projects, `
		SELECT * FROM projects WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("project repository: list by client: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.SelectContext(ctx, &projects, `
		SELECT * FROM projects WHERE status = 'open' ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("project repository: list open: %w", err)
	}
	return projects, nil
}
