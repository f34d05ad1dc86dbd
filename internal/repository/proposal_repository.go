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
	ErrProposalNotFound   = errors.New("proposal not found")
	ErrDuplicateProposal  = errors.New("proposal already exists for this project and freelancer")
	ErrProposalNotPending = errors.New("proposal is not pending")
	ErrProjectNotOpen     = errors.New("project is not open")
)

// AcceptResult is everything the acceptance transaction changed: the winning
// proposal, the project it advanced and how many siblings were swept.
type AcceptResult struct {
	Proposal *models.Proposal
	Project  *models.Project
	Rejected int64
}

type ProposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	query := `
		INSERT INTO proposals (id, project_id, freelancer_id, cover_letter, bid_amount, estimated_duration_days, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		proposal.ID, proposal.ProjectID, proposal.FreelancerID, proposal.CoverLetter,
		proposal.BidAmount, proposal.EstimatedDurationDays, proposal.Status,
	).Scan(&proposal.CreatedAt, &proposal.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "uniq_proposals_project_freelancer") {
			return ErrDuplicateProposal
		}
		return fmt.Errorf("proposal repository: create: %w", err)
	}
	return nil
}

// CreateWithPublish inserts an invitation proposal and, when the project is
// still a draft, publishes it in the same transaction. The project row is
// locked so the publish and the insert land together.
func (r *ProposalRepository) CreateWithPublish(ctx context.Context, proposal *models.Proposal) (*models.Project, error) {
	var project models.Project
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &project, `SELECT * FROM projects WHERE id = $1 FOR UPDATE`, proposal.ProjectID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		if err != nil {
			return fmt.Errorf("proposal repository: invite lock project: %w", err)
		}

		if project.Status != valueobject.ProjectStatusOpen && project.Status != valueobject.ProjectStatusDraft {
			return ErrProjectNotOpen
		}

		if project.Status == valueobject.ProjectStatusDraft {
			err = tx.GetContext(ctx, &project, `
				UPDATE projects SET status = 'open', updated_at = NOW() WHERE id = $1 RETURNING *
			`, project.ID)
			if err != nil {
				return fmt.Errorf("proposal repository: invite publish project: %w", err)
			}
		}

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO proposals (id, project_id, freelancer_id, cover_letter, bid_amount, estimated_duration_days, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at
		`, proposal.ID, proposal.ProjectID, proposal.FreelancerID, proposal.CoverLetter,
			proposal.BidAmount, proposal.EstimatedDurationDays, proposal.Status,
		).Scan(&proposal.CreatedAt, &proposal.UpdatedAt)
		if err != nil {
			if common.IsUniqueViolation(err, "uniq_proposals_project_freelancer") {
				return ErrDuplicateProposal
			}
			return fmt.Errorf("proposal repository: invite create: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return common.GetByID[models.Proposal](ctx, r.db, "proposals", id, ErrProposalNotFound)
}

// Accept performs the whole acceptance as one atomic unit: lock the project
// row, re-check both preconditions under the lock, accept the proposal,
// sweep every sibling still pending to rejected and advance the project to
// in_progress. Concurrent accepts on the same project serialize on the row
// lock; the partial unique index on accepted proposals backstops the sweep.
func (r *ProposalRepository) Accept(ctx context.Context, proposalID uuid.UUID) (*AcceptResult, error) {
	result := &AcceptResult{}
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var project models.Project
		err := tx.GetContext(ctx, &project, `
			SELECT p.* FROM projects p
			JOIN proposals pr ON pr.project_id = p.id
			WHERE pr.id = $1
			FOR UPDATE OF p
		`, proposalID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProposalNotFound
		}
		if err != nil {
			return fmt.Errorf("proposal repository: accept lock project: %w", err)
		}

		if project.Status != valueobject.ProjectStatusOpen {
			return ErrProjectNotOpen
		}

		var proposal models.Proposal
		err = tx.GetContext(ctx, &proposal, `
			UPDATE proposals SET status = 'accepted', updated_at = NOW()
			WHERE id = $1 AND status = 'pending'
			RETURNING *
		`, proposalID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProposalNotPending
		}
		if err != nil {
			return fmt.Errorf("proposal repository: accept proposal: %w", err)
		}

		sweep, err := tx.ExecContext(ctx, `
			UPDATE proposals SET status = 'rejected', updated_at = NOW()
			WHERE project_id = $1 AND status = 'pending' AND id <> $2
		`, project.ID, proposalID)
		if err != nil {
			return fmt.Errorf("proposal repository: accept reject sweep: %w", err)
		}
		result.Rejected, _ = sweep.RowsAffected()

		err = tx.GetContext(ctx, &project, `
			UPDATE projects SET status = 'in_progress', updated_at = NOW() WHERE id = $1 RETURNING *
		`, project.ID)
		if err != nil {
			return fmt.Errorf("proposal repository: accept advance project: %w", err)
		}

		result.Proposal = &proposal
		result.Project = &project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus moves a pending proposal to a terminal state (reject or
// withdraw). The status guard in the WHERE clause makes the transition
// race-free without an explicit lock.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, to valueobject.ProposalStatus) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.GetContext(ctx, &proposal, `
		UPDATE proposals SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`, id, to)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrProposalNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("proposal repository: update status: %w", err)
	}
	return &proposal, nil
}

// UpdateContent edits the bid while the proposal is still pending; terminal
// proposals are immutable.
func (r *ProposalRepository) UpdateContent(ctx context.Context, proposal *models.Proposal) error {
	var updated models.Proposal
	err := r.db.GetContext(ctx, &updated, `
		UPDATE proposals
		SET cover_letter = $2, bid_amount = $3, estimated_duration_days = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`, proposal.ID, proposal.CoverLetter, proposal.BidAmount, proposal.EstimatedDurationDays)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, proposal.ID); getErr != nil {
			return getErr
		}
		return ErrProposalNotPending
	}
	if err != nil {
		return fmt.Errorf("proposal repository: update content: %w", err)
	}
	*proposal = updated
	return nil
}

func (r *ProposalRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.SelectContext(ctx, &proposals, `
		SELECT * FROM proposals WHERE project_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: list by project: %w", err)
	}
	return proposals, nil
}

func (r *ProposalRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.SelectContext(ctx, &proposals, `
		SELECT * FROM proposals WHERE freelancer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, freelancerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: list by freelancer: %w", err)
	}
	return proposals, nil
}
