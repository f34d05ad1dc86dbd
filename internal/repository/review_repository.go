package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/models"
	"github.com/gigmarket/backend/internal/repository/common"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("review already exists for this assignment, author and type")
)

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts the review and recomputes the target's aggregate rating in
// the same transaction, so the stored average never disagrees with the
// review rows. The target user row is locked first to serialize concurrent
// reviews of the same user, otherwise each recompute could read a snapshot
// missing the other's uncommitted row. The unique index on
// (assignment, author, type) arbitrates duplicate submissions. Returns the
// new average.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) (decimal.Decimal, error) {
	var average decimal.Decimal
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked uuid.UUID
		if err := tx.GetContext(ctx, &locked, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, review.TargetID); err != nil {
			return fmt.Errorf("review repository: lock target user: %w", err)
		}

		err := tx.QueryRowxContext(ctx, `
			INSERT INTO reviews (id, assignment_id, author_id, target_id, review_type, rating, comment)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at
		`, review.ID, review.AssignmentID, review.AuthorID, review.TargetID,
			review.ReviewType, review.Rating, review.Comment,
		).Scan(&review.CreatedAt)
		if err != nil {
			if common.IsUniqueViolation(err, "uniq_reviews_assignment_author_type") {
				return ErrDuplicateReview
			}
			return fmt.Errorf("review repository: create: %w", err)
		}

		var ratings []int
		if err := tx.SelectContext(ctx, &ratings, `SELECT rating FROM reviews WHERE target_id = $1`, review.TargetID); err != nil {
			return fmt.Errorf("review repository: load ratings: %w", err)
		}

		average = averageRating(ratings)
		if _, err := tx.ExecContext(ctx, `UPDATE users SET rating = $2, updated_at = NOW() WHERE id = $1`, review.TargetID, average); err != nil {
			return fmt.Errorf("review repository: update rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return average, nil
}

// averageRating is the arithmetic mean rounded to two decimal places,
// half-up: [5,4] -> 4.50, [5,4,5] -> 4.67.
func averageRating(ratings []int) decimal.Decimal {
	if len(ratings) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, rating := range ratings {
		sum = sum.Add(decimal.NewFromInt(int64(rating)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(ratings)))).Round(2)
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return common.GetByID[models.Review](ctx, r.db, "reviews", id, ErrReviewNotFound)
}

func (r *ReviewRepository) ListByTarget(ctx context.Context, targetID uuid.UUID, limit, offset int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews WHERE target_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, targetID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("review repository: list by target: %w", err)
	}
	return reviews, nil
}

func (r *ReviewRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews WHERE assignment_id = $1 ORDER BY created_at
	`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("review repository: list by assignment: %w", err)
	}
	return reviews, nil
}
