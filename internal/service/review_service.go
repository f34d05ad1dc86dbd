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

// ReviewRepositoryIface is the storage surface the review service depends
// on.
type ReviewRepositoryIface interface {
	Create(ctx context.Context, review *models.Review) (decimal.Decimal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListByTarget(ctx context.Context, targetID uuid.UUID, limit, offset int) ([]models.Review, error)
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Review, error)
}

type ReviewService struct {
	repo        ReviewRepositoryIface
	assignments AssignmentRepoForPayment
}

type ReviewInput struct {
	AssignmentID uuid.UUID
	ReviewType   string
	Rating       int
	Comment      *string
}

// ReviewResult is the created review plus the target's recomputed average.
type ReviewResult struct {
	Review        *models.Review
	TargetAverage decimal.Decimal
}

func NewReviewService(repo ReviewRepositoryIface, assignments AssignmentRepoForPayment) *ReviewService {
	return &ReviewService{repo: repo, assignments: assignments}
}

// Create leaves a review on a completed assignment. The author must sit on
// the side the review type names: the client writes client_to_freelancer,
// the freelancer writes freelancer_to_client. One review per
// (assignment, author, type); the target's average rating is recomputed in
// the same transaction as the insert.
func (s *ReviewService) Create(ctx context.Context, actor valueobject.Actor, in ReviewInput) (*ReviewResult, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperror.New(apperror.ErrCodeValidation, "rating must be between 1 and 5").
			WithDetail("rating", in.Rating)
	}
	reviewType, err := valueobject.NewReviewType(in.ReviewType)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignments.GetByID(ctx, in.AssignmentID)
	if err != nil {
		return nil, apperror.ErrAssignmentNotFound
	}
	if !assignment.IsParticipant(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "not a participant of this assignment").
			WithDetail("assignment_id", in.AssignmentID)
	}
	if assignment.Status != valueobject.AssignmentStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeState, "reviews require a completed assignment").
			WithDetail("assignment_id", in.AssignmentID).
			WithDetail("status", assignment.Status)
	}

	var targetID uuid.UUID
	switch reviewType {
	case valueobject.ReviewTypeClientToFreelancer:
		if actor.UserID != assignment.ClientID {
			return nil, apperror.New(apperror.ErrCodeValidation, "review type does not match the author's side").
				WithDetail("review_type", reviewType)
		}
		targetID = assignment.FreelancerID
	case valueobject.ReviewTypeFreelancerToClient:
		if actor.UserID != assignment.FreelancerID {
			return nil, apperror.New(apperror.ErrCodeValidation, "review type does not match the author's side").
				WithDetail("review_type", reviewType)
		}
		targetID = assignment.ClientID
	}

	review := &models.Review{
		ID:           uuid.New(),
		AssignmentID: in.AssignmentID,
		AuthorID:     actor.UserID,
		TargetID:     targetID,
		ReviewType:   reviewType,
		Rating:       in.Rating,
		Comment:      in.Comment,
	}

	average, err := s.repo.Create(ctx, review)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, apperror.New(apperror.ErrCodeConflict, "review already left for this assignment").
				WithDetail("assignment_id", in.AssignmentID).
				WithDetail("review_type", reviewType)
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to create review")
	}

	logger.Log.WithFields(map[string]interface{}{
		"review_id":     review.ID,
		"assignment_id": in.AssignmentID,
		"target_id":     targetID,
		"rating":        in.Rating,
		"new_average":   average.String(),
	}).Info("review created")

	return &ReviewResult{Review: review, TargetAverage: average}, nil
}

// Get returns a review by id. Reviews are public once written.
func (s *ReviewService) Get(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrReviewNotFound
	}
	return review, nil
}

// ListAboutUser returns reviews targeting a user.
func (s *ReviewService) ListAboutUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error) {
	limit = clampLimit(limit)
	reviews, err := s.repo.ListByTarget(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to list reviews")
	}
	return reviews, nil
}

// ListForAssignment returns the up-to-two reviews on an assignment to its
// participants.
func (s *ReviewService) ListForAssignment(ctx context.Context, actor valueobject.Actor, assignmentID uuid.UUID) ([]models.Review, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, apperror.ErrAssignmentNotFound
	}
	if !assignment.IsParticipant(actor.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "not a participant of this assignment").
			WithDetail("assignment_id", assignmentID)
	}
	reviews, err := s.repo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "failed to list reviews")
	}
	return reviews, nil
}
