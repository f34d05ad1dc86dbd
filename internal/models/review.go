package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigmarket/backend/internal/domain/valueobject"
)

// Review is one participant's rating of the other after an assignment
// completes, unique per (assignment, author, type) and immutable once
// created. TargetID is the freelancer for client_to_freelancer reviews and
// the client for freelancer_to_client ones.
type Review struct {
	ID           uuid.UUID              `db:"id" json:"id"`
	AssignmentID uuid.UUID              `db:"assignment_id" json:"assignment_id"`
	AuthorID     uuid.UUID              `db:"author_id" json:"author_id"`
	TargetID     uuid.UUID              `db:"target_id" json:"target_id"`
	ReviewType   valueobject.ReviewType `db:"review_type" json:"review_type"`
	Rating       int                    `db:"rating" json:"rating"`
	Comment      *string                `db:"comment" json:"comment,omitempty"`
	CreatedAt    time.Time              `db:"created_at" json:"created_at"`
}
