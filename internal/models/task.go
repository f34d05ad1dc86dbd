package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigmarket/backend/internal/domain/valueobject"
)

// Task is a work item inside an assignment. Tasks may only be created while
// the assignment is active.
type Task struct {
	ID           uuid.UUID              `db:"id" json:"id"`
	AssignmentID uuid.UUID              `db:"assignment_id" json:"assignment_id"`
	Title        string                 `db:"title" json:"title"`
	Description  *string                `db:"description" json:"description,omitempty"`
	Status       valueobject.TaskStatus `db:"status" json:"status"`
	DueDate      *time.Time             `db:"due_date" json:"due_date,omitempty"`
	CreatedAt    time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time              `db:"updated_at" json:"updated_at"`
}
