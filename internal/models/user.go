package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/domain/valueobject"
)

// User is a platform participant: a client who posts projects or a
// freelancer who bids on them. Rating is the aggregate of reviews targeting
// the user, recomputed whenever a review is created.
type User struct {
	ID           uuid.UUID           `db:"id" json:"id"`
	Email        string              `db:"email" json:"email"`
	Username     string              `db:"username" json:"username"`
	PasswordHash string              `db:"password_hash" json:"-"`
	Role         valueobject.Party   `db:"role" json:"role"`
	Rating       decimal.NullDecimal `db:"rating" json:"rating,omitempty"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}
