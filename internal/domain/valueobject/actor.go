package valueobject

import (
	"github.com/google/uuid"

	"github.com/gigmarket/backend/internal/pkg/apperror"
)

// Party is the side of the marketplace a user acts as.
type Party string

const (
	PartyClient     Party = "client"
	PartyFreelancer Party = "freelancer"
)

func NewParty(role string) (Party, error) {
	p := Party(role)
	if p != PartyClient && p != PartyFreelancer {
		return "", apperror.New(apperror.ErrCodeValidation, "invalid role").
			WithDetail("role", role)
	}
	return p, nil
}

// Actor is the authenticated caller, resolved once per request by the auth
// middleware and passed explicitly into every lifecycle operation.
type Actor struct {
	UserID uuid.UUID
	Party  Party
}

func (a Actor) IsClient() bool {
	return a.Party == PartyClient
}

func (a Actor) IsFreelancer() bool {
	return a.Party == PartyFreelancer
}
