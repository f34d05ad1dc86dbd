package valueobject

import "github.com/gigmarket/backend/internal/pkg/apperror"

type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusOpen       ProjectStatus = "open"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
	ProjectStatusClosed     ProjectStatus = "closed"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusOpen, ProjectStatusInProgress,
		ProjectStatusCompleted, ProjectStatusCancelled, ProjectStatusClosed:
		return true
	}
	return false
}

// IsFinalized reports whether the project reached a terminal outcome after
// which no field or status mutation is allowed.
func (s ProjectStatus) IsFinalized() bool {
	return s == ProjectStatusCompleted || s == ProjectStatusCancelled
}

// CanTransitionTo encodes the project lifecycle. Draft is never re-enterable.
func (s ProjectStatus) CanTransitionTo(newStatus ProjectStatus) bool {
	transitions := map[ProjectStatus][]ProjectStatus{
		ProjectStatusDraft:      {ProjectStatusOpen, ProjectStatusClosed},
		ProjectStatusOpen:       {ProjectStatusInProgress, ProjectStatusClosed},
		ProjectStatusInProgress: {ProjectStatusCompleted, ProjectStatusCancelled},
		ProjectStatusCompleted:  {},
		ProjectStatusCancelled:  {},
		ProjectStatusClosed:     {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewProjectStatus(status string) (ProjectStatus, error) {
	s := ProjectStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "invalid project status").
			WithDetail("status", status)
	}
	return s, nil
}

type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
)

func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusPending, ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn:
		return true
	}
	return false
}

// IsTerminal reports whether the proposal can no longer change.
func (s ProposalStatus) IsTerminal() bool {
	return s != ProposalStatusPending
}

type AssignmentStatus string

const (
	AssignmentStatusActive    AssignmentStatus = "active"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusActive, AssignmentStatusCompleted, AssignmentStatusCancelled:
		return true
	}
	return false
}

func (s AssignmentStatus) IsTerminal() bool {
	return s != AssignmentStatusActive
}

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// CanTransitionTo enforces the monotonic pending -> processing -> completed
// (or -> failed) progression shared by payments and payouts.
func (s PaymentStatus) CanTransitionTo(newStatus PaymentStatus) bool {
	transitions := map[PaymentStatus][]PaymentStatus{
		PaymentStatusPending:    {PaymentStatusProcessing, PaymentStatusFailed},
		PaymentStatusProcessing: {PaymentStatusCompleted, PaymentStatusFailed},
		PaymentStatusCompleted:  {},
		PaymentStatusFailed:     {},
	}

	for _, status := range transitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

type PaymentType string

const (
	PaymentTypeEscrow  PaymentType = "escrow"
	PaymentTypeRelease PaymentType = "release"
)

func NewPaymentType(t string) (PaymentType, error) {
	pt := PaymentType(t)
	if pt != PaymentTypeEscrow && pt != PaymentTypeRelease {
		return "", apperror.New(apperror.ErrCodeValidation, "invalid payment type").
			WithDetail("type", t)
	}
	return pt, nil
}

type PayoutMethod string

const (
	PayoutMethodBankTransfer PayoutMethod = "bank_transfer"
	PayoutMethodPaypal       PayoutMethod = "paypal"
	PayoutMethodCard         PayoutMethod = "card"
)

func NewPayoutMethod(m string) (PayoutMethod, error) {
	pm := PayoutMethod(m)
	switch pm {
	case PayoutMethodBankTransfer, PayoutMethodPaypal, PayoutMethodCard:
		return pm, nil
	}
	return "", apperror.New(apperror.ErrCodeValidation, "invalid payout method").
		WithDetail("method", m)
}

type ReviewType string

const (
	ReviewTypeClientToFreelancer ReviewType = "client_to_freelancer"
	ReviewTypeFreelancerToClient ReviewType = "freelancer_to_client"
)

func NewReviewType(t string) (ReviewType, error) {
	rt := ReviewType(t)
	if rt != ReviewTypeClientToFreelancer && rt != ReviewTypeFreelancerToClient {
		return "", apperror.New(apperror.ErrCodeValidation, "invalid review type").
			WithDetail("type", t)
	}
	return rt, nil
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func NewTaskStatus(status string) (TaskStatus, error) {
	s := TaskStatus(status)
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return s, nil
	}
	return "", apperror.New(apperror.ErrCodeValidation, "invalid task status").
		WithDetail("status", status)
}
