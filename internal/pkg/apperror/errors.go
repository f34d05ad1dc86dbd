package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeState        ErrorCode = "STATE_ERROR"
	ErrCodeInvariant    ErrorCode = "INVARIANT_VIOLATION"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase     ErrorCode = "DATABASE_ERROR"
)

// AppError carries a machine-readable code, an HTTP status and structured
// details (entity, current vs. required state, amounts) so the handler layer
// can render a precise response. A CONFLICT is a lost race the caller may
// retry; a VALIDATION_ERROR is not.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// WithDetail attaches a key/value pair and returns the same error, so raise
// sites can chain calls.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeState, ErrCodeInvariant:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

func IsNotFound(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeNotFound
}

func IsConflict(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeConflict
}

func IsState(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeState
}

func IsForbidden(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeValidation
}

func IsInvariant(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeInvariant
}

var (
	ErrProjectNotFound    = New(ErrCodeNotFound, "project not found")
	ErrProposalNotFound   = New(ErrCodeNotFound, "proposal not found")
	ErrAssignmentNotFound = New(ErrCodeNotFound, "assignment not found")
	ErrPaymentNotFound    = New(ErrCodeNotFound, "payment not found")
	ErrPayoutNotFound     = New(ErrCodeNotFound, "payout not found")
	ErrReviewNotFound     = New(ErrCodeNotFound, "review not found")
	ErrTaskNotFound       = New(ErrCodeNotFound, "task not found")
	ErrUserNotFound       = New(ErrCodeNotFound, "user not found")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "authentication required")
	ErrForbidden          = New(ErrCodeForbidden, "access denied")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "invalid credentials")
)
