package onboarding

import "errors"

// Failure taxonomy of the onboarding state machine. Handlers translate
// these into stable response kinds with errors.Is; nothing else crosses
// the service boundary.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("no onboarding draft for user")
	ErrAlreadyCompleted = errors.New("onboarding already completed")
	ErrDuplicateProfile = errors.New("professional profile already exists")
	ErrValidationFailed = errors.New("draft is missing required fields")
	ErrPersistence      = errors.New("persistence failure")
)

// Kind maps a service error to its stable machine-readable code, so
// clients can tell "fix your input" from "don't retry" from "retry".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, ErrDuplicateProfile):
		return "duplicate_profile"
	case errors.Is(err, ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, ErrPersistence):
		return "persistence_failure"
	default:
		return "internal_error"
	}
}
