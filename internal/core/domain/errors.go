package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Typed errors below match these through errors.Is so callers
// (and the HTTP error handler) can branch on the kind without knowing the type.
var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrFatalStore        = errors.New("store failure")
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrAmbiguousUser      = errors.New("more than one user matches")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrSiteNotFound       = fmt.Errorf("site %w", ErrNotFound)

	// ErrRetirementFailed reports a failed retirement write. Clients see it
	// as a not found.
	ErrRetirementFailed = fmt.Errorf("the deletion could not be completed: %w", ErrNotFound)

	// ErrUpdateNotProcessed is returned when the settings subsystem rejects an
	// update without field level detail.
	ErrUpdateNotProcessed = errors.New("the update could not be processed, please review your request")

	ErrCourseNotFound               = fmt.Errorf("course %w", ErrNotFound)
	ErrCourseModeNotFound           = errors.New("mode not found")
	ErrEnrollmentExists             = errors.New("enrollment already exists")
	ErrEnrollmentNotFound           = fmt.Errorf("enrollment %w", ErrNotFound)
	ErrEnrollmentClosed             = errors.New("enrollment is closed")
	ErrForceRequired                = errors.New("use force to update the existing enrollment")
	ErrEnrollmentFailed             = fmt.Errorf("enrollment failed: %w", ErrFatalStore)
	ErrProgramNotFound              = fmt.Errorf("program %w", ErrNotFound)
	ErrProgramEnrollmentUnsupported = errors.New("program enrollment is not configured")
)

// InvalidIdentifierError reports a malformed course or user identifier.
type InvalidIdentifierError struct {
	Kind  string
	Value string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("No valid %s %s", e.Kind, e.Value)
}

func (e *InvalidIdentifierError) Is(target error) bool { return target == ErrInvalidIdentifier }

// ConflictError names the identity fields that are already taken.
type ConflictError struct {
	Fields []string
}

func NewConflictError(fields ...string) *ConflictError {
	f := append([]string(nil), fields...)
	sort.Strings(f)
	return &ConflictError{Fields: f}
}

func (e *ConflictError) Error() string {
	return "Fatal: account collision with the provided: " + strings.Join(e.Fields, ", ")
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// ValidationError carries request-shape problems as a list of messages.
type ValidationError struct {
	Messages []string
}

func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func (e *ValidationError) Error() string { return strings.Join(e.Messages, "; ") }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AccountValidationError is raised by the settings subsystem. FieldErrors maps
// a field name to its user facing message.
type AccountValidationError struct {
	FieldErrors map[string]string
}

func (e *AccountValidationError) Error() string {
	return strings.Join(e.Pairs(), ", ")
}

// Pairs renders the field errors as sorted "field:message" strings.
func (e *AccountValidationError) Pairs() []string {
	pairs := make([]string, 0, len(e.FieldErrors))
	for field, msg := range e.FieldErrors {
		pairs = append(pairs, field+":"+msg)
	}
	sort.Strings(pairs)
	return pairs
}

// UserNotFoundForSiteError is returned when a user cannot be resolved inside a
// site. The message never says whether the record exists elsewhere.
type UserNotFoundForSiteError struct {
	Query  string
	Domain string
}

func (e *UserNotFoundForSiteError) Error() string {
	site := e.Domain
	if site == "" {
		site = "None"
	}
	return fmt.Sprintf("No user found by %s on site %s.", e.Query, site)
}

func (e *UserNotFoundForSiteError) Is(target error) bool { return target == ErrNotFound }

// UserResolutionError is returned when an enrollment target cannot be mapped
// to exactly one user.
type UserResolutionError struct {
	Email string
	Err   error
}

func (e *UserResolutionError) Error() string {
	if errors.Is(e.Err, ErrAmbiguousUser) {
		return "More than one user found with that email"
	}
	return "No user found with that email"
}

func (e *UserResolutionError) Unwrap() error { return e.Err }
