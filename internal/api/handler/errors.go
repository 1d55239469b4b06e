package handler

import (
	"errors"
	"net/http"

	"github.com/openlearn/provisioning/internal/core/domain"
)

// ErrorStatus maps a domain error to its HTTP status, the message shown to
// the client and, for validation errors, the individual problems. ok is false
// for errors that are not part of the domain contract; their details must not
// reach the client.
func ErrorStatus(err error) (code int, msg string, details []string, ok bool) {
	var (
		ve *domain.ValidationError
		re *domain.UserResolutionError
	)

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "validation failed", ve.Messages, true
	case errors.As(err, &re):
		return http.StatusBadRequest, re.Error(), nil, true
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return http.StatusBadRequest, err.Error(), nil, true
	case errors.Is(err, domain.ErrUpdateNotProcessed):
		return http.StatusBadRequest, err.Error(), nil, true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials", nil, true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden", nil, true
	case errors.Is(err, domain.ErrRetirementFailed):
		return http.StatusNotFound, "the deletion could not be completed", nil, true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error(), nil, true
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error(), nil, true
	case errors.Is(err, domain.ErrProgramEnrollmentUnsupported):
		return http.StatusUnprocessableEntity, err.Error(), nil, true
	case errors.Is(err, domain.ErrEnrollmentFailed):
		return http.StatusInternalServerError, err.Error(), nil, true
	}
	return http.StatusInternalServerError, "internal server error", nil, false
}
