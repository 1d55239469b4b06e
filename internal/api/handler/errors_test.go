package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/openlearn/provisioning/internal/core/domain"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		msg    string
		wantOK bool
	}{
		{"validation", domain.NewValidationError("a", "b"), http.StatusBadRequest, "validation failed", true},
		{"invalid identifier", &domain.InvalidIdentifierError{Kind: "course_id", Value: "x"}, http.StatusBadRequest, "No valid course_id x", true},
		{"update not processed", domain.ErrUpdateNotProcessed, http.StatusBadRequest, domain.ErrUpdateNotProcessed.Error(), true},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials", true},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden", true},
		{"retirement", fmt.Errorf("retire: %w", domain.ErrRetirementFailed), http.StatusNotFound, "the deletion could not be completed", true},
		{"site lookup", &domain.UserNotFoundForSiteError{Query: "{'username': 'jane'}"}, http.StatusNotFound, "No user found by {'username': 'jane'} on site None.", true},
		{"conflict", domain.NewConflictError("username", "email"), http.StatusConflict, "Fatal: account collision with the provided: email, username", true},
		{"program unsupported", domain.ErrProgramEnrollmentUnsupported, http.StatusUnprocessableEntity, domain.ErrProgramEnrollmentUnsupported.Error(), true},
		{"enrollment failed", domain.ErrEnrollmentFailed, http.StatusInternalServerError, domain.ErrEnrollmentFailed.Error(), true},
		{"unknown", errors.New("socket closed"), http.StatusInternalServerError, "internal server error", false},
		{"bare store failure", fmt.Errorf("insert: %w", domain.ErrFatalStore), http.StatusInternalServerError, "internal server error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg, _, ok := ErrorStatus(tt.err)
			if code != tt.code || msg != tt.msg || ok != tt.wantOK {
				t.Fatalf("got (%d, %q, %v), want (%d, %q, %v)", code, msg, ok, tt.code, tt.msg, tt.wantOK)
			}
		})
	}
}

func TestErrorStatus_ValidationDetails(t *testing.T) {
	_, _, details, _ := ErrorStatus(domain.NewValidationError("email is required", "username is required"))
	if len(details) != 2 || details[1] != "username is required" {
		t.Fatalf("unexpected details: %v", details)
	}
}
