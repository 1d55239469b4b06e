package ports

import (
	"context"

	"github.com/openlearn/provisioning/internal/core/domain"
)

// CreateEnrollmentInput is an enrollment request. Exactly one of Email and
// Username identifies the learner.
type CreateEnrollmentInput struct {
	Email      string
	Username   string
	CourseID   string
	Mode       string
	IsActive   bool
	Force      bool
	Attributes []domain.EnrollmentAttribute
	// ProgramID (a program or bundle id) switches to program enrollment.
	ProgramID string
	Site      *domain.Site
}

// Learner returns whichever identifier was supplied.
func (in CreateEnrollmentInput) Learner() string {
	if in.Email != "" {
		return in.Email
	}
	return in.Username
}

// EnrollmentService creates and validates enrollments.
//
// Create returns (enrollment, nil, nil) on success and (nil, errs, nil) when
// the request itself is invalid. Store problems come back as the error value.
type EnrollmentService interface {
	Create(ctx context.Context, in CreateEnrollmentInput) (*domain.Enrollment, []string, error)
	Validate(ctx context.Context, in CreateEnrollmentInput) ([]string, error)
}

// EnrollmentResult is the outcome of one request of a batch. Exactly one of
// Enrollment, Errors and Err is set.
type EnrollmentResult struct {
	Input      CreateEnrollmentInput
	Enrollment *domain.Enrollment
	Errors     []string
	Err        error
}

// BatchEnroller processes many enrollment requests and returns their results
// in request order.
type BatchEnroller interface {
	Run(ctx context.Context, inputs []CreateEnrollmentInput) []EnrollmentResult
}
