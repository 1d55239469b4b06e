package ports

import (
	"context"

	"github.com/openlearn/provisioning/internal/core/domain"
)

// EnrollmentStore is the enrollment data API.
type EnrollmentStore interface {
	// CreateEnrollment applies the regular access checks (user exists, course
	// exists and is open for enrollment). ErrEnrollmentExists if the pair is
	// already enrolled.
	CreateEnrollment(ctx context.Context, username, courseID, mode string, active bool) (*domain.Enrollment, error)
	UpdateEnrollment(ctx context.Context, username, courseID, mode string, active bool) (*domain.Enrollment, error)
	// Enroll is the low level primitive: it creates or reactivates the record
	// without any access or eligibility check.
	Enroll(ctx context.Context, user *domain.User, key domain.CourseKey) (*domain.Enrollment, error)
	// ForceUpdate overwrites mode and active flag of an existing record.
	ForceUpdate(ctx context.Context, e *domain.Enrollment, mode string, active bool) (*domain.Enrollment, error)
	SetEnrollmentAttributes(ctx context.Context, username, courseID string, attrs []domain.EnrollmentAttribute) error
}

// CourseCatalog answers which modes a course offers.
type CourseCatalog interface {
	// CourseModes lists the course's modes. Expired modes are included only
	// when includeExpired is set. ErrCourseNotFound for unknown courses.
	CourseModes(ctx context.Context, courseID string, includeExpired bool) ([]domain.CourseMode, error)
}

// ProgramCatalog resolves a program (bundle) into its course runs.
type ProgramCatalog interface {
	ProgramCourses(ctx context.Context, programID string) ([]string, error)
}
