package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/ports"
)

// EnrollmentValidator checks the shape of an enrollment request against the
// platform modes, the site's organizations and the course catalog.
type EnrollmentValidator struct {
	catalog ports.CourseCatalog
	tenants *TenantResolver
}

func NewEnrollmentValidator(catalog ports.CourseCatalog, tenants *TenantResolver) *EnrollmentValidator {
	return &EnrollmentValidator{catalog: catalog, tenants: tenants}
}

// Validate returns every problem found with in. An empty list means the
// request may proceed. The error value is reserved for malformed course ids
// and catalog failures other than a missing mode.
func (v *EnrollmentValidator) Validate(ctx context.Context, in ports.CreateEnrollmentInput) ([]string, error) {
	var errs []string

	switch {
	case in.Email == "" && in.Username == "":
		errs = append(errs, "Email or username needed")
	case in.Email != "" && in.Username != "":
		errs = append(errs, "You have to provide an email or username but not both")
	}

	modeKnown := domain.IsKnownMode(in.Mode)
	if !modeKnown {
		errs = append(errs, "Invalid mode given:"+in.Mode)
	}

	if v.tenants != nil {
		ok, err := v.tenants.ValidCourseID(ctx, in.CourseID, in.Site)
		if err != nil {
			return nil, err
		}
		if !ok {
			errs = append(errs, fmt.Sprintf("Invalid course_id %s", in.CourseID))
		}
	} else if _, err := domain.ParseCourseKey(in.CourseID); err != nil {
		return nil, err
	}

	if !in.Force && modeKnown {
		if err := v.validateCourseMode(ctx, in.CourseID, in.Mode, in.IsActive); err != nil {
			if !errors.Is(err, domain.ErrCourseModeNotFound) {
				return nil, err
			}
			errs = append(errs, "Mode not found")
		}
	}

	return errs, nil
}

// validateCourseMode fails with ErrCourseModeNotFound when the course does not
// offer mode. Expired modes still count for inactive enrollments.
func (v *EnrollmentValidator) validateCourseMode(ctx context.Context, courseID, mode string, active bool) error {
	modes, err := v.catalog.CourseModes(ctx, courseID, !active)
	if err != nil {
		return err
	}
	for _, m := range modes {
		if m.Slug == mode {
			return nil
		}
	}
	return domain.ErrCourseModeNotFound
}
