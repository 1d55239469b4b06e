package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openlearn/provisioning/internal/api/metrics"
	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/ports"
)

// enrollState is a step of the create-or-update state machine.
type enrollState int

const (
	stateAttemptNormal enrollState = iota
	stateAttemptUpdate
	stateAttemptForced
	stateFailed
	stateSucceeded
)

func (s enrollState) String() string {
	switch s {
	case stateAttemptNormal:
		return "normal"
	case stateAttemptUpdate:
		return "update"
	case stateAttemptForced:
		return "forced"
	case stateFailed:
		return "failed"
	default:
		return "succeeded"
	}
}

// EnrollmentService creates enrollments, falling back to an update or to the
// forced low level path when the caller asks for force.
type EnrollmentService struct {
	validator *EnrollmentValidator
	users     ports.IdentityStore
	store     ports.EnrollmentStore
	programs  ports.ProgramCatalog
	log       zerolog.Logger
}

// NewEnrollmentService wires the service. programs may be nil, in which case
// program enrollment requests fail with ErrProgramEnrollmentUnsupported.
func NewEnrollmentService(
	validator *EnrollmentValidator,
	users ports.IdentityStore,
	store ports.EnrollmentStore,
	programs ports.ProgramCatalog,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		validator: validator,
		users:     users,
		store:     store,
		programs:  programs,
		log:       log,
	}
}

// Validate reports request problems without touching the store.
func (s *EnrollmentService) Validate(ctx context.Context, in ports.CreateEnrollmentInput) ([]string, error) {
	return s.validator.Validate(ctx, in)
}

// Create enrolls a learner in a course.
func (s *EnrollmentService) Create(ctx context.Context, in ports.CreateEnrollmentInput) (*domain.Enrollment, []string, error) {
	if in.ProgramID != "" {
		return s.createProgramEnrollment(ctx, in)
	}

	errs, err := s.validator.Validate(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	if len(errs) > 0 {
		return nil, []string{strings.Join(errs, ", ")}, nil
	}

	username := in.Username
	if in.Email != "" {
		u, err := s.users.FindUser(ctx, domain.UserQuery{Email: in.Email})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAmbiguousUser) {
				return nil, nil, &domain.UserResolutionError{Email: in.Email, Err: err}
			}
			return nil, nil, fmt.Errorf("resolve user: %w", err)
		}
		username = u.Username
	}

	enrollment, rejection, err := s.createOrUpdate(ctx, username, in)
	if err != nil {
		return nil, nil, err
	}
	if rejection != "" {
		return nil, []string{rejection}, nil
	}

	if in.Attributes != nil {
		if err := s.store.SetEnrollmentAttributes(ctx, username, in.CourseID, in.Attributes); err != nil {
			return nil, nil, fmt.Errorf("set enrollment attributes: %w: %v", domain.ErrFatalStore, err)
		}
	}

	return enrollment, nil, nil
}

// createOrUpdate runs the state machine:
//
//	normal  --ok--> succeeded
//	normal  --exists, force--> update
//	normal  --exists--> failed (rejected: retry with force)
//	normal  --other error, force--> forced
//	normal  --other error--> failed
//	update  --ok--> succeeded
//	update  --error--> forced
//	forced  --ok--> succeeded
//	forced  --error--> failed (ErrEnrollmentFailed)
//
// An existing enrollment without force is a problem with the request, so it
// comes back as a rejection message rather than an error.
func (s *EnrollmentService) createOrUpdate(ctx context.Context, username string, in ports.CreateEnrollmentInput) (*domain.Enrollment, string, error) {
	var (
		enrollment *domain.Enrollment
		rejection  string
		failure    error
		path       enrollState
	)

	state := stateAttemptNormal
	for state != stateSucceeded && state != stateFailed {
		var err error
		from := state

		switch state {
		case stateAttemptNormal:
			enrollment, err = s.store.CreateEnrollment(ctx, username, in.CourseID, in.Mode, in.IsActive)
			switch {
			case err == nil:
				state = stateSucceeded
			case errors.Is(err, domain.ErrEnrollmentExists) && in.Force:
				state = stateAttemptUpdate
			case errors.Is(err, domain.ErrEnrollmentExists):
				rejection = fmt.Sprintf("%v, %v", err, domain.ErrForceRequired)
				state = stateFailed
			case in.Force:
				state = stateAttemptForced
			default:
				failure = fmt.Errorf("%w: %v", domain.ErrFatalStore, err)
				state = stateFailed
			}

		case stateAttemptUpdate:
			enrollment, err = s.store.UpdateEnrollment(ctx, username, in.CourseID, in.Mode, in.IsActive)
			if err == nil {
				state = stateSucceeded
			} else {
				state = stateAttemptForced
			}

		case stateAttemptForced:
			enrollment, err = s.forceEnroll(ctx, username, in)
			if err == nil {
				state = stateSucceeded
			} else {
				s.log.Warn().Err(err).
					Str("username", username).
					Str("course_id", in.CourseID).
					Str("mode", in.Mode).
					Bool("is_active", in.IsActive).
					Msg("forced enrollment failed")
				failure = fmt.Errorf("%w: %v", domain.ErrEnrollmentFailed, err)
				state = stateFailed
			}
		}

		if err != nil {
			s.log.Debug().Err(err).Str("from", from.String()).Str("to", state.String()).Msg("enrollment transition")
		}
		if state == stateSucceeded {
			path = from
		}
	}

	if state == stateFailed {
		metrics.EnrollmentsTotal.WithLabelValues(stateFailed.String()).Inc()
		return nil, rejection, failure
	}

	metrics.EnrollmentsTotal.WithLabelValues(path.String()).Inc()
	s.log.Info().
		Str("username", username).
		Str("course_id", in.CourseID).
		Str("mode", enrollment.Mode).
		Str("path", path.String()).
		Msg("enrollment saved")
	return enrollment, "", nil
}

// forceEnroll bypasses access and eligibility checks: it re-resolves the course
// key and the user, enrolls through the low level primitive and then
// overwrites mode and active flag.
func (s *EnrollmentService) forceEnroll(ctx context.Context, username string, in ports.CreateEnrollmentInput) (*domain.Enrollment, error) {
	s.log.Info().Str("username", username).Str("course_id", in.CourseID).Msg("forcing enrollment")

	key, err := domain.ParseCourseKey(in.CourseID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindUser(ctx, domain.UserQuery{Username: username})
	if err != nil {
		return nil, err
	}
	enrollment, err := s.store.Enroll(ctx, user, key)
	if err != nil {
		return nil, err
	}
	return s.store.ForceUpdate(ctx, enrollment, in.Mode, in.IsActive)
}

// createProgramEnrollment enrolls the learner in every course of a program
// through the single course path. Per course failures are collected; the last
// successful enrollment is returned.
func (s *EnrollmentService) createProgramEnrollment(ctx context.Context, in ports.CreateEnrollmentInput) (*domain.Enrollment, []string, error) {
	if s.programs == nil {
		return nil, nil, domain.ErrProgramEnrollmentUnsupported
	}
	courses, err := s.programs.ProgramCourses(ctx, in.ProgramID)
	if err != nil {
		return nil, nil, fmt.Errorf("program %s: %w", in.ProgramID, err)
	}

	if len(courses) == 0 {
		return nil, []string{fmt.Sprintf("program %s has no courses to enroll in", in.ProgramID)}, nil
	}

	var (
		last *domain.Enrollment
		errs []string
	)
	for _, courseID := range courses {
		one := in
		one.ProgramID = ""
		one.CourseID = courseID

		enrollment, verrs, err := s.Create(ctx, one)
		switch {
		case err != nil && isRequestProblem(err):
			errs = append(errs, fmt.Sprintf("course %s: %v", courseID, err))
		case err != nil:
			s.log.Error().Err(err).
				Str("program_id", in.ProgramID).
				Str("course_id", courseID).
				Int("enrolled", len(courses)-len(errs)).
				Msg("program enrollment aborted")
			return nil, nil, fmt.Errorf("program %s, course %s: %w", in.ProgramID, courseID, err)
		case len(verrs) > 0:
			errs = append(errs, fmt.Sprintf("course %s: %s", courseID, strings.Join(verrs, ", ")))
		default:
			last = enrollment
		}
	}

	s.log.Info().Str("program_id", in.ProgramID).Int("courses", len(courses)).Int("failed", len(errs)).Msg("program enrollment processed")
	return last, errs, nil
}

// isRequestProblem reports whether err describes the request rather than the
// store: an unknown or ambiguous learner, a malformed id or an unknown course.
func isRequestProblem(err error) bool {
	if errors.Is(err, domain.ErrFatalStore) {
		return false
	}
	var re *domain.UserResolutionError
	return errors.As(err, &re) ||
		errors.Is(err, domain.ErrInvalidIdentifier) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound)
}
