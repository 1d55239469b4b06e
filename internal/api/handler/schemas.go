package handler

import (
	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

// --- Accounts ---

type createAccountRequest struct {
	Email              string `json:"email"    validate:"omitempty,email,max=254"`
	Username           string `json:"username" validate:"omitempty,max=150"`
	Password           string `json:"password"`
	Name               string `json:"name"     validate:"omitempty,max=255"`
	LanguagePreference string `json:"language"`
	Activate           bool   `json:"activate"`
}

func (r createAccountRequest) toInput(site *domain.Site) ports.CreateAccountInput {
	return ports.CreateAccountInput{
		Email:              r.Email,
		Username:           r.Username,
		Password:           r.Password,
		FullName:           r.Name,
		Site:               site,
		LanguagePreference: r.LanguagePreference,
		Activate:           r.Activate,
	}
}

type accountResponse struct {
	User     *domain.User `json:"user"`
	Warnings []string     `json:"warnings,omitempty"`
}

// --- Enrollments ---

type enrollmentAttributeRequest struct {
	Namespace string `json:"namespace" validate:"required"`
	Name      string `json:"name"      validate:"required"`
	Value     string `json:"value"`
}

type createEnrollmentRequest struct {
	Email      string                       `json:"email"    validate:"omitempty,email"`
	Username   string                       `json:"username"`
	CourseID   string                       `json:"course_id"`
	Mode       string                       `json:"mode"`
	IsActive   *bool                        `json:"is_active"`
	Force      bool                         `json:"force"`
	Attributes []enrollmentAttributeRequest `json:"enrollment_attributes" validate:"dive"`
	ProgramID  string                       `json:"program_id"`
}

// toInput applies the request defaults: audit mode and an active enrollment.
func (r createEnrollmentRequest) toInput(site *domain.Site) ports.CreateEnrollmentInput {
	in := ports.CreateEnrollmentInput{
		Email:     r.Email,
		Username:  r.Username,
		CourseID:  r.CourseID,
		Mode:      r.Mode,
		IsActive:  true,
		Force:     r.Force,
		ProgramID: r.ProgramID,
		Site:      site,
	}
	if in.Mode == "" {
		in.Mode = domain.ModeAudit
	}
	if r.IsActive != nil {
		in.IsActive = *r.IsActive
	}
	if r.Attributes != nil {
		in.Attributes = make([]domain.EnrollmentAttribute, 0, len(r.Attributes))
		for _, a := range r.Attributes {
			in.Attributes = append(in.Attributes, domain.EnrollmentAttribute{Namespace: a.Namespace, Name: a.Name, Value: a.Value})
		}
	}
	return in
}

type enrollmentResponse struct {
	Enrollment *domain.Enrollment `json:"enrollment,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
}

type validateEnrollmentResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

type batchEnrollmentRequest struct {
	Enrollments []createEnrollmentRequest `json:"enrollments" validate:"required,min=1,dive"`
}

type batchItemResponse struct {
	Status     int                `json:"status"`
	Learner    string             `json:"learner"`
	CourseID   string             `json:"course_id"`
	Enrollment *domain.Enrollment `json:"enrollment,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type batchEnrollmentResponse struct {
	Results []batchItemResponse `json:"results"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}
