package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/ports"
)

type stubEnrollmentService struct {
	createFn   func(ctx context.Context, in ports.CreateEnrollmentInput) (*domain.Enrollment, []string, error)
	validateFn func(ctx context.Context, in ports.CreateEnrollmentInput) ([]string, error)
}

func (s *stubEnrollmentService) Create(ctx context.Context, in ports.CreateEnrollmentInput) (*domain.Enrollment, []string, error) {
	return s.createFn(ctx, in)
}

func (s *stubEnrollmentService) Validate(ctx context.Context, in ports.CreateEnrollmentInput) ([]string, error) {
	return s.validateFn(ctx, in)
}

type stubBatch struct {
	got []ports.CreateEnrollmentInput
	out []ports.EnrollmentResult
}

func (s *stubBatch) Run(_ context.Context, inputs []ports.CreateEnrollmentInput) []ports.EnrollmentResult {
	s.got = inputs
	return s.out
}

const courseID = "course-v1:OrgA+CS101+2024"

func TestEnrollmentHandler_Create_AppliesDefaults(t *testing.T) {
	var got ports.CreateEnrollmentInput
	svc := &stubEnrollmentService{
		createFn: func(_ context.Context, in ports.CreateEnrollmentInput) (*domain.Enrollment, []string, error) {
			got = in
			return &domain.Enrollment{Username: "jane", CourseID: in.CourseID, Mode: in.Mode, IsActive: in.IsActive}, nil, nil
		},
	}
	h := NewEnrollmentHandler(svc, &stubBatch{}, 0)

	e := newTestEcho()
	c, rec := newJSONContext(e, http.MethodPost, "/v1/enrollments",
		`{"username":"jane","course_id":"`+courseID+`","enrollment_attributes":[{"namespace":"credit","name":"provider_id","value":"asu"}]}`)
	c.Set("site", testSite)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Mode != domain.ModeAudit || !got.IsActive || got.Site != testSite {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if len(got.Attributes) != 1 || got.Attributes[0].Name != "provider_id" {
		t.Fatalf("attributes not mapped: %+v", got.Attributes)
	}
}

func TestEnrollmentHandler_Create_ExplicitInactive(t *testing.T) {
	var got ports.CreateEnrollmentInput
	svc := &stubEnrollmentService{
		createFn: func(_ context.Context, in ports.CreateEnrollmentInput) (*domain.Enrollment, []string, error) {
			got = in
			return &domain.Enrollment{}, nil, nil
		},
	}
	h := NewEnrollmentHandler(svc, &stubBatch{}, 0)

	c, _ := newJSONContext(newTestEcho(), http.MethodPost, "/v1/enrollments",
		`{"username":"jane","course_id":"`+courseID+`","mode":"verified","is_active":false}`)
	_ = h.Create(c)

	if got.IsActive || got.Mode != "verified" {
		t.Fatalf("explicit values overridden: %+v", got)
	}
}

func TestEnrollmentHandler_Create_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		enroll   *domain.Enrollment
		errs     []string
		err      error
		want     int
		wantBody string
	}{
		{
			name:     "rejected request",
			errs:     []string{"enrollment already exists, use force to update the existing enrollment"},
			want:     http.StatusBadRequest,
			wantBody: "use force",
		},
		{
			name:     "unknown learner",
			err:      &domain.UserResolutionError{Email: "x@example.com", Err: domain.ErrUserNotFound},
			want:     http.StatusBadRequest,
			wantBody: "No user found with that email",
		},
		{
			name:     "forced enrollment failed",
			err:      domain.ErrEnrollmentFailed,
			want:     http.StatusInternalServerError,
			wantBody: "enrollment failed",
		},
		{
			name:     "partial program enrollment",
			enroll:   &domain.Enrollment{CourseID: courseID},
			errs:     []string{"course course-v1:OrgB+Other+2024: Invalid course_id"},
			want:     http.StatusOK,
			wantBody: "OrgB",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubEnrollmentService{
				createFn: func(context.Context, ports.CreateEnrollmentInput) (*domain.Enrollment, []string, error) {
					return tt.enroll, tt.errs, tt.err
				},
			}
			h := NewEnrollmentHandler(svc, &stubBatch{}, 0)

			c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/v1/enrollments",
				`{"email":"x@example.com","course_id":"`+courseID+`"}`)
			if err := h.Create(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("expected body to contain %q, got %s", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestEnrollmentHandler_Validate(t *testing.T) {
	tests := []struct {
		name      string
		errs      []string
		wantValid bool
	}{
		{"valid", nil, true},
		{"invalid", []string{"Mode 'gold' not found"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubEnrollmentService{
				validateFn: func(context.Context, ports.CreateEnrollmentInput) ([]string, error) {
					return tt.errs, nil
				},
			}
			h := NewEnrollmentHandler(svc, &stubBatch{}, 0)

			c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/v1/enrollments/validate",
				`{"username":"jane","course_id":"`+courseID+`"}`)
			if err := h.Validate(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			var resp validateEnrollmentResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Valid != tt.wantValid || resp.Errors == nil {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestEnrollmentHandler_Batch(t *testing.T) {
	batch := &stubBatch{
		out: []ports.EnrollmentResult{
			{Input: ports.CreateEnrollmentInput{Username: "jane", CourseID: courseID}, Enrollment: &domain.Enrollment{Username: "jane"}},
			{Input: ports.CreateEnrollmentInput{Email: "bob@example.com", CourseID: courseID}, Errors: []string{"Mode 'gold' not found"}},
			{Input: ports.CreateEnrollmentInput{Username: "ann", CourseID: courseID}, Err: errors.New("mongo down")},
		},
	}
	h := NewEnrollmentHandler(&stubEnrollmentService{}, batch, 10)

	body := `{"enrollments":[
		{"username":"jane","course_id":"` + courseID + `"},
		{"email":"bob@example.com","course_id":"` + courseID + `","mode":"gold"},
		{"username":"ann","course_id":"` + courseID + `"}]}`
	c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/v1/enrollments/batch", body)
	c.Set("site", testSite)

	if err := h.Batch(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("expected 207, got %d", rec.Code)
	}
	if len(batch.got) != 3 || batch.got[1].Mode != "gold" || batch.got[0].Site != testSite {
		t.Fatalf("unexpected batch input: %+v", batch.got)
	}

	var resp batchEnrollmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	wantStatus := []int{http.StatusOK, http.StatusBadRequest, http.StatusInternalServerError}
	for i, r := range resp.Results {
		if r.Status != wantStatus[i] {
			t.Fatalf("result %d: expected status %d, got %d", i, wantStatus[i], r.Status)
		}
	}
	if resp.Results[1].Learner != "bob@example.com" {
		t.Fatalf("expected learner to be reported, got %q", resp.Results[1].Learner)
	}
	if resp.Results[2].Error != "internal server error" {
		t.Fatalf("store details must not leak, got %q", resp.Results[2].Error)
	}
}

func TestEnrollmentHandler_Batch_Limits(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", `{"enrollments":[]}`},
		{"too many", `{"enrollments":[{"username":"a"},{"username":"b"},{"username":"c"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := &stubBatch{}
			h := NewEnrollmentHandler(&stubEnrollmentService{}, batch, 2)

			c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/v1/enrollments/batch", tt.body)
			if err := h.Batch(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if batch.got != nil {
				t.Fatal("batch must not run")
			}
		})
	}
}
