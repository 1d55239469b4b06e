package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/ports"
)

// EnrollmentHandler handles HTTP requests for course enrollments.
type EnrollmentHandler struct {
	enrollments ports.EnrollmentService
	batch       ports.BatchEnroller
	maxBatch    int
}

func NewEnrollmentHandler(enrollments ports.EnrollmentService, batch ports.BatchEnroller, maxBatch int) *EnrollmentHandler {
	if maxBatch <= 0 {
		maxBatch = 100
	}
	return &EnrollmentHandler{enrollments: enrollments, batch: batch, maxBatch: maxBatch}
}

// Create enrolls a learner in a course, or in every course of a program.
//
// @Summary      Enroll a learner
// @Description  Without force an existing enrollment is rejected. With force the
// @Description  enrollment is updated, falling back to a forced enrollment.
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createEnrollmentRequest  true  "Enrollment request"
// @Success      200   {object}  enrollmentResponse
// @Failure      400   {object}  enrollmentResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/enrollments [post]
func (h *EnrollmentHandler) Create(c echo.Context) error {
	var req createEnrollmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	enrollment, errs, err := h.enrollments.Create(c.Request().Context(), req.toInput(currentSite(c)))
	if err != nil {
		return respondError(c, err)
	}
	if enrollment == nil {
		return c.JSON(http.StatusBadRequest, enrollmentResponse{Errors: errs})
	}

	// Program enrollments may succeed partially.
	return c.JSON(http.StatusOK, enrollmentResponse{Enrollment: enrollment, Errors: errs})
}

// Validate reports the problems of an enrollment request without enrolling.
//
// @Summary      Validate an enrollment request
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createEnrollmentRequest  true  "Enrollment request"
// @Success      200   {object}  validateEnrollmentResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/enrollments/validate [post]
func (h *EnrollmentHandler) Validate(c echo.Context) error {
	var req createEnrollmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	errs, err := h.enrollments.Validate(c.Request().Context(), req.toInput(currentSite(c)))
	if err != nil {
		return respondError(c, err)
	}
	if errs == nil {
		errs = []string{}
	}

	return c.JSON(http.StatusOK, validateEnrollmentResponse{Valid: len(errs) == 0, Errors: errs})
}

// Batch enrolls many learners at once. Results keep the request order.
//
// @Summary      Batch enrollment
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      batchEnrollmentRequest  true  "Enrollment requests"
// @Success      207   {object}  batchEnrollmentResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/enrollments/batch [post]
func (h *EnrollmentHandler) Batch(c echo.Context) error {
	var req batchEnrollmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	if len(req.Enrollments) > h.maxBatch {
		return respondError(c, domain.NewValidationError(fmt.Sprintf("at most %d enrollments per batch", h.maxBatch)))
	}

	site := currentSite(c)
	inputs := make([]ports.CreateEnrollmentInput, 0, len(req.Enrollments))
	for _, r := range req.Enrollments {
		inputs = append(inputs, r.toInput(site))
	}

	results := h.batch.Run(c.Request().Context(), inputs)

	resp := batchEnrollmentResponse{Results: make([]batchItemResponse, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, batchItem(r))
	}
	return c.JSON(http.StatusMultiStatus, resp)
}

func batchItem(r ports.EnrollmentResult) batchItemResponse {
	item := batchItemResponse{
		Learner:    r.Input.Learner(),
		CourseID:   r.Input.CourseID,
		Enrollment: r.Enrollment,
		Errors:     r.Errors,
	}
	switch {
	case r.Err != nil:
		code, msg, details, _ := ErrorStatus(r.Err)
		item.Status, item.Error = code, msg
		if details != nil {
			item.Errors = details
		}
	case r.Enrollment == nil:
		item.Status = http.StatusBadRequest
	default:
		item.Status = http.StatusOK
	}
	return item
}
