package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/access"
	analyticsdomain "github.com/bizzy604/HIS-sub000/internal/analytics/domain"
	appointmentdomain "github.com/bizzy604/HIS-sub000/internal/appointment/domain"
	"github.com/bizzy604/HIS-sub000/internal/authorization"
	billingdomain "github.com/bizzy604/HIS-sub000/internal/billing/domain"
	enrollmentdomain "github.com/bizzy604/HIS-sub000/internal/enrollment/domain"
	laborderdomain "github.com/bizzy604/HIS-sub000/internal/laborder/domain"
	patientdomain "github.com/bizzy604/HIS-sub000/internal/patient/domain"
	pharmacydomain "github.com/bizzy604/HIS-sub000/internal/pharmacy/domain"
	prescriptiondomain "github.com/bizzy604/HIS-sub000/internal/prescription/domain"
	programdomain "github.com/bizzy604/HIS-sub000/internal/program/domain"
	providerdomain "github.com/bizzy604/HIS-sub000/internal/provider/domain"
	visitdomain "github.com/bizzy604/HIS-sub000/internal/visit/domain"
	vitalsdomain "github.com/bizzy604/HIS-sub000/internal/vitals/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrTooManyRequest = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case isUnauthenticatedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, access.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequest):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, patientdomain.ErrInvalidName),
		errors.Is(err, patientdomain.ErrInvalidID),
		errors.Is(err, programdomain.ErrInvalidName),
		errors.Is(err, programdomain.ErrInvalidID),
		errors.Is(err, enrollmentdomain.ErrInvalidID),
		errors.Is(err, enrollmentdomain.ErrInvalidPatient),
		errors.Is(err, enrollmentdomain.ErrInvalidProgram),
		errors.Is(err, enrollmentdomain.ErrInvalidStatus),
		errors.Is(err, appointmentdomain.ErrInvalidID),
		errors.Is(err, appointmentdomain.ErrInvalidPatient),
		errors.Is(err, appointmentdomain.ErrInvalidSchedule),
		errors.Is(err, appointmentdomain.ErrInvalidStatus),
		errors.Is(err, visitdomain.ErrInvalidID),
		errors.Is(err, visitdomain.ErrInvalidPatient),
		errors.Is(err, visitdomain.ErrInvalidAppointment),
		errors.Is(err, vitalsdomain.ErrInvalidPatient),
		errors.Is(err, vitalsdomain.ErrInvalidVisit),
		errors.Is(err, vitalsdomain.ErrEmptyReading),
		errors.Is(err, vitalsdomain.ErrInvalidReading),
		errors.Is(err, prescriptiondomain.ErrInvalidID),
		errors.Is(err, prescriptiondomain.ErrInvalidPatient),
		errors.Is(err, prescriptiondomain.ErrEmptyItems),
		errors.Is(err, prescriptiondomain.ErrInvalidItem),
		errors.Is(err, laborderdomain.ErrInvalidID),
		errors.Is(err, laborderdomain.ErrInvalidPatient),
		errors.Is(err, laborderdomain.ErrInvalidVisit),
		errors.Is(err, laborderdomain.ErrInvalidTest),
		errors.Is(err, laborderdomain.ErrInvalidStatus),
		errors.Is(err, laborderdomain.ErrEmptyResults),
		errors.Is(err, pharmacydomain.ErrInvalidName),
		errors.Is(err, pharmacydomain.ErrInvalidID),
		errors.Is(err, pharmacydomain.ErrInvalidQuantity),
		errors.Is(err, pharmacydomain.ErrInvalidBatch),
		errors.Is(err, billingdomain.ErrInvalidID),
		errors.Is(err, billingdomain.ErrInvalidPatient),
		errors.Is(err, billingdomain.ErrEmptyItems),
		errors.Is(err, billingdomain.ErrInvalidItem),
		errors.Is(err, billingdomain.ErrInvalidDiscount),
		errors.Is(err, billingdomain.ErrInvalidAmount),
		errors.Is(err, billingdomain.ErrInvalidMethod),
		errors.Is(err, analyticsdomain.ErrInvalidRange):
		return true
	default:
		return false
	}
}

func isUnauthenticatedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, providerdomain.ErrInvalidToken),
		errors.Is(err, access.ErrUnauthenticated),
		errors.Is(err, patientdomain.ErrUnauthenticated),
		errors.Is(err, programdomain.ErrUnauthenticated),
		errors.Is(err, enrollmentdomain.ErrUnauthenticated),
		errors.Is(err, appointmentdomain.ErrUnauthenticated),
		errors.Is(err, visitdomain.ErrUnauthenticated),
		errors.Is(err, vitalsdomain.ErrUnauthenticated),
		errors.Is(err, prescriptiondomain.ErrUnauthenticated),
		errors.Is(err, laborderdomain.ErrUnauthenticated),
		errors.Is(err, pharmacydomain.ErrUnauthenticated),
		errors.Is(err, billingdomain.ErrUnauthenticated),
		errors.Is(err, analyticsdomain.ErrUnauthenticated):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, enrollmentdomain.ErrAlreadyEnrolled),
		errors.Is(err, enrollmentdomain.ErrNotActive),
		errors.Is(err, appointmentdomain.ErrInvalidTransition),
		errors.Is(err, prescriptiondomain.ErrNotActive),
		errors.Is(err, laborderdomain.ErrInvalidTransition),
		errors.Is(err, pharmacydomain.ErrInsufficientStock),
		errors.Is(err, billingdomain.ErrBillClosed),
		errors.Is(err, billingdomain.ErrOverpayment),
		errors.Is(err, billingdomain.ErrIdempotencyConflict):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, access.ErrNotFound),
		errors.Is(err, patientdomain.ErrNotFound),
		errors.Is(err, programdomain.ErrNotFound),
		errors.Is(err, enrollmentdomain.ErrNotFound),
		errors.Is(err, appointmentdomain.ErrNotFound),
		errors.Is(err, visitdomain.ErrNotFound),
		errors.Is(err, prescriptiondomain.ErrNotFound),
		errors.Is(err, laborderdomain.ErrNotFound),
		errors.Is(err, pharmacydomain.ErrNotFound),
		errors.Is(err, billingdomain.ErrNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
