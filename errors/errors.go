package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Wrap returns a copy of e whose message is prefixed, keeping code, status
// and details. Used when an outer step adds its own context.
func (e *AppError) Wrap(prefix string) *AppError {
	cp := *e
	cp.Message = prefix + ": " + e.Message
	cp.Cause = e
	return &cp
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Input ---

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"field": field},
	}
}

// InvalidInput creates a new AppError for invalid input. The reason is
// reported verbatim.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: reason,
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Unsupported reports a value outside its allowed set, naming both.
//
//	Unsupported("format", "gif", []string{"svg", "png"})
//	// Unsupported format: gif. Supported: svg, png
func Unsupported(field, value string, allowed []string) *AppError {
	return InvalidInput(field, fmt.Sprintf("Unsupported %s: %s. Supported: %s", field, value, strings.Join(allowed, ", "))).
		WithDetail("value", value).
		WithDetail("allowed", allowed)
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// --- Diagram ---

// Syntax creates a new AppError for a structural pre-check rejection.
func Syntax(reason string) *AppError {
	return &AppError{
		Code: ErrCodeSyntax, Message: reason,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// RenderFailed creates a new AppError for a rendering engine failure. The
// message is the already normalized engine diagnostic.
func RenderFailed(message string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeRenderFailed, Message: "Render failed: " + message,
		HTTPStatus: http.StatusUnprocessableEntity, Cause: cause,
	}
}

// Timeout creates a new AppError for an engine run that hit its deadline.
func Timeout(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "Render failed: Rendering timed out",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation}, Cause: cause,
	}
}

// StatusClientClosedRequest is the non-standard status logged when the
// client disconnects before the response is written.
const StatusClientClosedRequest = 499

// Canceled creates a new AppError for an engine run abandoned because the
// caller's context was canceled.
func Canceled(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeCanceled, Message: "Render canceled",
		HTTPStatus: StatusClientClosedRequest,
		Details:    map[string]any{"operation": operation}, Cause: cause,
	}
}

// --- Capacity ---

// ServiceUnavailable creates a new AppError when no render slot is free.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is busy. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// RateLimited creates a new AppError for too many requests.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Too many requests. Please wait a moment and try again.",
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
	}
}

// --- Internal ---

// IO creates a new AppError for a filesystem failure. The step names the
// component that failed, e.g. "Render preparation failed".
func IO(step string, cause error) *AppError {
	msg := step
	if cause != nil {
		msg = fmt.Sprintf("%s: %s", step, cause.Error())
	}
	return &AppError{
		Code: ErrCodeIO, Message: msg,
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// Internal creates a new AppError for an unexpected error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
