package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors. Detected before any file or subprocess is touched.
const (
	// ErrCodeInvalidInput indicates an unsupported format, theme, quality or size.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field such as the diagram code is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Diagram errors.
const (
	// ErrCodeSyntax indicates the source failed the structural pre-check.
	ErrCodeSyntax ErrorCode = "SYNTAX_ERROR"
	// ErrCodeRenderFailed indicates the rendering engine exited non-zero.
	ErrCodeRenderFailed ErrorCode = "RENDER_FAILED"
	// ErrCodeTimeout indicates the rendering engine exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeCanceled indicates the caller went away before the engine finished.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// Capacity errors (retryable by the caller).
const (
	// ErrCodeServiceUnavailable indicates every render slot is busy.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeRateLimited indicates the client is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Internal errors
const (
	// ErrCodeIO indicates a workspace, write or read failure.
	ErrCodeIO ErrorCode = "IO_ERROR"
	// ErrCodeInternal indicates an unexpected error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeRateLimited:        true,
	ErrCodeTimeout:            true,
	ErrCodeCanceled:           false,
	ErrCodeIO:                 false,
	ErrCodeRenderFailed:       false,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates the caller may retry.
// The pipeline itself never retries.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
