package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// ErrorType classifies application errors at the pipeline boundary.
// Parse and schema errors are client faults; everything else is a system
// fault.
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeSchema     ErrorType = "SCHEMA"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeInternal   ErrorType = "INTERNAL"
)

// AppError represents an application-specific error carried through the
// pipeline until the transport layer maps it onto an HTTP response.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewParseError marks a byte stream that could not be decoded as the
// selected tabular format.
func NewParseError(message string, cause error) *AppError {
	return &AppError{Type: ErrTypeParsing, Message: message, Cause: cause}
}

// NewSchemaError marks a table that is missing a required canonical column.
func NewSchemaError(message string) *AppError {
	return &AppError{Type: ErrTypeSchema, Message: message}
}

// IsClientFault reports whether the error should surface as a 400-class
// response rather than a system fault.
func IsClientFault(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Type {
	case ErrTypeParsing, ErrTypeSchema, ErrTypeValidation:
		return true
	}
	return false
}

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents a single failed request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	ErrInvalidRequest    = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed  = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrMissingParameter  = New(http.StatusBadRequest, "MISSING_PARAMETER", "Required parameter is missing")
	ErrPayloadTooLarge   = New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Uploaded file exceeds the maximum allowed size")
	ErrNotFound          = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
	ErrInternalServer    = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrAnalysisFailed    = New(http.StatusInternalServerError, "ANALYSIS_FAILED", "Analysis pipeline failed")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// DataParsingError surfaces a client-input fault (malformed upload, missing
// required column) with a descriptive message.
func DataParsingError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "DATA_PARSING_ERROR", "Data parsing error", err.Error())
}

// AnalysisError surfaces an internal pipeline failure.
func AnalysisError(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, "ANALYSIS_FAILED", "Analysis pipeline failed", err.Error())
}

// ErrorResponse represents a standard error response envelope
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: err}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}
