package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

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

// WithMessage returns a copy of e carrying message. The predefined errors
// are shared, so they are never modified in place.
func (e *APIError) WithMessage(message string) *APIError {
	c := *e
	c.Message = message
	return &c
}

// WithDetails returns a copy of e carrying details.
func (e *APIError) WithDetails(details interface{}) *APIError {
	c := *e
	c.Details = details
	return &c
}

// ValidationError represents validation errors
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

// Errors answered by the explorer API.
var (
	ErrValidationFailed     = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrTaskNotFound         = New(http.StatusNotFound, "TASK_NOT_FOUND", "Load task not found")
	ErrDatasetNotLoaded     = New(http.StatusConflict, "DATASET_NOT_LOADED", "No dataset is loaded. Load a CSV or Excel file first.")
	ErrUnsupportedMediaType = New(http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Unsupported content type")
	ErrInvalidColumn        = New(http.StatusUnprocessableEntity, "INVALID_COLUMN", "Column is not valid for this dataset")
	ErrExportFailed         = New(http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export results")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return ErrValidationFailed.WithDetails(ValidationError{Field: field, Message: message})
}

// ValidationFailedError reports err as the reason a request was rejected.
func ValidationFailedError(err error) *APIError {
	return ErrValidationFailed.WithMessage(err.Error())
}

// InvalidColumnError names the offending column through err's message.
func InvalidColumnError(err error) *APIError {
	return ErrInvalidColumn.WithMessage(err.Error())
}

// TaskNotFoundError reports an unknown load task ID.
func TaskNotFoundError(err error) *APIError {
	return ErrTaskNotFound.WithMessage(err.Error())
}

// ExportFailedError reports a plot or summary that could not be encoded.
func ExportFailedError(format string) *APIError {
	return ErrExportFailed.WithDetails(map[string]interface{}{"format": format})
}

// FileSystemError creates a filesystem error
func FileSystemError(operation string, err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, "FILESYSTEM_ERROR", fmt.Sprintf("File system error during %s", operation), err.Error())
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return ErrValidationFailed.WithDetails(ValidationErrors{Errors: errors})
}
