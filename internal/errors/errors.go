package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeValidation = "VALIDATION"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"

	// Justification workflow errors
	ErrCodeBlocked         = "BLOCKED"
	ErrCodePendingExists   = "PENDING_EXISTS"
	ErrCodeAlreadyReviewed = "ALREADY_REVIEWED"

	// Evidence errors
	ErrCodeFileTooLarge = "FILE_TOO_LARGE"
	ErrCodeInvalidMime  = "INVALID_MIME"

	// Rule-gated creation errors
	ErrCodeNoRule                = "NO_RULE"
	ErrCodeRecorrenciaNotAllowed = "RECORRENCIA_NOT_ALLOWED"

	// Service errors
	ErrCodeInternal = "INTERNAL"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// StatusOf maps an error code to its HTTP status.
func StatusOf(code string) int {
	switch code {
	case ErrCodeUnauthorized, ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeValidation, ErrCodeInvalidMime, ErrCodeNoRule, ErrCodeRecorrenciaNotAllowed:
		return http.StatusBadRequest
	case ErrCodeBlocked, ErrCodePendingExists, ErrCodeAlreadyReviewed:
		return http.StatusConflict
	case ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// RespondWithCode sends an error response with the status derived from the code.
func RespondWithCode(c *gin.Context, code, message string) {
	RespondWithError(c, StatusOf(code), NewAPIError(code, message))
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithCode(c, ErrCodeUnauthorized, message)
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithCode(c, ErrCodeForbidden, message)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithCode(c, ErrCodeNotFound, message)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithCode(c, ErrCodeValidation, message)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithCode(c, ErrCodeInternal, message)
}
