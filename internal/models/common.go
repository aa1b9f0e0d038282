package models

import "net/http"

// ServiceResult is the uniform envelope every hybrid service operation
// returns to its controller. Callers never need to know which backend
// satisfied the request.
type ServiceResult struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination holds page-based pagination metadata
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Service execution modes derived from the soap enabled flag
const (
	ModeSOAPPrimary  = "soap_primary"
	ModeDatabaseOnly = "database_only"
)

// ServiceStatus reports which execution path the hybrid services are using.
// Not persisted; recomputed on each read from the config flag.
type ServiceStatus struct {
	SOAPEnabled bool   `json:"soapEnabled"`
	Mode        string `json:"mode"`
	Description string `json:"description"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message, details string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Common error codes
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeDatabaseError   = "DATABASE_ERROR"
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodeStudyNotFound   = "STUDY_NOT_FOUND"
	ErrCodeSubjectNotFound = "SUBJECT_NOT_FOUND"
	ErrCodeRateLimited     = "RATE_LIMITED"
)

// HTTPStatusForErrorCode returns the appropriate HTTP status code for an error code
func HTTPStatusForErrorCode(code string) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidationError:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound, ErrCodeStudyNotFound, ErrCodeSubjectNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// LibreClinica status table codes referenced by the gateway
const (
	StatusAvailable   = 1
	StatusPending     = 2
	StatusPrivate     = 3
	StatusUnavailable = 4
	StatusRemoved     = 5
	StatusLocked      = 6
)

// LibreClinica user_type codes. Types 1 (admin) and 3 (technical admin)
// bypass the ownership/assignment visibility filter.
const (
	UserTypeAdmin     = 1
	UserTypeUser      = 2
	UserTypeTechAdmin = 3
)

// IsPrivilegedUserType reports whether a user_type code carries
// administrator-level study visibility.
func IsPrivilegedUserType(userTypeID int) bool {
	return userTypeID == UserTypeAdmin || userTypeID == UserTypeTechAdmin
}
