package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors keep their own codes
// (SERVICE_CHARGE_MISMATCH, REQUEST_REJECTED, ...) so clients can
// match on them directly.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeRateLimited is used when the rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	// ErrCodeRequestTooLarge is used when the body exceeds the size limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Identity
	"INVALID_CREDENTIALS":   http.StatusUnauthorized,
	"INVALID_REFRESH_TOKEN": http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED":   http.StatusForbidden,
	"EMAIL_TAKEN":           http.StatusConflict,
	"ALREADY_EXISTS":        http.StatusConflict,
	"CONCURRENCY_CONFLICT":  http.StatusConflict,

	// Request lifecycle rules
	"SERVICE_CHARGE_MISMATCH": http.StatusBadRequest,
	"DATA_NEEDED_MISMATCH":    http.StatusBadRequest,
	"REQUEST_REJECTED":        http.StatusUnprocessableEntity,
	"INVALID_TRANSITION":      http.StatusUnprocessableEntity,
	"INVALID_STATE":           http.StatusUnprocessableEntity,
	"ALREADY_ACTIVE":          http.StatusUnprocessableEntity,
	"ALREADY_DEACTIVATED":     http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Validation-style codes default to 400, anything else unknown to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	for _, prefix := range []string{"INVALID_", "MISSING_", "EMPTY_"} {
		if strings.HasPrefix(code, prefix) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
