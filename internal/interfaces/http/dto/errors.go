package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeValidation is used when request validation fails
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication and authorization error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeInvalidCredentials is used when a login attempt fails
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeForbidden is used when the role's capabilities exclude the action
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeScopeViolation is used when the target record lies outside the
	// caller's accessible entity scope
	ErrCodeScopeViolation = "ERR_SCOPE_VIOLATION"
	// ErrCodeModuleDisabled is used when the target entity has the relevant
	// module switched off
	ErrCodeModuleDisabled = "ERR_MODULE_DISABLED"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeSequenceExhausted is used when no free reference code could be
	// found within the collision walk
	ErrCodeSequenceExhausted = "ERR_SEQUENCE_EXHAUSTED"
)

// Infrastructure error codes
const (
	// ErrCodeStorageUnavailable is used when a storage operation failed
	// transiently and the client should retry
	ErrCodeStorageUnavailable = "ERR_STORAGE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:    http.StatusInternalServerError,
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeScopeViolation:     http.StatusForbidden,
	ErrCodeModuleDisabled:     http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeSequenceExhausted: http.StatusConflict,

	ErrCodeStorageUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 if the error code is not mapped.
func GetHTTPStatus(errorCode string) int {
	if status, ok := ErrorCodeHTTPStatus[errorCode]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes.
// Domain codes describe what went wrong in the model's terms; API codes
// group them by how the client should react.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,

	"INVALID_CREDENTIALS": ErrCodeInvalidCredentials,
	"ACCESS_DENIED":       ErrCodeForbidden,
	"SCOPE_VIOLATION":     ErrCodeScopeViolation,

	"SEQUENCE_EXHAUSTED": ErrCodeSequenceExhausted,
	"TRANSIENT_STORAGE":  ErrCodeStorageUnavailable,

	"ALREADY_ACTIVE":          ErrCodeInvalidState,
	"ALREADY_DEACTIVATED":     ErrCodeInvalidState,
	"ALREADY_DISABLED":        ErrCodeInvalidState,
	"ALREADY_INACTIVE":        ErrCodeInvalidState,
	"CODE_ALREADY_ASSIGNED":   ErrCodeInvalidState,
	"MODULE_ALREADY_ENABLED":  ErrCodeInvalidState,
	"MODULE_ALREADY_DISABLED": ErrCodeInvalidState,
	"INVALID_ACCOUNT":         ErrCodeInvalidState,
	"INVALID_ENTITY":          ErrCodeInvalidState,

	"INVALID_AMOUNT":       ErrCodeValidation,
	"INVALID_CLIENT":       ErrCodeValidation,
	"INVALID_CODE":         ErrCodeValidation,
	"INVALID_CODE_FORMAT":  ErrCodeValidation,
	"INVALID_CURRENCY":     ErrCodeValidation,
	"INVALID_DISCOUNT":     ErrCodeValidation,
	"INVALID_DISPLAY_NAME": ErrCodeValidation,
	"INVALID_EMAIL":        ErrCodeValidation,
	"INVALID_IMPORT_FILE":  ErrCodeValidation,
	"INVALID_INPUT":        ErrCodeValidation,
	"INVALID_MODULE":       ErrCodeValidation,
	"INVALID_NAME":         ErrCodeValidation,
	"INVALID_PASSWORD":     ErrCodeValidation,
	"INVALID_ROLE":         ErrCodeValidation,
	"INVALID_SERIES":       ErrCodeValidation,
	"INVALID_SLUG":         ErrCodeValidation,
	"INVALID_TAX_RATE":     ErrCodeValidation,
	"INVALID_USERNAME":     ErrCodeValidation,
	"UNKNOWN_TAX_STATUS":   ErrCodeValidation,

	"PASSWORD_HASH_ERROR": ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its API error code.
// Unmapped codes pass through unchanged, which lets callers register new
// API codes without touching this table.
func NormalizeErrorCode(code string) string {
	if mapped, ok := DomainErrorCodeMapping[code]; ok {
		return mapped
	}
	return code
}
