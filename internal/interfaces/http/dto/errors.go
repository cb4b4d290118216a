package dto

import "net/http"

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
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
	// ErrCodeAlreadyPaid is used when mutating a slip the bank already settled as paid
	ErrCodeAlreadyPaid = "ERR_ALREADY_PAID"
	// ErrCodeNotRegistered is used for bank operations on an unregistered slip
	ErrCodeNotRegistered = "ERR_NOT_REGISTERED"
	// ErrCodeNoEmail is used when the payer has no deliverable address
	ErrCodeNoEmail = "ERR_NO_EMAIL"
	// ErrCodeCredentialIncomplete is used when a bank credential misses required fields
	ErrCodeCredentialIncomplete = "ERR_CREDENTIAL_INCOMPLETE"
	// ErrCodeCertificateExpired is used when the credential's client certificate expired
	ErrCodeCertificateExpired = "ERR_CERTIFICATE_EXPIRED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeAlreadyPaid:          http.StatusUnprocessableEntity,
	ErrCodeNotRegistered:        http.StatusUnprocessableEntity,
	ErrCodeNoEmail:              http.StatusUnprocessableEntity,
	ErrCodeCredentialIncomplete: http.StatusUnprocessableEntity,
	ErrCodeCertificateExpired:   http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the API's standardized codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"INVALID_COMPETENCIA":   ErrCodeInvalidInput,
	"ALREADY_PAID":          ErrCodeAlreadyPaid,
	"NOT_REGISTERED":        ErrCodeNotRegistered,
	"NO_EMAIL":              ErrCodeNoEmail,
	"CREDENTIAL_INCOMPLETE": ErrCodeCredentialIncomplete,
	"CERTIFICATE_EXPIRED":   ErrCodeCertificateExpired,
	"INTERNAL_ERROR":        ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
