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
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeUnitOccupied is used when a tenancy would overlap an active one
	ErrCodeUnitOccupied = "ERR_UNIT_OCCUPIED"
	// ErrCodeRunInProgress is used when a batch run already holds the lock
	ErrCodeRunInProgress = "ERR_RUN_IN_PROGRESS"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeValidationFormat: http.StatusBadRequest,
	ErrCodeValidationRange:  http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:  http.StatusUnprocessableEntity,
	ErrCodeUnitOccupied:  http.StatusConflict,
	ErrCodeRunInProgress: http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the wire format
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"UNIT_OCCUPIED":        ErrCodeUnitOccupied,
	"RUN_IN_PROGRESS":      ErrCodeRunInProgress,

	// constructor validation failures
	"INVALID_BUILDING":     ErrCodeValidation,
	"INVALID_UNIT":         ErrCodeValidation,
	"INVALID_UNIT_NAME":    ErrCodeValidation,
	"INVALID_TENANT":       ErrCodeValidation,
	"INVALID_TENANCY":      ErrCodeValidation,
	"INVALID_RENT":         ErrCodeValidation,
	"INVALID_DEPOSIT":      ErrCodeValidation,
	"INVALID_AMOUNT":       ErrCodeValidation,
	"INVALID_START_DATE":   ErrCodeValidation,
	"INVALID_DUE_DATE":     ErrCodeValidation,
	"INVALID_DATE_WINDOW":  ErrCodeValidation,
	"INVALID_PERIOD":       ErrCodeValidationRange,
	"INVALID_PAYMENT_TYPE": ErrCodeValidation,
	"INVALID_STATUS":       ErrCodeValidation,
	"INVALID_REASON":       ErrCodeValidation,
	"MISSING_END_DATE":     ErrCodeBusinessRule,
	"NOT_PAST_DUE":         ErrCodeBusinessRule,
}

// NormalizeErrorCode converts a domain error code to the wire format.
// Unknown codes pass through as-is.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := DomainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
