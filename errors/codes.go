package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Engine communication errors
const (
	// ErrCodeTransportFailure indicates the engine could not be reached or
	// answered with a non-success status.
	ErrCodeTransportFailure ErrorCode = "TRANSPORT_FAILURE"
	// ErrCodeDeserializationFailure indicates an engine payload could not be decoded.
	ErrCodeDeserializationFailure ErrorCode = "DESERIALIZATION_FAILURE"
	// ErrCodeServiceUnavailable indicates the engine is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Lookup errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeLookupMiss indicates no actionable task matched a node.
	ErrCodeLookupMiss ErrorCode = "LOOKUP_MISS"
	// ErrCodeConflict indicates the request conflicts with the current interaction state.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Validation errors
const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeStorage  ErrorCode = "STORAGE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransportFailure:   true,
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeStorage:            true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
