package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeFetchFailed  = "FETCH_FAILED"

	// Oracle contract codes.
	ErrCodeOracleCall      = "ORACLE_CALL_FAILED"
	ErrCodeOracleTimeout   = "ORACLE_TIMEOUT"
	ErrCodeOracleAuth      = "ORACLE_AUTH_FAILURE"
	ErrCodeOracleRateLimit = "ORACLE_RATE_LIMITED"
	ErrCodeOracleParse     = "ORACLE_PARSE_FAILED"

	// ErrCodeTransformInvariant marks a transformer bug; never expected.
	ErrCodeTransformInvariant = "TRANSFORM_INVARIANT"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`

	// Raw is the unparseable oracle payload for ORACLE_PARSE_FAILED.
	Raw string `json:"raw,omitempty"`
}

// AuditError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type AuditError struct {
	Code    string
	Message string
	Err     error // wrapped original error

	// Raw holds the offending oracle payload for ORACLE_PARSE_FAILED.
	Raw string
}

func (e *AuditError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuditError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the same request.
// The pipeline itself never retries.
func (e *AuditError) Retryable() bool {
	switch e.Code {
	case ErrCodeOracleCall, ErrCodeOracleTimeout, ErrCodeOracleRateLimit, ErrCodeFetchFailed:
		return true
	}
	return false
}

// NewAuditError creates a new AuditError.
func NewAuditError(code, message string, err error) *AuditError {
	return &AuditError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *AuditError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message, Retryable: e.Retryable(), Raw: e.Raw}
}

// EnumViolation records a closed-enum value rejected at the oracle boundary.
type EnumViolation struct {
	Index int    // fix index in the oracle payload, -1 for top-level fields
	Field string // "impact", "effort", "sentiment"
	Value string
}

func (v EnumViolation) Error() string {
	if v.Index < 0 {
		return fmt.Sprintf("enum violation: %s=%q", v.Field, v.Value)
	}
	return fmt.Sprintf("enum violation: fixes[%d].%s=%q", v.Index, v.Field, v.Value)
}
