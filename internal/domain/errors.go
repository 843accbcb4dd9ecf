package domain

import (
	"errors"
	"fmt"
)

// Validation sentinels. These never reach the network.
var (
	ErrEmptyDraft  = fmt.Errorf("draft is empty")
	ErrNoFile      = fmt.Errorf("no file attached")
	ErrWordLimit   = fmt.Errorf("word limit exceeded")
	ErrInvalidMode = fmt.Errorf("invalid code assistant mode")
)

// Guard sentinels.
var (
	ErrBusy          = fmt.Errorf("a request is already in flight")
	ErrPermitSettled = fmt.Errorf("permit already settled")
)

// Transport and server sentinels. All of them settle a request as a failure.
var (
	ErrProviderError     = fmt.Errorf("inference service error")
	ErrMalformedResponse = fmt.Errorf("malformed response body")
	ErrRateLimit         = fmt.Errorf("rate limit exceeded")
	ErrCircuitOpen       = fmt.Errorf("inference service unavailable")
	ErrTimeout           = fmt.Errorf("request timed out")
	ErrConfigLoad        = fmt.Errorf("failed to load configuration")
	ErrExport            = fmt.Errorf("export failed")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "ChatSession.Submit")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsValidationError reports whether err was raised before dispatch.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyDraft) ||
		errors.Is(err, ErrNoFile) ||
		errors.Is(err, ErrWordLimit) ||
		errors.Is(err, ErrInvalidMode)
}

// ErrorCode is a machine-parseable error category for logs.
type ErrorCode string

const (
	CodeUnknown           ErrorCode = "UNKNOWN"
	CodeEmptyDraft        ErrorCode = "EMPTY_DRAFT"
	CodeNoFile            ErrorCode = "NO_FILE"
	CodeWordLimit         ErrorCode = "WORD_LIMIT"
	CodeInvalidMode       ErrorCode = "INVALID_MODE"
	CodeBusy              ErrorCode = "BUSY"
	CodePermitSettled     ErrorCode = "PERMIT_SETTLED"
	CodeProviderError     ErrorCode = "PROVIDER_ERROR"
	CodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	CodeRateLimit         ErrorCode = "RATE_LIMIT"
	CodeCircuitOpen       ErrorCode = "CIRCUIT_OPEN"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeConfigLoad        ErrorCode = "CONFIG_LOAD"
	CodeExport            ErrorCode = "EXPORT"
)

// errorCodes is ordered: the first sentinel matched by errors.Is wins.
var errorCodes = []struct {
	err  error
	code ErrorCode
}{
	{ErrEmptyDraft, CodeEmptyDraft},
	{ErrNoFile, CodeNoFile},
	{ErrWordLimit, CodeWordLimit},
	{ErrInvalidMode, CodeInvalidMode},
	{ErrBusy, CodeBusy},
	{ErrPermitSettled, CodePermitSettled},
	{ErrTimeout, CodeTimeout},
	{ErrCircuitOpen, CodeCircuitOpen},
	{ErrRateLimit, CodeRateLimit},
	{ErrMalformedResponse, CodeMalformedResponse},
	{ErrProviderError, CodeProviderError},
	{ErrConfigLoad, CodeConfigLoad},
	{ErrExport, CodeExport},
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeUnknown
}
