package domain

import (
	"errors"
	"fmt"
)

// Category sentinels.
var (
	ErrTimeout       = fmt.Errorf("operation timed out")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrProviderError = fmt.Errorf("provider error")
)

// Sentinel errors for the domain layer.
var (
	ErrToolNotFound     = fmt.Errorf("tool not found")
	ErrConfigLoad       = fmt.Errorf("failed to load configuration")
	ErrRateLimit        = fmt.Errorf("rate limit exceeded")
	ErrRetriesExhausted = fmt.Errorf("retries exhausted")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "SearXNG.Search")
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

// IsRetryableError reports whether err is a transient error that may succeed on retry.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrRetriesExhausted)
}

// ErrorCode is a machine-parseable error category for monitoring and alerting.
type ErrorCode string

const (
	CodeUnknown          ErrorCode = "UNKNOWN"
	CodeTimeout          ErrorCode = "TIMEOUT"
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeProviderError    ErrorCode = "PROVIDER_ERROR"
	CodeToolNotFound     ErrorCode = "TOOL_NOT_FOUND"
	CodeConfigLoad       ErrorCode = "CONFIG_LOAD"
	CodeRateLimit        ErrorCode = "RATE_LIMIT"
	CodeRetriesExhausted ErrorCode = "RETRIES_EXHAUSTED"
)

var errorCodeMap = map[error]ErrorCode{
	ErrTimeout:          CodeTimeout,
	ErrInvalidInput:     CodeInvalidInput,
	ErrProviderError:    CodeProviderError,
	ErrToolNotFound:     CodeToolNotFound,
	ErrConfigLoad:       CodeConfigLoad,
	ErrRateLimit:        CodeRateLimit,
	ErrRetriesExhausted: CodeRetriesExhausted,
}

// ErrorCodeOf returns the ErrorCode for err, walking the wrap chain.
// Exhaustion wins over the cause it wraps.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}

	for _, sentinel := range []error{
		ErrRetriesExhausted,
		ErrRateLimit,
		ErrTimeout,
		ErrInvalidInput,
		ErrToolNotFound,
		ErrConfigLoad,
		ErrProviderError,
	} {
		if errors.Is(err, sentinel) {
			return errorCodeMap[sentinel]
		}
	}
	return CodeUnknown
}
