package errors

import (
	"errors"
	"fmt"
)

// Error is the structured error type for Vectorium.
// It carries a stable code plus context for logging and for translation
// into the MCP error envelope at the tool boundary.
type Error struct {
	// Code is the unique error code (e.g., "ERR_301_STORE_UNAVAILABLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Filesystem, Store, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, enabling errors.Is with code sentinels.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates an Error from an existing error, keeping its message.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// FilesystemError creates an error for an unreadable document root.
func FilesystemError(message string, cause error) *Error {
	return New(ErrCodeRootUnreadable, message, cause)
}

// FileError creates a per-file read error (non-fatal during indexing).
func FileError(path string, cause error) *Error {
	return New(ErrCodeFileUnreadable, fmt.Sprintf("cannot read %s", path), cause).
		WithDetail("path", path)
}

// EmbeddingError creates an embedding provider error.
func EmbeddingError(message string, cause error) *Error {
	return New(ErrCodeEmbeddingFailed, message, cause)
}

// StoreUnavailable creates a store connectivity error.
func StoreUnavailable(message string, cause error) *Error {
	return New(ErrCodeStoreUnavailable, message, cause)
}

// StoreProtocol creates an error for malformed store responses.
func StoreProtocol(message string, cause error) *Error {
	return New(ErrCodeStoreProtocol, message, cause)
}

// ValidationError creates an input validation error.
func ValidationError(message string) *Error {
	return New(ErrCodeInvalidInput, message, nil)
}

// TimeoutError creates a deadline-exceeded error.
func TimeoutError(message string, cause error) *Error {
	return New(ErrCodeTimeout, message, cause)
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsStoreError reports whether err is a store-level failure
// (unavailable or protocol), which aborts the surrounding operation.
func IsStoreError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == CategoryStore
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetCode extracts the error code from an Error.
// Returns empty string if err is not an Error.
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
