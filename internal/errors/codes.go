// Package errors provides structured error handling for Vectorium.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Filesystem errors
//   - 3XX: Vector store errors
//   - 4XX: Validation errors
//   - 5XX: Embedding errors
//   - 6XX: Timeout errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryFilesystem indicates document root and file I/O errors.
	CategoryFilesystem Category = "FILESYSTEM"
	// CategoryStore indicates vector store errors.
	CategoryStore Category = "STORE"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryEmbedding indicates embedding provider errors.
	CategoryEmbedding Category = "EMBEDDING"
	// CategoryTimeout indicates deadline-exceeded errors.
	CategoryTimeout Category = "TIMEOUT"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the current operation must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed but the run can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Filesystem errors (200-299)
	ErrCodeRootUnreadable = "ERR_201_ROOT_UNREADABLE"
	ErrCodeFileUnreadable = "ERR_202_FILE_UNREADABLE"

	// Store errors (300-399)
	ErrCodeStoreUnavailable = "ERR_301_STORE_UNAVAILABLE"
	ErrCodeStoreProtocol    = "ERR_302_STORE_PROTOCOL"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeQueryEmpty   = "ERR_402_QUERY_EMPTY"

	// Embedding errors (500-599)
	ErrCodeEmbeddingFailed = "ERR_501_EMBEDDING_FAILED"

	// Timeout errors (600-699)
	ErrCodeTimeout = "ERR_601_TIMEOUT"

	// Internal errors (900-999)
	ErrCodeInternal = "ERR_901_INTERNAL"
)

// categoryFromCode extracts the category from an error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "301" from "ERR_301_STORE_UNAVAILABLE".
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryFilesystem
	case '3':
		return CategoryStore
	case '4':
		return CategoryValidation
	case '5':
		return CategoryEmbedding
	case '6':
		return CategoryTimeout
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Store and root-level filesystem failures abort the surrounding operation;
// per-file and embedding failures are collected and the run continues.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeStoreUnavailable, ErrCodeStoreProtocol, ErrCodeRootUnreadable:
		return SeverityFatal
	case ErrCodeFileUnreadable:
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable condition.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeStoreUnavailable, ErrCodeTimeout, ErrCodeEmbeddingFailed:
		return true
	default:
		return false
	}
}
