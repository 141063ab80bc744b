package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// PreconditionFailed indicates the caller skipped a required step
	// (no repository set, no active session, path missing)
	PreconditionFailed ErrorCode = "PRECONDITION_FAILED"
	// RepoNotFound indicates the repository path does not exist
	RepoNotFound ErrorCode = "REPO_NOT_FOUND"
	// NotGitRepository indicates the path exists but is not version-controlled
	NotGitRepository ErrorCode = "NOT_GIT_REPOSITORY"
	// InvalidInput indicates a malformed parameter or payload
	InvalidInput ErrorCode = "INVALID_INPUT"
	// ResourceNotFound indicates a referenced entity (session, issue) does not exist
	ResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	// ConstraintViolation indicates a store uniqueness or foreign-key failure
	ConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"
	// ScannerUnavailable indicates the security scanner prerequisite is missing
	ScannerUnavailable ErrorCode = "SCANNER_UNAVAILABLE"
	// Timeout indicates an operation exceeded its deadline
	Timeout ErrorCode = "TIMEOUT"
	// InternalError indicates an unexpected failure
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// GpaError represents a GPA error with code, message, and optional detail
type GpaError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	// Hint tells the caller the mechanical fix, when one exists
	// (e.g. "call startSession first")
	Hint  string `json:"hint,omitempty"`
	cause error
}

// New creates a new GpaError
func New(code ErrorCode, message string, cause error) *GpaError {
	return &GpaError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *GpaError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *GpaError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *GpaError) WithDetails(details interface{}) *GpaError {
	e.Details = details
	return e
}

// WithHint adds a corrective-action hint to the error
func (e *GpaError) WithHint(hint string) *GpaError {
	e.Hint = hint
	return e
}

// NewPreconditionError creates an error for a missing caller-side precondition
func NewPreconditionError(message string, hint string) *GpaError {
	return &GpaError{
		Code:    PreconditionFailed,
		Message: message,
		Hint:    hint,
	}
}

// NewInvalidParameterError creates an error for a malformed or missing parameter
func NewInvalidParameterError(param string, detail string) *GpaError {
	msg := fmt.Sprintf("invalid or missing parameter: %s", param)
	if detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, detail)
	}
	return &GpaError{
		Code:    InvalidInput,
		Message: msg,
	}
}

// NewResourceNotFoundError creates an error for a missing entity
func NewResourceNotFoundError(kind string, id interface{}) *GpaError {
	return &GpaError{
		Code:    ResourceNotFound,
		Message: fmt.Sprintf("%s not found: %v", kind, id),
	}
}

// NewConstraintError creates a store-integrity error naming the key that failed
func NewConstraintError(key string, cause error) *GpaError {
	return &GpaError{
		Code:    ConstraintViolation,
		Message: fmt.Sprintf("store constraint violated for key %s", key),
		cause:   cause,
	}
}

// NewOperationError wraps an internal failure with the operation name
func NewOperationError(operation string, cause error) *GpaError {
	return &GpaError{
		Code:    InternalError,
		Message: fmt.Sprintf("operation failed: %s", operation),
		cause:   cause,
	}
}

// CodeOf extracts the ErrorCode from any error, defaulting to InternalError
func CodeOf(err error) ErrorCode {
	var ge *GpaError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return InternalError
}

// HintOf extracts the corrective hint from an error, if any
func HintOf(err error) string {
	var ge *GpaError
	if errors.As(err, &ge) {
		return ge.Hint
	}
	return ""
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
