// Package envelope provides a standardized response wrapper for all public
// operations (MCP tools and CLI commands). Every response carries an explicit
// status flag plus payload, so callers never see an uncaught fault: failures
// are rendered as a machine-readable error code and a human-readable message.
package envelope

// Status is the top-level outcome flag of a response.
type Status string

const (
	// StatusSuccess indicates the operation completed normally.
	StatusSuccess Status = "success"
	// StatusWarning indicates the operation did not proceed but the caller
	// can correct course (e.g. an incomplete session already exists).
	StatusWarning Status = "warning"
	// StatusError indicates the operation failed.
	StatusError Status = "error"
)

// ErrorInfo describes a failure in machine- and human-readable form.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Hint states the corrective action when the fix is mechanical.
	Hint string `json:"hint,omitempty"`
}

// Warning represents a non-fatal issue attached to a response.
type Warning struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Response is the standard envelope for all tool responses.
type Response struct {
	SchemaVersion string      `json:"schemaVersion"`
	Status        Status      `json:"status"`
	Data          interface{} `json:"data,omitempty"`
	Warnings      []Warning   `json:"warnings,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
}

// CurrentSchemaVersion is the current envelope schema version.
const CurrentSchemaVersion = "1.0"
