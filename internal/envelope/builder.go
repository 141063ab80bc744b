package envelope

import (
	gpaerrors "gpa/internal/errors"
)

// Builder constructs Response envelopes using a fluent API.
type Builder struct {
	resp *Response
}

// New creates a new envelope builder.
func New() *Builder {
	return &Builder{
		resp: &Response{
			SchemaVersion: CurrentSchemaVersion,
			Status:        StatusSuccess,
		},
	}
}

// Data sets the tool-specific payload.
func (b *Builder) Data(data interface{}) *Builder {
	b.resp.Data = data
	return b
}

// Warning adds a warning message and downgrades the status to warning.
func (b *Builder) Warning(code, msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Code: code, Message: msg})
	if b.resp.Status == StatusSuccess {
		b.resp.Status = StatusWarning
	}
	return b
}

// Error marks the response as failed, translating the error's code and hint.
func (b *Builder) Error(err error) *Builder {
	if err == nil {
		return b
	}
	b.resp.Status = StatusError
	b.resp.Error = &ErrorInfo{
		Code:    string(gpaerrors.CodeOf(err)),
		Message: err.Error(),
		Hint:    gpaerrors.HintOf(err),
	}
	return b
}

// Build returns the envelope response.
func (b *Builder) Build() *Response {
	return b.resp
}

// Success wraps a payload in a success envelope.
func Success(data interface{}) *Response {
	return New().Data(data).Build()
}

// FromError wraps an error in an error envelope.
func FromError(err error) *Response {
	return New().Error(err).Build()
}
