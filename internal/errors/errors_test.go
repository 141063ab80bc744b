package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(RepoNotFound, "repository path does not exist: /tmp/x", nil)
	if got := err.Error(); got != "[REPO_NOT_FOUND] repository path does not exist: /tmp/x" {
		t.Errorf("unexpected message: %q", got)
	}

	cause := stderrors.New("disk on fire")
	wrapped := New(InternalError, "operation failed", cause)
	if !strings.Contains(wrapped.Error(), "disk on fire") {
		t.Errorf("cause should appear in the message: %q", wrapped.Error())
	}
	if !stderrors.Is(wrapped, cause) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(Timeout, "too slow", nil)); got != Timeout {
		t.Errorf("expected Timeout, got %s", got)
	}
	// Wrapping through fmt.Errorf keeps the code reachable.
	wrapped := fmt.Errorf("outer: %w", New(InvalidInput, "bad param", nil))
	if got := CodeOf(wrapped); got != InvalidInput {
		t.Errorf("expected InvalidInput through wrapping, got %s", got)
	}
	if got := CodeOf(stderrors.New("plain")); got != InternalError {
		t.Errorf("plain errors default to InternalError, got %s", got)
	}
}

func TestHintOf(t *testing.T) {
	err := NewPreconditionError("no active session", "call startSession first")
	if got := HintOf(err); got != "call startSession first" {
		t.Errorf("unexpected hint: %q", got)
	}
	if got := HintOf(stderrors.New("plain")); got != "" {
		t.Errorf("plain errors carry no hint, got %q", got)
	}
}

func TestIsCode(t *testing.T) {
	err := NewResourceNotFoundError("session", 42)
	if !IsCode(err, ResourceNotFound) {
		t.Error("expected ResourceNotFound")
	}
	if IsCode(err, Timeout) {
		t.Error("should not match a different code")
	}
}

func TestConstructorCodes(t *testing.T) {
	tests := []struct {
		err  error
		code ErrorCode
	}{
		{NewPreconditionError("m", "h"), PreconditionFailed},
		{NewInvalidParameterError("repoPath", ""), InvalidInput},
		{NewResourceNotFoundError("issue", 7), ResourceNotFound},
		{NewConstraintError("(repo_id, issue_type)", nil), ConstraintViolation},
		{NewOperationError("flagIssue", stderrors.New("boom")), InternalError},
	}
	for _, tt := range tests {
		if !IsCode(tt.err, tt.code) {
			t.Errorf("%v: expected code %s, got %s", tt.err, tt.code, CodeOf(tt.err))
		}
	}
}

func TestNewInvalidParameterErrorDetail(t *testing.T) {
	err := NewInvalidParameterError("maxCommits", "must be positive")
	if !strings.Contains(err.Error(), "maxCommits") || !strings.Contains(err.Error(), "must be positive") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestWithHintAndDetails(t *testing.T) {
	err := New(ScannerUnavailable, "scanner not found", nil).
		WithHint("install the scanner or set scanner.binary").
		WithDetails(map[string]string{"binary": "depscan"})

	if err.Hint == "" || err.Details == nil {
		t.Errorf("hint and details should both be set: %+v", err)
	}
}
