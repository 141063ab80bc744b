package envelope

import (
	"testing"

	gpaerrors "gpa/internal/errors"
)

func TestSuccess(t *testing.T) {
	resp := Success(map[string]int{"count": 3})

	if resp.Status != StatusSuccess {
		t.Errorf("expected success, got %s", resp.Status)
	}
	if resp.SchemaVersion != CurrentSchemaVersion {
		t.Errorf("unexpected schema version %q", resp.SchemaVersion)
	}
	if resp.Data == nil || resp.Error != nil {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestWarningDowngradesStatus(t *testing.T) {
	resp := New().
		Data("payload").
		Warning("incomplete_session", "session 4 was never closed").
		Build()

	if resp.Status != StatusWarning {
		t.Errorf("expected warning, got %s", resp.Status)
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0].Code != "incomplete_session" {
		t.Errorf("unexpected warnings: %+v", resp.Warnings)
	}
	// The payload is still delivered alongside the warning.
	if resp.Data != "payload" {
		t.Errorf("data should survive a warning: %+v", resp)
	}
}

func TestErrorOverridesWarning(t *testing.T) {
	resp := New().
		Warning("w", "first a warning").
		Error(gpaerrors.NewPreconditionError("no active session", "call startSession first")).
		Build()

	if resp.Status != StatusError {
		t.Errorf("expected error status, got %s", resp.Status)
	}
	if resp.Error == nil {
		t.Fatal("error info should be set")
	}
	if resp.Error.Code != string(gpaerrors.PreconditionFailed) {
		t.Errorf("unexpected code %q", resp.Error.Code)
	}
	if resp.Error.Hint != "call startSession first" {
		t.Errorf("hint should carry through, got %q", resp.Error.Hint)
	}
}

func TestErrorNil(t *testing.T) {
	resp := New().Error(nil).Build()
	if resp.Status != StatusSuccess || resp.Error != nil {
		t.Errorf("nil error must not change the envelope: %+v", resp)
	}
}

func TestFromError(t *testing.T) {
	resp := FromError(gpaerrors.NewResourceNotFoundError("session", 42))

	if resp.Status != StatusError {
		t.Errorf("expected error status, got %s", resp.Status)
	}
	if resp.Error.Code != string(gpaerrors.ResourceNotFound) {
		t.Errorf("unexpected code %q", resp.Error.Code)
	}
}
