package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: WarnLevel, Output: &buf})

	logger.Debug("too quiet", nil)
	logger.Info("still too quiet", nil)
	logger.Warn("loud enough", nil)
	logger.Error("definitely", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "loud enough") {
		t.Errorf("unexpected first line: %q", lines[0])
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})

	logger.Info("session opened", map[string]interface{}{"session_id": 4})

	var entry struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Level != "info" || entry.Message != "session opened" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Fields["session_id"] != float64(4) {
		t.Errorf("unexpected fields: %v", entry.Fields)
	}
}

func TestHumanFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: InfoLevel, Output: &buf})

	logger.Warn("slow query", map[string]interface{}{"ms": 1200})

	out := buf.String()
	if !strings.Contains(out, "[warn]") || !strings.Contains(out, "slow query") {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "ms=1200") {
		t.Errorf("fields missing from output: %q", out)
	}
}

func TestNopLogger(t *testing.T) {
	// Must not panic and must not write anywhere visible.
	logger := NewNopLogger()
	logger.Error("nobody hears this", map[string]interface{}{"k": "v"})
}
