package mcp

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"gpa/internal/config"
	"gpa/internal/envelope"
	"gpa/internal/logging"
	"gpa/internal/storage"
)

// newTestServer creates an MCP server over an isolated temp-dir store.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	tempDir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.DataDir = tempDir

	logger := logging.NewNopLogger()

	db, err := storage.Open(tempDir, logger)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	return NewServer("test", cfg, storage.NewStore(db), logger)
}

// sendRequest sends one request through the wire path and returns the response.
func sendRequest(t *testing.T, server *Server, method string, id int, params interface{}) *Message {
	t.Helper()

	request := Message{
		Jsonrpc: "2.0",
		Id:      id,
		Method:  method,
		Params:  params,
	}

	requestBytes, err := json.Marshal(request)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	requestBytes = append(requestBytes, '\n')

	server.SetStdin(bytes.NewReader(requestBytes))
	server.SetStdout(&bytes.Buffer{})

	msg, err := server.readMessage()
	if err != nil && err != io.EOF {
		t.Fatalf("failed to read message: %v", err)
	}

	return server.handleMessage(msg)
}

// callTool calls one tool and returns the decoded envelope.
func callTool(t *testing.T, server *Server, tool string, args map[string]interface{}) *envelope.Response {
	t.Helper()

	response := sendRequest(t, server, "tools/call", 1, map[string]interface{}{
		"name":      tool,
		"arguments": args,
	})
	if response.Error != nil {
		t.Fatalf("tools/call returned a protocol error: %+v", response.Error)
	}

	result, ok := response.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result shape: %T", response.Result)
	}
	content := result["content"].([]map[string]interface{})
	text := content[0]["text"].(string)

	var env envelope.Response
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		t.Fatalf("tool result is not an envelope: %v", err)
	}
	return &env
}

func testRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatalf("failed to create .git: %v", err)
	}
	return dir
}

func TestServerCreation(t *testing.T) {
	server := newTestServer(t)

	if len(server.tools) != 20 {
		t.Errorf("expected 20 registered tools, got %d", len(server.tools))
	}
	if len(server.GetToolDefinitions()) != len(server.tools) {
		t.Error("every registered tool needs a definition")
	}
}

func TestInitialize(t *testing.T) {
	server := newTestServer(t)

	response := sendRequest(t, server, "initialize", 1, map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"clientInfo":      map[string]interface{}{"name": "test-client"},
	})
	if response.Error != nil {
		t.Fatalf("initialize failed: %+v", response.Error)
	}

	result, ok := response.Result.(*InitializeResult)
	if !ok {
		t.Fatalf("unexpected result type %T", response.Result)
	}
	if result.ServerInfo.Name != "gpa" {
		t.Errorf("unexpected server name %q", result.ServerInfo.Name)
	}
}

func TestListTools(t *testing.T) {
	server := newTestServer(t)

	response := sendRequest(t, server, "tools/list", 2, nil)
	if response.Error != nil {
		t.Fatalf("tools/list failed: %+v", response.Error)
	}

	result := response.Result.(map[string]interface{})
	tools := result["tools"].([]Tool)
	if len(tools) != 20 {
		t.Errorf("expected 20 tools, got %d", len(tools))
	}
}

func TestMethodNotFound(t *testing.T) {
	server := newTestServer(t)

	response := sendRequest(t, server, "no/such/method", 3, nil)
	if response.Error == nil || response.Error.Code != MethodNotFound {
		t.Errorf("expected method-not-found, got %+v", response.Error)
	}
}

func TestToolErrorBecomesEnvelope(t *testing.T) {
	server := newTestServer(t)

	// Missing repoPath: the failure must come back as an error envelope,
	// not as a JSON-RPC fault.
	env := callTool(t, server, "startSession", map[string]interface{}{})
	if env.Status != envelope.StatusError {
		t.Errorf("expected error envelope, got %s", env.Status)
	}
	if env.Error == nil || env.Error.Code != "INVALID_INPUT" {
		t.Errorf("unexpected error info: %+v", env.Error)
	}
}

func TestSessionLifecycleOverMCP(t *testing.T) {
	server := newTestServer(t)
	repo := testRepo(t)

	env := callTool(t, server, "startSession", map[string]interface{}{"repoPath": repo})
	if env.Status != envelope.StatusSuccess {
		t.Fatalf("startSession failed: %+v", env)
	}
	data := env.Data.(map[string]interface{})
	sessionID := data["sessionId"].(float64)
	if questions := data["discoveryQuestions"].([]interface{}); len(questions) != 3 {
		t.Errorf("expected 3 discovery questions, got %d", len(questions))
	}

	// While the session is open, starting another returns the existing id
	// and creates nothing.
	env = callTool(t, server, "startSession", map[string]interface{}{"repoPath": repo})
	if env.Status != envelope.StatusWarning {
		t.Fatalf("expected warning envelope, got %s", env.Status)
	}
	if len(env.Warnings) != 1 || env.Warnings[0].Code != "incomplete_session" {
		t.Errorf("unexpected warnings: %+v", env.Warnings)
	}
	blocked := env.Data.(map[string]interface{})
	if blocked["existingSessionId"].(float64) != sessionID {
		t.Errorf("warning should carry the open session id, got %v", blocked)
	}
	if _, created := blocked["sessionId"]; created {
		t.Error("a blocked start must not return a new session id")
	}

	env = callTool(t, server, "submitDiscoveryAnswers", map[string]interface{}{
		"sessionId": sessionID,
		"rating":    float64(6),
		"potential": "good bones",
		"concerns":  "no tests",
	})
	if env.Status != envelope.StatusSuccess {
		t.Fatalf("submitDiscoveryAnswers failed: %+v", env)
	}

	env = callTool(t, server, "saveScanResults", map[string]interface{}{
		"sessionId":  sessionID,
		"analyzeGit": false,
		"durationMs": float64(1500),
		"findings": []interface{}{
			map[string]interface{}{
				"severity": "high",
				"category": "injection",
				"summary":  "SQL injection in login",
			},
		},
	})
	if env.Status != envelope.StatusSuccess {
		t.Fatalf("saveScanResults failed: %+v", env)
	}

	// Closing a completed session is a no-op with a warning.
	env = callTool(t, server, "closeSession", map[string]interface{}{"sessionId": sessionID})
	if env.Status != envelope.StatusWarning {
		t.Fatalf("expected already_terminal warning, got %+v", env)
	}

	// The blocked start never created a row: one session in total.
	env = callTool(t, server, "getScanHistory", map[string]interface{}{"repoPath": repo})
	if env.Status != envelope.StatusSuccess {
		t.Fatalf("getScanHistory failed: %+v", env)
	}
	historyData := env.Data.(map[string]interface{})
	if entries := historyData["scans"].([]interface{}); len(entries) != 1 {
		t.Errorf("expected exactly 1 session row, got %d", len(entries))
	}
}

func TestQueryRecurringIssuesOverMCP(t *testing.T) {
	server := newTestServer(t)
	repo := testRepo(t)

	env := callTool(t, server, "startSession", map[string]interface{}{"repoPath": repo})
	data := env.Data.(map[string]interface{})
	sessionID := data["sessionId"].(float64)

	callTool(t, server, "saveScanResults", map[string]interface{}{
		"sessionId":  sessionID,
		"analyzeGit": false,
		"findings": []interface{}{
			map[string]interface{}{"severity": "low", "category": "config", "summary": "debug mode enabled"},
		},
	})

	env = callTool(t, server, "queryRecurringIssues", map[string]interface{}{"repoPath": repo})
	if env.Status != envelope.StatusSuccess {
		t.Fatalf("queryRecurringIssues failed: %+v", env)
	}
}

func TestUnknownTool(t *testing.T) {
	server := newTestServer(t)

	response := sendRequest(t, server, "tools/call", 4, map[string]interface{}{
		"name":      "noSuchTool",
		"arguments": map[string]interface{}{},
	})
	if response.Error == nil {
		t.Fatal("expected a protocol error for an unknown tool")
	}
}
