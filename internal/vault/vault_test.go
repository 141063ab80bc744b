package vault

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gpa/internal/logging"
)

func TestUpload(t *testing.T) {
	var gotPath, gotAuth, gotEncoding string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotEncoding = r.Header.Get("Content-Encoding")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(Options{
		BaseURL:  srv.URL,
		Token:    "secret-token",
		Compress: true,
	}, logging.NewNopLogger())

	fileID, err := client.Upload(context.Background(), "api-session-4", map[string]int{"issues": 2})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if fileID == "" {
		t.Error("expected a file id")
	}
	if !strings.HasPrefix(gotPath, "/files/") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotEncoding != "gzip" {
		t.Errorf("expected gzip encoding, got %q", gotEncoding)
	}

	gz, err := gzip.NewReader(strings.NewReader(string(gotBody)))
	if err != nil {
		t.Fatalf("body is not gzip: %v", err)
	}
	var payload map[string]int
	if err := json.NewDecoder(gz).Decode(&payload); err != nil {
		t.Fatalf("body is not the JSON payload: %v", err)
	}
	if payload["issues"] != 2 {
		t.Errorf("unexpected payload: %v", payload)
	}
}

func TestUploadUncompressed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") != "" {
			t.Errorf("unexpected encoding %q", r.Header.Get("Content-Encoding"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL}, logging.NewNopLogger())
	if _, err := client.Upload(context.Background(), "report", "payload"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
}

func TestUploadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL}, logging.NewNopLogger())
	if _, err := client.Upload(context.Background(), "report", "payload"); err == nil {
		t.Error("expected an error for a rejected upload")
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/abc" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"k": "v"})
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL}, logging.NewNopLogger())

	var out map[string]string
	if err := client.Fetch(context.Background(), "abc", &out); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if out["k"] != "v" {
		t.Errorf("unexpected payload: %v", out)
	}

	if err := client.Fetch(context.Background(), "missing", &out); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestNotConfigured(t *testing.T) {
	client := NewClient(Options{}, logging.NewNopLogger())

	if client.Enabled() {
		t.Error("client without a base URL must not report enabled")
	}
	if _, err := client.Upload(context.Background(), "x", nil); err == nil {
		t.Error("Upload must fail when not configured")
	}
	if err := client.Fetch(context.Background(), "x", nil); err == nil {
		t.Error("Fetch must fail when not configured")
	}
	if _, err := client.List(context.Background()); err == nil {
		t.Error("List must fail when not configured")
	}
}
