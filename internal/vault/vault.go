// Package vault pushes scan reports to a remote blob store so they survive
// local database resets and can be shared across machines. Blobs are opaque
// to the vault: it stores gzip-compressed JSON keyed by file id.
package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"gpa/internal/logging"
)

// Client talks to a vault server.
type Client struct {
	baseURL  string
	token    string
	compress bool
	http     *http.Client
	logger   *logging.Logger
}

// Options configures a vault client.
type Options struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	Compress bool
}

// NewClient creates a vault client. A zero timeout defaults to 30 seconds.
func NewClient(opts Options, logger *logging.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  opts.BaseURL,
		token:    opts.Token,
		compress: opts.Compress,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Enabled reports whether a vault endpoint is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// FileInfo describes one stored blob.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Upload stores a JSON-serializable payload under a fresh file id and
// returns the id. The body is gzip-compressed when the client is configured
// for it.
func (c *Client) Upload(ctx context.Context, name string, payload interface{}) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("vault is not configured")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	fileID := uuid.New().String()

	body := raw
	encoding := ""
	if c.compress {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(raw); err != nil {
			return "", fmt.Errorf("failed to compress payload: %w", err)
		}
		if err := gz.Close(); err != nil {
			return "", fmt.Errorf("failed to compress payload: %w", err)
		}
		body = buf.Bytes()
		encoding = "gzip"
	}

	url := fmt.Sprintf("%s/files/%s?name=%s", c.baseURL, fileID, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if encoding != "" {
		req.Header.Set("Content-Encoding", encoding)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("vault upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("vault upload failed: status %d", resp.StatusCode)
	}

	c.logger.Debug("report uploaded to vault", map[string]interface{}{
		"file_id": fileID,
		"name":    name,
		"bytes":   len(body),
	})
	return fileID, nil
}

// Fetch retrieves a blob by file id and decodes it into out. Transparent
// gzip decoding is applied when the server says the body is compressed.
func (c *Client) Fetch(ctx context.Context, fileID string, out interface{}) error {
	if !c.Enabled() {
		return fmt.Errorf("vault is not configured")
	}

	url := fmt.Sprintf("%s/files/%s", c.baseURL, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("vault fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("vault file %s not found", fileID)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vault fetch failed: status %d", resp.StatusCode)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to decompress vault body: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	if err := json.NewDecoder(reader).Decode(out); err != nil {
		return fmt.Errorf("failed to decode vault body: %w", err)
	}
	return nil
}

// List returns metadata for stored blobs.
func (c *Client) List(ctx context.Context) ([]FileInfo, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("vault is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files", nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vault list failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vault list failed: status %d", resp.StatusCode)
	}

	var files []FileInfo
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, fmt.Errorf("failed to decode vault listing: %w", err)
	}
	return files, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
