// Package mcp exposes the analyzer over the Model Context Protocol: a
// JSON-RPC 2.0 loop on stdin/stdout. Tool results are envelope responses;
// tool failures are rendered as structured error payloads, never as
// process faults.
package mcp

import (
	"bufio"
	"io"
	"os"
	"time"

	"gpa/internal/config"
	"gpa/internal/logging"
	"gpa/internal/report"
	"gpa/internal/scanner"
	"gpa/internal/session"
	"gpa/internal/storage"
	"gpa/internal/vault"
)

// Server is the MCP server. It holds no current-repository state: every
// tool call names its repository or session explicitly.
type Server struct {
	stdin      io.Reader
	stdout     io.Writer
	lineReader *bufio.Scanner
	logger     *logging.Logger
	version    string
	tools      map[string]ToolHandler

	cfg      *config.Config
	store    *storage.Store
	sessions *session.Coordinator
	reporter *report.Reporter
	runner   *scanner.Runner
	vault    *vault.Client
}

// NewServer creates an MCP server over an open store.
func NewServer(version string, cfg *config.Config, store *storage.Store, logger *logging.Logger) *Server {
	s := &Server{
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		logger:   logger,
		version:  version,
		cfg:      cfg,
		store:    store,
		sessions: session.NewCoordinator(store, logger),
		reporter: report.NewReporter(store),
		runner: scanner.NewRunner(cfg.Scanner.Binary, cfg.Scanner.Args,
			time.Duration(cfg.Scanner.TimeoutMinutes)*time.Minute),
		vault: vault.NewClient(vault.Options{
			BaseURL:  cfg.Vault.BaseURL,
			Token:    cfg.Vault.Token,
			Timeout:  time.Duration(cfg.Vault.TimeoutSeconds) * time.Second,
			Compress: cfg.Vault.Compress,
		}, logger),
		tools: make(map[string]ToolHandler),
	}

	s.RegisterTools()
	return s
}

// Start starts the MCP server and begins processing messages
func (s *Server) Start() error {
	s.logger.Info("MCP server starting", map[string]interface{}{
		"version": s.version,
	})

	for {
		msg, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("MCP server shutting down (EOF)", nil)
				return nil
			}
			s.logger.Error("error reading message", map[string]interface{}{
				"error": err.Error(),
			})

			if msg != nil && msg.Id != nil {
				_ = s.writeError(msg.Id, ParseError, "failed to parse message")
			}
			continue
		}

		response := s.handleMessage(msg)

		// Notifications don't generate responses
		if response != nil {
			if err := s.writeMessage(response); err != nil {
				s.logger.Error("error writing response", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

// SetStdin sets the input stream (for testing)
func (s *Server) SetStdin(r io.Reader) {
	s.stdin = r
	s.lineReader = nil
}

// SetStdout sets the output stream (for testing)
func (s *Server) SetStdout(w io.Writer) {
	s.stdout = w
}
