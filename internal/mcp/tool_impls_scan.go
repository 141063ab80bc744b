package mcp

import (
	"context"
	"fmt"
	"time"

	"gpa/internal/envelope"
	"gpa/internal/errors"
	"gpa/internal/scanner"
)

// toolRunSecurityScan implements the runSecurityScan tool. The findings are
// returned but not persisted; pass them to saveScanResults for that.
func (s *Server) toolRunSecurityScan(params map[string]interface{}) (*envelope.Response, error) {
	repoPath, err := s.repoArg(params)
	if err != nil {
		return nil, err
	}

	report, err := s.runner.Scan(context.Background(), repoPath)
	if err != nil {
		return nil, mapScanError(err)
	}

	return envelope.Success(map[string]interface{}{
		"tool":       report.Tool,
		"durationMs": report.DurationMs,
		"findings":   report.Findings,
		"bySeverity": report.CountBySeverity(),
	}), nil
}

// mapScanError turns scanner failures into typed errors with actionable
// hints.
func mapScanError(err error) error {
	scanErr, ok := err.(*scanner.ScanError)
	if !ok {
		return err
	}

	switch scanErr.Reason {
	case scanner.ReasonMissingPrerequisite:
		return errors.New(errors.ScannerUnavailable, scanErr.Message, scanErr).
			WithHint("install the scanner binary or set scanner.binary in the config")
	case scanner.ReasonTimeout:
		return errors.New(errors.Timeout, scanErr.Message, scanErr).
			WithHint("raise scanner.timeout_minutes for large repositories")
	case scanner.ReasonInvalidInput:
		return errors.New(errors.InvalidInput, scanErr.Message, scanErr)
	default:
		return errors.NewOperationError("security scan", scanErr)
	}
}

// toolUploadReport implements the uploadReport tool
func (s *Server) toolUploadReport(params map[string]interface{}) (*envelope.Response, error) {
	sessionID, err := sessionArg(params)
	if err != nil {
		return nil, err
	}

	if !s.vault.Enabled() {
		return nil, errors.NewPreconditionError("vault is not configured",
			"set vault.base_url in the config to enable report uploads")
	}

	details, err := s.store.GetSessionDetails(sessionID)
	if err != nil {
		return nil, err
	}

	name, _ := params["name"].(string)
	if name == "" {
		name = fmt.Sprintf("%s-session-%d", details.Session.RepoName, sessionID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fileID, err := s.vault.Upload(ctx, name, details)
	if err != nil {
		return nil, errors.NewOperationError("upload report", err)
	}

	return envelope.Success(map[string]interface{}{
		"sessionId": sessionID,
		"fileId":    fileID,
		"name":      name,
	}), nil
}
