package mcp

import (
	"context"
	"fmt"
	"time"

	"gpa/internal/analysis"
	"gpa/internal/envelope"
	"gpa/internal/errors"
	"gpa/internal/gitlog"
	"gpa/internal/scanner"
	"gpa/internal/session"
)

// discoveryQuestions are asked when a session opens; the answers come back
// through submitDiscoveryAnswers.
var discoveryQuestions = []string{
	"On a scale of 1-10, how would you rate the overall quality of this codebase?",
	"What do you think is the biggest potential of this project?",
	"What concerns do you have about the code, if any?",
}

// toolStartSession implements the startSession tool
func (s *Server) toolStartSession(params map[string]interface{}) (*envelope.Response, error) {
	raw, ok := params["repoPath"].(string)
	if !ok || raw == "" {
		return nil, errors.NewInvalidParameterError("repoPath", "required")
	}

	result, err := s.sessions.Open(raw)
	if err != nil {
		return nil, err
	}

	// An incomplete session blocks a new one; the caller must close it.
	if result.PriorIncomplete != nil {
		return envelope.New().Data(map[string]interface{}{
			"existingSessionId": result.PriorIncomplete.ID,
			"repoPath":          result.PriorIncomplete.RepoPath,
		}).Warning("incomplete_session", fmt.Sprintf(
			"session %d for this repository was never closed; close it before starting a new one",
			result.PriorIncomplete.ID)).Build(), nil
	}

	return envelope.Success(map[string]interface{}{
		"sessionId":          result.Session.ID,
		"repoPath":           result.Session.RepoPath,
		"repoName":           result.Session.RepoName,
		"discoveryQuestions": discoveryQuestions,
	}), nil
}

// toolSubmitDiscoveryAnswers implements the submitDiscoveryAnswers tool
func (s *Server) toolSubmitDiscoveryAnswers(params map[string]interface{}) (*envelope.Response, error) {
	sessionID, err := sessionArg(params)
	if err != nil {
		return nil, err
	}

	rating, ok := params["rating"].(float64)
	if !ok {
		return nil, errors.NewInvalidParameterError("rating", "required")
	}
	potential, _ := params["potential"].(string)
	concerns, _ := params["concerns"].(string)

	count, err := s.sessions.RecordDiscoveryAnswers(sessionID, int(rating), potential, concerns)
	if err != nil {
		return nil, err
	}
	return envelope.Success(map[string]interface{}{
		"sessionId":       sessionID,
		"submissionCount": count,
	}), nil
}

// toolSaveScanResults implements the saveScanResults tool
func (s *Server) toolSaveScanResults(params map[string]interface{}) (*envelope.Response, error) {
	sessionID, err := sessionArg(params)
	if err != nil {
		return nil, err
	}

	results := session.Results{
		Findings: parseFindings(params["findings"]),
	}
	if v, ok := params["durationMs"].(float64); ok {
		results.Duration = time.Duration(v) * time.Millisecond
	}

	analyzeGit := true
	if v, ok := params["analyzeGit"].(bool); ok {
		analyzeGit = v
	}
	if analyzeGit {
		sess, err := s.store.GetSession(sessionID)
		if err != nil {
			return nil, err
		}
		if err := s.attachDetectorReports(sess.RepoPath, &results); err != nil {
			return nil, err
		}
	}

	summary, err := s.sessions.IngestResults(sessionID, results)
	if err != nil {
		return nil, err
	}
	return envelope.Success(summary), nil
}

// attachDetectorReports runs the four detectors against the repository and
// attaches their reports to the results.
func (s *Server) attachDetectorReports(repoPath string, results *session.Results) error {
	commits, err := s.readCommits(repoPath, s.cfg.Git.MaxCommits)
	if err != nil {
		return err
	}

	days := s.cfg.Detectors.TemporalDays
	recent, err := s.reader(repoPath).Read(context.Background(), gitlog.Options{
		Since: time.Now().AddDate(0, 0, -days),
	})
	if err != nil {
		return err
	}

	keywords := s.keywords()
	commitReport := analysis.AnalyzeCommitPatterns(commits)
	languageReport := analysis.AnalyzeMessageLanguage(commits, keywords)
	mismatchReport := analysis.CompareMessageVsDiff(commits, keywords)
	temporalReport := analysis.AnalyzeTemporalPatterns(recent, days)

	results.CommitPatterns = &commitReport
	results.Language = &languageReport
	results.Mismatch = &mismatchReport
	results.Temporal = &temporalReport
	return nil
}

func parseFindings(raw interface{}) []scanner.Finding {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	var findings []scanner.Finding
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		f := scanner.Finding{}
		if v, ok := obj["severity"].(string); ok {
			f.Severity = v
		}
		if v, ok := obj["category"].(string); ok {
			f.Category = v
		}
		if v, ok := obj["summary"].(string); ok {
			f.Summary = v
		}
		if v, ok := obj["url"].(string); ok {
			f.URL = v
		}
		if f.Summary == "" {
			continue
		}
		if f.Category == "" {
			f.Category = "uncategorized"
		}
		findings = append(findings, f)
	}
	return findings
}

// toolCloseSession implements the closeSession tool
func (s *Server) toolCloseSession(params map[string]interface{}) (*envelope.Response, error) {
	sessionID, err := sessionArg(params)
	if err != nil {
		return nil, err
	}

	closed, err := s.sessions.Close(sessionID)
	if err != nil {
		return nil, err
	}

	builder := envelope.New().Data(map[string]interface{}{
		"sessionId": sessionID,
		"closed":    closed,
	})
	if !closed {
		builder.Warning("already_terminal", "session was already completed or abandoned")
	}
	return builder.Build(), nil
}

// toolFlagBehavioralPattern implements the flagBehavioralPattern tool
func (s *Server) toolFlagBehavioralPattern(params map[string]interface{}) (*envelope.Response, error) {
	sessionID, err := sessionArg(params)
	if err != nil {
		return nil, err
	}

	patternName, ok := params["patternName"].(string)
	if !ok || patternName == "" {
		return nil, errors.NewInvalidParameterError("patternName", "required")
	}
	severity, _ := params["severity"].(string)
	evidence, _ := params["evidence"].(string)

	if _, err := s.store.GetSession(sessionID); err != nil {
		return nil, err
	}

	count, err := s.store.FlagBehavioralPattern(sessionID, patternName, severity, evidence)
	if err != nil {
		return nil, err
	}
	return envelope.Success(map[string]interface{}{
		"sessionId":       sessionID,
		"patternName":     patternName,
		"occurrenceCount": count,
	}), nil
}
