// Package session coordinates the lifecycle of a scan session: opening it
// against a validated repository, recording what the scan and the detectors
// found, and moving it to a terminal state exactly once.
package session

import (
	"fmt"
	"path/filepath"
	"time"

	"gpa/internal/analysis"
	"gpa/internal/errors"
	"gpa/internal/gitlog"
	"gpa/internal/logging"
	"gpa/internal/scanner"
	"gpa/internal/storage"
)

// selfAssessmentPattern is the behavioral pattern name under which discovery
// answers are stored. Repeat submissions increment its occurrence count.
const selfAssessmentPattern = "user_self_assessment"

// notableCommitLimit bounds how many individual commits a single ingestion
// attaches to the session.
const notableCommitLimit = 10

// Coordinator owns session lifecycle against the store.
type Coordinator struct {
	store  *storage.Store
	logger *logging.Logger
}

// NewCoordinator creates a session coordinator.
func NewCoordinator(store *storage.Store, logger *logging.Logger) *Coordinator {
	return &Coordinator{store: store, logger: logger}
}

// OpenResult is either a newly opened session, or the earlier session on
// the same repository that was never closed. When PriorIncomplete is set,
// Session is nil and no row was created.
type OpenResult struct {
	Session         *storage.ScanSession
	PriorIncomplete *storage.ScanSession
}

// Open validates the repository path and opens a new session. If an
// incomplete session already exists for the repository, no new session is
// created: the existing one is returned as PriorIncomplete and the caller
// must close it first. Abandonment is always an explicit caller decision.
func (c *Coordinator) Open(repoPath string) (*OpenResult, error) {
	normalized, err := gitlog.NormalizeRepoPath(repoPath)
	if err != nil {
		return nil, err
	}
	if err := gitlog.ValidateRepoPath(normalized); err != nil {
		return nil, err
	}

	prior, err := c.store.IncompleteSession(normalized)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		c.logger.Warn("incomplete session already open", map[string]interface{}{
			"session_id": prior.ID,
			"repo_path":  normalized,
		})
		return &OpenResult{PriorIncomplete: prior}, nil
	}

	session, err := c.store.CreateScanSession(normalized, filepath.Base(normalized))
	if err != nil {
		return nil, err
	}

	c.logger.Info("scan session opened", map[string]interface{}{
		"session_id": session.ID,
		"repo_path":  normalized,
	})

	return &OpenResult{Session: session}, nil
}

// RecordDiscoveryAnswers stores the user's self-assessment on the session as
// a behavioral pattern: a 1-10 quality rating plus free-text answers about
// the project's potential and the user's concerns. Submitting twice
// increments the pattern's occurrence count and replaces the stored
// evidence with the latest answers.
func (c *Coordinator) RecordDiscoveryAnswers(sessionID int64, rating int, potential, concerns string) (int, error) {
	if rating < 1 || rating > 10 {
		return 0, errors.NewInvalidParameterError("rating", "must be between 1 and 10")
	}
	if _, err := c.store.GetSession(sessionID); err != nil {
		return 0, err
	}

	evidence := fmt.Sprintf("User rated code quality: %d/10. Potential: %s. Concerns: %s",
		rating, potential, concerns)
	return c.store.FlagBehavioralPattern(sessionID, selfAssessmentPattern, "info", evidence)
}

// Results is everything one scan produced: detector reports (any subset may
// be nil) and scanner findings.
type Results struct {
	CommitPatterns *analysis.CommitPatternReport
	Language       *analysis.LanguageReport
	Mismatch       *analysis.MismatchReport
	Temporal       *analysis.TemporalReport
	Findings       []scanner.Finding
	Duration       time.Duration
}

// IngestSummary reports what one ingestion wrote.
type IngestSummary struct {
	SessionID        int64          `json:"session_id"`
	GitPatternsSaved int            `json:"git_patterns_saved"`
	IssuesSaved      int            `json:"issues_saved"`
	RecurringCounts  map[string]int `json:"recurring_counts"`
}

// IngestResults persists a scan's output under an open session and moves the
// session to the completed state. Detector flags that fired become git
// pattern rows; each finding becomes a security issue row and bumps the
// repository's recurring-issue count for its signature.
func (c *Coordinator) IngestResults(sessionID int64, results Results) (*IngestSummary, error) {
	session, err := c.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed() {
		return nil, errors.NewPreconditionError(
			fmt.Sprintf("session %d is already %s", session.ID, session.Outcome),
			"open a new session to record further results")
	}

	summary := &IngestSummary{
		SessionID:       sessionID,
		RecurringCounts: make(map[string]int),
	}

	if err := c.saveDetectorFlags(sessionID, results, summary); err != nil {
		return nil, err
	}
	if err := c.saveNotableCommits(sessionID, results, summary); err != nil {
		return nil, err
	}

	for _, f := range results.Findings {
		if _, err := c.store.SaveSecurityIssue(storage.SecurityIssue{
			SessionID: sessionID,
			Severity:  f.Severity,
			Category:  f.Category,
			Summary:   f.Summary,
			IssueURL:  f.URL,
		}); err != nil {
			return nil, err
		}
		summary.IssuesSaved++

		signature := storage.IssueSignature(f.Category, f.Summary)
		count, err := c.store.TrackRecurringIssue(session.RepoPath, signature)
		if err != nil {
			return nil, err
		}
		summary.RecurringCounts[signature] = count
	}

	updated, err := c.store.CompleteSession(sessionID, summary.IssuesSaved,
		results.Duration.Milliseconds(), storage.OutcomeCompleted)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost a race with another writer; the first completion stands.
		c.logger.Warn("session completed concurrently", map[string]interface{}{
			"session_id": sessionID,
		})
	}

	c.logger.Info("scan results ingested", map[string]interface{}{
		"session_id":   sessionID,
		"git_patterns": summary.GitPatternsSaved,
		"issues":       summary.IssuesSaved,
	})
	return summary, nil
}

// Close abandons an open session without results. Closing a session that is
// already terminal is a no-op and returns false.
func (c *Coordinator) Close(sessionID int64) (bool, error) {
	if _, err := c.store.GetSession(sessionID); err != nil {
		return false, err
	}
	updated, err := c.store.CompleteSession(sessionID, 0, 0, storage.OutcomeAbandoned)
	if err != nil {
		return false, err
	}
	if updated {
		c.logger.Info("scan session abandoned", map[string]interface{}{
			"session_id": sessionID,
		})
	}
	return updated, nil
}

// saveDetectorFlags writes one git pattern row per detector flag that fired.
func (c *Coordinator) saveDetectorFlags(sessionID int64, results Results, summary *IngestSummary) error {
	flagSets := []map[string]bool{}
	if results.CommitPatterns != nil {
		flagSets = append(flagSets, results.CommitPatterns.Flags())
	}
	if results.Language != nil {
		flagSets = append(flagSets, results.Language.Flags())
	}
	if results.Mismatch != nil {
		flagSets = append(flagSets, results.Mismatch.Flags())
	}
	if results.Temporal != nil {
		flagSets = append(flagSets, results.Temporal.Flags())
	}

	for _, flags := range flagSets {
		for name, fired := range flags {
			if !fired {
				continue
			}
			if _, err := c.store.SaveGitPattern(storage.GitPattern{
				SessionID:   sessionID,
				PatternType: name,
			}); err != nil {
				return err
			}
			summary.GitPatternsSaved++
		}
	}
	return nil
}

// saveNotableCommits attaches up to notableCommitLimit individual commits
// from the mismatch report, which carries the strongest per-commit evidence.
func (c *Coordinator) saveNotableCommits(sessionID int64, results Results, summary *IngestSummary) error {
	if results.Mismatch == nil {
		return nil
	}
	for i, m := range results.Mismatch.Mismatches {
		if i >= notableCommitLimit {
			break
		}
		if _, err := c.store.SaveGitPattern(storage.GitPattern{
			SessionID:     sessionID,
			PatternType:   "notable_commit:" + m.Type,
			CommitSha:     m.Sha,
			CommitMessage: m.Message,
			LinesChanged:  m.LinesChanged,
		}); err != nil {
			return err
		}
		summary.GitPatternsSaved++
	}
	return nil
}
