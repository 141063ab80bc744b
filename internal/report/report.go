// Package report reshapes stored scan data for presentation. It never
// writes: everything here is a read-through view over the store.
package report

import (
	"fmt"
	"strings"
	"time"

	"gpa/internal/storage"
)

// Reporter builds presentation views over the store.
type Reporter struct {
	store *storage.Store
}

// NewReporter creates a reporter.
func NewReporter(store *storage.Store) *Reporter {
	return &Reporter{store: store}
}

// RecurringIssueView is one recurring issue with a human-readable
// persistence sentence.
type RecurringIssueView struct {
	Signature       string `json:"issue_signature"`
	OccurrenceCount int    `json:"occurrence_count"`
	FirstSeen       string `json:"first_seen"`
	LastSeen        string `json:"last_seen"`
	Persistence     string `json:"persistence"`
}

// RecurringIssues returns the repository's recurring issues, most frequent
// first. An empty list is a valid answer for a known repository; an unknown
// repository is a typed not-found error from the store.
func (r *Reporter) RecurringIssues(repoPath, filter string) ([]RecurringIssueView, error) {
	if _, err := r.store.GetRepoByPath(repoPath); err != nil {
		return nil, err
	}

	issues, err := r.store.GetRecurringIssues(repoPath, filter)
	if err != nil {
		return nil, err
	}

	views := make([]RecurringIssueView, 0, len(issues))
	for _, issue := range issues {
		views = append(views, RecurringIssueView{
			Signature:       issue.IssueSignature,
			OccurrenceCount: issue.OccurrenceCount,
			FirstSeen:       issue.FirstSeen.Format(time.RFC3339),
			LastSeen:        issue.LastSeen.Format(time.RFC3339),
			Persistence:     persistenceSentence(issue),
		})
	}
	return views, nil
}

func persistenceSentence(issue storage.RecurringIssue) string {
	return fmt.Sprintf("Occurred %d times between %s and %s",
		issue.OccurrenceCount,
		issue.FirstSeen.Format("2006-01-02"),
		issue.LastSeen.Format("2006-01-02"))
}

// ScanHistoryEntry is one session formatted for display.
type ScanHistoryEntry struct {
	SessionID   int64  `json:"session_id"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	Status      string `json:"status"`
	TotalIssues int    `json:"total_issues"`
	DurationMs  int64  `json:"scan_duration_ms"`
}

// History returns the repository's sessions, newest first. Sessions that
// never reached a terminal state show as in_progress.
func (r *Reporter) History(repoPath string, limit int) ([]ScanHistoryEntry, error) {
	if _, err := r.store.GetRepoByPath(repoPath); err != nil {
		return nil, err
	}

	sessions, err := r.store.GetScanHistory(repoPath, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]ScanHistoryEntry, 0, len(sessions))
	for _, s := range sessions {
		entry := ScanHistoryEntry{
			SessionID:   s.ID,
			StartedAt:   s.StartedAt.Format(time.RFC3339),
			Status:      sessionStatus(s),
			TotalIssues: s.TotalIssues,
			DurationMs:  s.DurationMs,
		}
		if s.CompletedAt != nil {
			entry.CompletedAt = s.CompletedAt.Format(time.RFC3339)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func sessionStatus(s storage.ScanSession) string {
	if s.CompletedAt == nil {
		return "in_progress"
	}
	if s.Outcome != "" {
		return s.Outcome
	}
	return storage.OutcomeCompleted
}

// ProjectSummary aggregates a repository's accumulated history into one
// overview.
type ProjectSummary struct {
	RepoName        string               `json:"repo_name"`
	RepoPath        string               `json:"repo_path"`
	FirstSeen       string               `json:"first_seen"`
	TotalScans      int                  `json:"total_scans"`
	FlaggedIssues   []storage.IssueFlag  `json:"flagged_issues"`
	TopRecurring    []RecurringIssueView `json:"top_recurring"`
	RecentScans     []ScanHistoryEntry   `json:"recent_scans"`
	FixAttemptCount int                  `json:"fix_attempt_count"`
}

const summaryRecurringLimit = 5

// Summary builds the project overview for a known repository.
func (r *Reporter) Summary(repoPath string) (*ProjectSummary, error) {
	ctx, err := r.store.GetRepoContext(repoPath)
	if err != nil {
		return nil, err
	}

	recurring, err := r.RecurringIssues(repoPath, "")
	if err != nil {
		return nil, err
	}
	if len(recurring) > summaryRecurringLimit {
		recurring = recurring[:summaryRecurringLimit]
	}

	history, err := r.History(repoPath, 5)
	if err != nil {
		return nil, err
	}

	return &ProjectSummary{
		RepoName:        ctx.Repo.Name,
		RepoPath:        ctx.Repo.Path,
		FirstSeen:       ctx.Repo.FirstSeenAt.Format(time.RFC3339),
		TotalScans:      ctx.Repo.TotalScans,
		FlaggedIssues:   ctx.FlaggedIssues,
		TopRecurring:    recurring,
		RecentScans:     history,
		FixAttemptCount: len(ctx.FixAttempts),
	}, nil
}

// FixPrompt builds a remediation prompt for one security issue, recounting
// what was already tried so the next attempt does not repeat a failed one.
func (r *Reporter) FixPrompt(issueID int64) (string, error) {
	issue, err := r.store.GetSecurityIssue(issueID)
	if err != nil {
		return "", err
	}

	session, err := r.store.GetSession(issue.SessionID)
	if err != nil {
		return "", err
	}

	attempts, err := r.store.FixAttemptsForIssue(issueID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Fix the following %s severity issue in %s:\n\n", issue.Severity, session.RepoName)
	fmt.Fprintf(&b, "Category: %s\n", issue.Category)
	fmt.Fprintf(&b, "Issue: %s\n", issue.Summary)
	if issue.IssueURL != "" {
		fmt.Fprintf(&b, "Reference: %s\n", issue.IssueURL)
	}

	signature := storage.IssueSignature(issue.Category, issue.Summary)
	recurring, err := r.store.GetRecurringIssues(session.RepoPath, "")
	if err != nil {
		return "", err
	}
	for _, rec := range recurring {
		if rec.IssueSignature == signature && rec.OccurrenceCount > 1 {
			fmt.Fprintf(&b, "\nThis issue has recurred: %s.\n", strings.ToLower(persistenceSentence(rec)))
			break
		}
	}

	if len(attempts) > 0 {
		b.WriteString("\nPrevious fix attempts:\n")
		for i, a := range attempts {
			status := "outcome unknown"
			if a.Success != nil {
				if *a.Success {
					status = "succeeded"
				} else {
					status = "failed"
				}
			}
			fmt.Fprintf(&b, "%d. %s (%s", i+1, a.Description, status)
			if a.Outcome != "" {
				fmt.Fprintf(&b, ": %s", a.Outcome)
			}
			b.WriteString(")\n")
		}
		b.WriteString("\nDo not repeat an approach that already failed.\n")
	}

	return b.String(), nil
}
