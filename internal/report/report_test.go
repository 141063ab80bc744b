package report

import (
	"strings"
	"testing"

	"gpa/internal/errors"
	"gpa/internal/logging"
	"gpa/internal/storage"
)

func setupReporter(t *testing.T) (*Reporter, *storage.Store) {
	t.Helper()

	db, err := storage.Open(t.TempDir(), logging.NewNopLogger())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	store := storage.NewStore(db)
	return NewReporter(store), store
}

func TestRecurringIssuesUnknownRepo(t *testing.T) {
	reporter, _ := setupReporter(t)

	_, err := reporter.RecurringIssues("/never/seen", "")
	if !errors.IsCode(err, errors.ResourceNotFound) {
		t.Errorf("expected ResourceNotFound, got %v", err)
	}
}

func TestRecurringIssuesPersistenceSentence(t *testing.T) {
	reporter, store := setupReporter(t)

	repoPath := "/projects/api"
	if _, err := store.GetOrCreateRepo(repoPath); err != nil {
		t.Fatalf("GetOrCreateRepo failed: %v", err)
	}

	signature := storage.IssueSignature("injection", "SQL injection in login")
	for i := 0; i < 3; i++ {
		if _, err := store.TrackRecurringIssue(repoPath, signature); err != nil {
			t.Fatalf("TrackRecurringIssue failed: %v", err)
		}
	}

	views, err := reporter.RecurringIssues(repoPath, "")
	if err != nil {
		t.Fatalf("RecurringIssues failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}

	view := views[0]
	if view.OccurrenceCount != 3 {
		t.Errorf("expected count 3, got %d", view.OccurrenceCount)
	}
	if !strings.HasPrefix(view.Persistence, "Occurred 3 times between ") {
		t.Errorf("unexpected persistence sentence: %q", view.Persistence)
	}
}

func TestHistoryStatus(t *testing.T) {
	reporter, store := setupReporter(t)

	repoPath := "/projects/api"
	open, err := store.CreateScanSession(repoPath, "api")
	if err != nil {
		t.Fatalf("CreateScanSession failed: %v", err)
	}
	done, err := store.CreateScanSession(repoPath, "api")
	if err != nil {
		t.Fatalf("CreateScanSession failed: %v", err)
	}
	if _, err := store.CompleteSession(done.ID, 4, 1200, storage.OutcomeAbandoned); err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}

	entries, err := reporter.History(repoPath, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	byID := map[int64]ScanHistoryEntry{}
	for _, e := range entries {
		byID[e.SessionID] = e
	}
	if byID[open.ID].Status != "in_progress" {
		t.Errorf("open session should be in_progress, got %q", byID[open.ID].Status)
	}
	if byID[done.ID].Status != storage.OutcomeAbandoned {
		t.Errorf("closed session should carry its outcome, got %q", byID[done.ID].Status)
	}
	if byID[done.ID].CompletedAt == "" {
		t.Error("closed session should have a completion timestamp")
	}
}

func TestSummary(t *testing.T) {
	reporter, store := setupReporter(t)

	repoPath := "/projects/api"
	repo, err := store.GetOrCreateRepo(repoPath)
	if err != nil {
		t.Fatalf("GetOrCreateRepo failed: %v", err)
	}
	if _, err := store.FlagIssue(repo.ID, "no_tests", 0.8, "zero test files"); err != nil {
		t.Fatalf("FlagIssue failed: %v", err)
	}

	// Seven distinct recurring issues; the summary keeps only the top five.
	summaries := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, s := range summaries {
		if _, err := store.TrackRecurringIssue(repoPath, storage.IssueSignature("misc", s)); err != nil {
			t.Fatalf("TrackRecurringIssue failed: %v", err)
		}
	}

	session, err := store.CreateScanSession(repoPath, "api")
	if err != nil {
		t.Fatalf("CreateScanSession failed: %v", err)
	}
	if _, err := store.CompleteSession(session.ID, 2, 500, storage.OutcomeCompleted); err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}

	summary, err := reporter.Summary(repoPath)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.RepoPath != repoPath {
		t.Errorf("unexpected repo path %q", summary.RepoPath)
	}
	if len(summary.FlaggedIssues) != 1 {
		t.Errorf("expected 1 flagged issue, got %d", len(summary.FlaggedIssues))
	}
	if len(summary.TopRecurring) != 5 {
		t.Errorf("expected top recurring capped at 5, got %d", len(summary.TopRecurring))
	}
	if len(summary.RecentScans) != 2 {
		t.Errorf("expected 2 recent scans, got %d", len(summary.RecentScans))
	}
}

func TestFixPrompt(t *testing.T) {
	reporter, store := setupReporter(t)

	repoPath := "/projects/api"
	session, err := store.CreateScanSession(repoPath, "api")
	if err != nil {
		t.Fatalf("CreateScanSession failed: %v", err)
	}

	issueID, err := store.SaveSecurityIssue(storage.SecurityIssue{
		SessionID: session.ID,
		Severity:  "high",
		Category:  "injection",
		Summary:   "SQL injection in login",
		IssueURL:  "https://cwe.mitre.org/data/definitions/89.html",
	})
	if err != nil {
		t.Fatalf("SaveSecurityIssue failed: %v", err)
	}

	signature := storage.IssueSignature("injection", "SQL injection in login")
	for i := 0; i < 2; i++ {
		if _, err := store.TrackRecurringIssue(repoPath, signature); err != nil {
			t.Fatalf("TrackRecurringIssue failed: %v", err)
		}
	}

	failed := false
	if _, err := store.AddFixAttempt(storage.FixAttempt{
		SecurityIssueID: &issueID,
		Description:     "added input sanitization",
		Outcome:         "bypassed via encoded payload",
		Success:         &failed,
	}); err != nil {
		t.Fatalf("AddFixAttempt failed: %v", err)
	}

	prompt, err := reporter.FixPrompt(issueID)
	if err != nil {
		t.Fatalf("FixPrompt failed: %v", err)
	}

	for _, want := range []string{
		"high severity issue in api",
		"Category: injection",
		"Issue: SQL injection in login",
		"Reference: https://cwe.mitre.org/data/definitions/89.html",
		"This issue has recurred: occurred 2 times between",
		"1. added input sanitization (failed: bypassed via encoded payload)",
		"Do not repeat an approach that already failed.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestFixPromptNoAttempts(t *testing.T) {
	reporter, store := setupReporter(t)

	session, err := store.CreateScanSession("/projects/api", "api")
	if err != nil {
		t.Fatalf("CreateScanSession failed: %v", err)
	}
	issueID, err := store.SaveSecurityIssue(storage.SecurityIssue{
		SessionID: session.ID,
		Severity:  "low",
		Category:  "config",
		Summary:   "debug mode enabled",
	})
	if err != nil {
		t.Fatalf("SaveSecurityIssue failed: %v", err)
	}

	prompt, err := reporter.FixPrompt(issueID)
	if err != nil {
		t.Fatalf("FixPrompt failed: %v", err)
	}
	if strings.Contains(prompt, "Previous fix attempts") {
		t.Error("prompt should not mention attempts when there are none")
	}
	if strings.Contains(prompt, "recurred") {
		t.Error("prompt should not mention recurrence for a first occurrence")
	}
}
