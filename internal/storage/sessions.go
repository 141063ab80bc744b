package storage

import (
	"database/sql"
	"fmt"
	"time"

	"gpa/internal/errors"
)

// CreateScanSession opens a new session against a repository. The repository
// row is created if needed and its scan counter advances in the same
// transaction, so a session never references an unknown repository.
func (s *Store) CreateScanSession(repoPath, repoName string) (*ScanSession, error) {
	now := time.Now()
	startedAt := formatTime(now)

	var id int64
	err := s.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO repositories (repo_path, repo_name, first_seen_at, last_seen_at, total_scans)
			VALUES (?, ?, ?, ?, 1)
			ON CONFLICT(repo_path) DO UPDATE SET
				last_seen_at = excluded.last_seen_at,
				total_scans = total_scans + 1
		`, repoPath, repoName, startedAt, startedAt); err != nil {
			return err
		}

		return tx.QueryRow(`
			INSERT INTO scan_sessions (repo_path, repo_name, started_at)
			VALUES (?, ?, ?)
			RETURNING id
		`, repoPath, repoName, startedAt).Scan(&id)
	})
	if err != nil {
		return nil, wrapWriteErr("create scan session", repoPath, err)
	}

	return &ScanSession{
		ID:        id,
		RepoPath:  repoPath,
		RepoName:  repoName,
		StartedAt: now.UTC().Truncate(time.Second),
	}, nil
}

// IncompleteSession returns the most recent open session for a repository,
// or nil when every session is terminal. Used to warn when a new session is
// started while an earlier one was never closed.
func (s *Store) IncompleteSession(repoPath string) (*ScanSession, error) {
	row := s.db.QueryRow(`
		SELECT id, repo_path, repo_name, started_at, completed_at, outcome, total_issues, scan_duration_ms
		FROM scan_sessions
		WHERE repo_path = ? AND completed_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`, repoPath)

	session, err := scanScanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query incomplete session: %w", err)
	}
	return session, nil
}

// GetSession returns a session by id, or a typed not-found error.
func (s *Store) GetSession(sessionID int64) (*ScanSession, error) {
	row := s.db.QueryRow(`
		SELECT id, repo_path, repo_name, started_at, completed_at, outcome, total_issues, scan_duration_ms
		FROM scan_sessions
		WHERE id = ?
	`, sessionID)

	session, err := scanScanSession(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewResourceNotFoundError("session", fmt.Sprintf("%d", sessionID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// CompleteSession moves a session to a terminal state. The completion
// timestamp is written exactly once: a session that is already terminal is
// left untouched and false is returned.
func (s *Store) CompleteSession(sessionID int64, totalIssues int, durationMs int64, outcome string) (bool, error) {
	result, err := s.db.Exec(`
		UPDATE scan_sessions
		SET completed_at = ?, outcome = ?, total_issues = ?, scan_duration_ms = ?
		WHERE id = ? AND completed_at IS NULL
	`, formatTime(time.Now()), outcome, totalIssues, durationMs, sessionID)
	if err != nil {
		return false, wrapWriteErr("complete scan session", fmt.Sprintf("session %d", sessionID), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	return affected > 0, nil
}

// SaveGitPattern records one detector flag or notable commit on a session.
// Rows are append-only within the session.
func (s *Store) SaveGitPattern(pattern GitPattern) (int64, error) {
	detectedAt := pattern.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now()
	}

	result, err := s.db.Exec(`
		INSERT INTO git_patterns (session_id, pattern_type, commit_sha, commit_message, lines_changed, detected_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, pattern.SessionID, pattern.PatternType, nullString(pattern.CommitSha),
		nullString(pattern.CommitMessage), pattern.LinesChanged, formatTime(detectedAt))
	if err != nil {
		return 0, wrapWriteErr("save git pattern", pattern.PatternType, err)
	}
	return result.LastInsertId()
}

// SaveSecurityIssue records one scanner finding on a session. Findings are
// not deduplicated here; recurrence is the recurring_issues table's job.
func (s *Store) SaveSecurityIssue(issue SecurityIssue) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO security_issues (session_id, severity, category, summary, issue_url)
		VALUES (?, ?, ?, ?, ?)
	`, issue.SessionID, issue.Severity, issue.Category, issue.Summary, nullString(issue.IssueURL))
	if err != nil {
		return 0, wrapWriteErr("save security issue", issue.Summary, err)
	}
	return result.LastInsertId()
}

// GetSecurityIssue returns a single finding by id, or a typed not-found
// error.
func (s *Store) GetSecurityIssue(issueID int64) (*SecurityIssue, error) {
	row := s.db.QueryRow(`
		SELECT id, session_id, severity, category, summary, issue_url, fixed_at, fix_notes
		FROM security_issues
		WHERE id = ?
	`, issueID)

	issue, err := scanSecurityIssue(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewResourceNotFoundError("security issue", fmt.Sprintf("%d", issueID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load security issue: %w", err)
	}
	return issue, nil
}

// MarkSecurityIssueFixed stamps a finding as fixed. Like session completion,
// the fixed timestamp is written once; re-marking is a no-op.
func (s *Store) MarkSecurityIssueFixed(issueID int64, notes string) (bool, error) {
	result, err := s.db.Exec(`
		UPDATE security_issues
		SET fixed_at = ?, fix_notes = ?
		WHERE id = ? AND fixed_at IS NULL
	`, formatTime(time.Now()), nullString(notes), issueID)
	if err != nil {
		return false, wrapWriteErr("mark security issue fixed", fmt.Sprintf("issue %d", issueID), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	return affected > 0, nil
}

func scanScanSession(row rowScanner) (*ScanSession, error) {
	var (
		session     ScanSession
		startedAt   string
		completedAt sql.NullString
		outcome     sql.NullString
	)
	if err := row.Scan(&session.ID, &session.RepoPath, &session.RepoName,
		&startedAt, &completedAt, &outcome, &session.TotalIssues, &session.DurationMs); err != nil {
		return nil, err
	}

	var err error
	if session.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return nil, err
		}
		session.CompletedAt = &t
	}
	session.Outcome = stringOrEmpty(outcome)
	return &session, nil
}

func scanSecurityIssue(row rowScanner) (*SecurityIssue, error) {
	var (
		issue    SecurityIssue
		issueURL sql.NullString
		fixedAt  sql.NullString
		fixNotes sql.NullString
	)
	if err := row.Scan(&issue.ID, &issue.SessionID, &issue.Severity,
		&issue.Category, &issue.Summary, &issueURL, &fixedAt, &fixNotes); err != nil {
		return nil, err
	}
	issue.IssueURL = stringOrEmpty(issueURL)
	issue.FixNotes = stringOrEmpty(fixNotes)
	if fixedAt.Valid {
		t, err := parseTime(fixedAt.String)
		if err != nil {
			return nil, err
		}
		issue.FixedAt = &t
	}
	return &issue, nil
}
