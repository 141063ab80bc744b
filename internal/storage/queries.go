package storage

import (
	"database/sql"
	"fmt"
)

const (
	contextRecentScans = 5
	contextFixAttempts = 10
)

// GetRepoContext assembles the accumulated memory for one repository: the
// repo row, its most recent scans, flagged issues ordered by how often they
// recur, recent fix attempts, and the profile when one exists.
func (s *Store) GetRepoContext(repoPath string) (*RepoContext, error) {
	repo, err := s.GetRepoByPath(repoPath)
	if err != nil {
		return nil, err
	}

	scans, err := s.GetScanHistory(repoPath, contextRecentScans)
	if err != nil {
		return nil, err
	}

	issues, err := s.flaggedIssues(repo.ID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.FixAttemptsForRepo(repo.ID, contextFixAttempts)
	if err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(repo.ID)
	if err != nil {
		return nil, err
	}

	return &RepoContext{
		Repo:          *repo,
		RecentScans:   scans,
		FlaggedIssues: issues,
		FixAttempts:   attempts,
		Profile:       profile,
	}, nil
}

// GetScanHistory returns a repository's sessions, newest first.
func (s *Store) GetScanHistory(repoPath string, limit int) ([]ScanSession, error) {
	rows, err := s.db.Query(`
		SELECT id, repo_path, repo_name, started_at, completed_at, outcome, total_issues, scan_duration_ms
		FROM scan_sessions
		WHERE repo_path = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, repoPath, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var sessions []ScanSession
	for rows.Next() {
		session, err := scanScanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// GetRecurringIssues returns a repository's recurring issues ordered by
// occurrence count, most frequent first. An optional substring filter
// narrows by signature.
func (s *Store) GetRecurringIssues(repoPath, filter string) ([]RecurringIssue, error) {
	query := `
		SELECT id, repo_path, issue_signature, first_seen, last_seen, occurrence_count
		FROM recurring_issues
		WHERE repo_path = ?
	`
	args := []interface{}{repoPath}
	if filter != "" {
		query += " AND issue_signature LIKE ?"
		args = append(args, "%"+filter+"%")
	}
	query += " ORDER BY occurrence_count DESC, last_seen DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring issues: %w", err)
	}
	defer rows.Close()

	var issues []RecurringIssue
	for rows.Next() {
		var (
			issue     RecurringIssue
			firstSeen string
			lastSeen  string
		)
		if err := rows.Scan(&issue.ID, &issue.RepoPath, &issue.IssueSignature,
			&firstSeen, &lastSeen, &issue.OccurrenceCount); err != nil {
			return nil, fmt.Errorf("failed to scan recurring issue: %w", err)
		}
		if issue.FirstSeen, err = parseTime(firstSeen); err != nil {
			return nil, err
		}
		if issue.LastSeen, err = parseTime(lastSeen); err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// GetSessionDetails returns one session with everything recorded under it.
// Security issues come back most severe first; behavioral patterns by how
// often they were flagged.
func (s *Store) GetSessionDetails(sessionID int64) (*SessionDetails, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	issues, err := s.securityIssuesForSession(sessionID)
	if err != nil {
		return nil, err
	}

	gitPatterns, err := s.gitPatternsForSession(sessionID)
	if err != nil {
		return nil, err
	}

	behavioral, err := s.behavioralPatternsForSession(sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionDetails{
		Session:            *session,
		SecurityIssues:     issues,
		GitPatterns:        gitPatterns,
		BehavioralPatterns: behavioral,
	}, nil
}

func (s *Store) flaggedIssues(repoID int64) ([]IssueFlag, error) {
	rows, err := s.db.Query(`
		SELECT id, repo_id, issue_type, first_detected_at, last_detected_at, occurrence_count, severity, notes
		FROM issue_flags
		WHERE repo_id = ?
		ORDER BY occurrence_count DESC, last_detected_at DESC
	`, repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query issue flags: %w", err)
	}
	defer rows.Close()

	var flags []IssueFlag
	for rows.Next() {
		var (
			flag          IssueFlag
			firstDetected string
			lastDetected  string
			severity      sql.NullFloat64
			notes         sql.NullString
		)
		if err := rows.Scan(&flag.ID, &flag.RepoID, &flag.IssueType,
			&firstDetected, &lastDetected, &flag.OccurrenceCount, &severity, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan issue flag: %w", err)
		}
		if flag.FirstDetectedAt, err = parseTime(firstDetected); err != nil {
			return nil, err
		}
		if flag.LastDetectedAt, err = parseTime(lastDetected); err != nil {
			return nil, err
		}
		if severity.Valid {
			flag.Severity = severity.Float64
		}
		flag.Notes = stringOrEmpty(notes)
		flags = append(flags, flag)
	}
	return flags, rows.Err()
}

func (s *Store) securityIssuesForSession(sessionID int64) ([]SecurityIssue, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, severity, category, summary, issue_url, fixed_at, fix_notes
		FROM security_issues
		WHERE session_id = ?
		ORDER BY CASE lower(severity)
			WHEN 'critical' THEN 0
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			WHEN 'low' THEN 3
			WHEN 'info' THEN 4
			ELSE 5
		END, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query security issues: %w", err)
	}
	defer rows.Close()

	var issues []SecurityIssue
	for rows.Next() {
		issue, err := scanSecurityIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security issue: %w", err)
		}
		issues = append(issues, *issue)
	}
	return issues, rows.Err()
}

func (s *Store) gitPatternsForSession(sessionID int64) ([]GitPattern, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, pattern_type, commit_sha, commit_message, lines_changed, detected_at
		FROM git_patterns
		WHERE session_id = ?
		ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query git patterns: %w", err)
	}
	defer rows.Close()

	var patterns []GitPattern
	for rows.Next() {
		var (
			p          GitPattern
			sha        sql.NullString
			message    sql.NullString
			detectedAt string
		)
		if err := rows.Scan(&p.ID, &p.SessionID, &p.PatternType,
			&sha, &message, &p.LinesChanged, &detectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan git pattern: %w", err)
		}
		p.CommitSha = stringOrEmpty(sha)
		p.CommitMessage = stringOrEmpty(message)
		if p.DetectedAt, err = parseTime(detectedAt); err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func (s *Store) behavioralPatternsForSession(sessionID int64) ([]BehavioralPattern, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, pattern_name, first_flagged_at, last_flagged_at, occurrence_count, severity, evidence
		FROM behavioral_patterns
		WHERE session_id = ?
		ORDER BY occurrence_count DESC, pattern_name
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query behavioral patterns: %w", err)
	}
	defer rows.Close()

	var patterns []BehavioralPattern
	for rows.Next() {
		var (
			p         BehavioralPattern
			firstFlag string
			lastFlag  string
			severity  sql.NullString
			evidence  sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.SessionID, &p.PatternName,
			&firstFlag, &lastFlag, &p.OccurrenceCount, &severity, &evidence); err != nil {
			return nil, fmt.Errorf("failed to scan behavioral pattern: %w", err)
		}
		if p.FirstFlaggedAt, err = parseTime(firstFlag); err != nil {
			return nil, err
		}
		if p.LastFlaggedAt, err = parseTime(lastFlag); err != nil {
			return nil, err
		}
		p.Severity = stringOrEmpty(severity)
		p.Evidence = stringOrEmpty(evidence)
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}
