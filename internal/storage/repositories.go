package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"gpa/internal/errors"
)

// GetOrCreateRepo returns the repository row for a normalized path, creating
// it on first sight. Re-seeing a known path only advances last_seen_at.
func (s *Store) GetOrCreateRepo(repoPath string) (*Repository, error) {
	now := formatTime(time.Now())
	name := filepath.Base(repoPath)

	row := s.db.QueryRow(`
		INSERT INTO repositories (repo_path, repo_name, first_seen_at, last_seen_at, total_scans)
		VALUES (?, ?, ?, ?, 0)
		ON CONFLICT(repo_path) DO UPDATE SET
			last_seen_at = excluded.last_seen_at
		RETURNING id, repo_path, repo_name, first_seen_at, last_seen_at, total_scans
	`, repoPath, name, now, now)

	repo, err := scanRepository(row)
	if err != nil {
		return nil, wrapWriteErr("get or create repository", repoPath, err)
	}
	return repo, nil
}

// GetRepoByPath returns the repository row for a path, or a typed
// not-found error when the path has never been seen.
func (s *Store) GetRepoByPath(repoPath string) (*Repository, error) {
	row := s.db.QueryRow(`
		SELECT id, repo_path, repo_name, first_seen_at, last_seen_at, total_scans
		FROM repositories
		WHERE repo_path = ?
	`, repoPath)

	repo, err := scanRepository(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewResourceNotFoundError("repository", repoPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load repository: %w", err)
	}
	return repo, nil
}

// UpsertProfile replaces the repository's profile wholesale. There is no
// field-level merge: the caller sends the full profile every time.
func (s *Store) UpsertProfile(profile RepoProfile) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO repo_profiles (repo_id, tech_stack, team_size, project_type, metadata_json)
		VALUES (?, ?, ?, ?, ?)
	`, profile.RepoID, nullString(profile.TechStack), profile.TeamSize,
		nullString(profile.ProjectType), nullString(profile.MetadataJSON))
	if err != nil {
		return wrapWriteErr("upsert repository profile", fmt.Sprintf("repo %d", profile.RepoID), err)
	}
	return nil
}

// GetProfile returns the repository's profile, or nil when none was stored.
func (s *Store) GetProfile(repoID int64) (*RepoProfile, error) {
	var (
		p           RepoProfile
		techStack   sql.NullString
		projectType sql.NullString
		metadata    sql.NullString
	)
	err := s.db.QueryRow(`
		SELECT repo_id, tech_stack, team_size, project_type, metadata_json
		FROM repo_profiles
		WHERE repo_id = ?
	`, repoID).Scan(&p.RepoID, &techStack, &p.TeamSize, &projectType, &metadata)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load repository profile: %w", err)
	}
	p.TechStack = stringOrEmpty(techStack)
	p.ProjectType = stringOrEmpty(projectType)
	p.MetadataJSON = stringOrEmpty(metadata)
	return &p, nil
}

// AddFixAttempt appends a remediation record. Attempts are never updated or
// deduplicated: retrying the same fix produces a second row.
func (s *Store) AddFixAttempt(attempt FixAttempt) (int64, error) {
	attemptedAt := attempt.AttemptedAt
	if attemptedAt.IsZero() {
		attemptedAt = time.Now()
	}

	result, err := s.db.Exec(`
		INSERT INTO fix_attempts (repo_id, issue_type, security_issue_id, description, outcome, success, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, nullInt64(attempt.RepoID), nullString(attempt.IssueType),
		nullInt64(attempt.SecurityIssueID), attempt.Description,
		nullString(attempt.Outcome), nullBool(attempt.Success), formatTime(attemptedAt))
	if err != nil {
		return 0, wrapWriteErr("add fix attempt", attempt.Description, err)
	}
	return result.LastInsertId()
}

// FixAttemptsForRepo returns the newest fix attempts for a repository.
func (s *Store) FixAttemptsForRepo(repoID int64, limit int) ([]FixAttempt, error) {
	rows, err := s.db.Query(`
		SELECT id, repo_id, issue_type, security_issue_id, description, outcome, success, attempted_at
		FROM fix_attempts
		WHERE repo_id = ?
		ORDER BY attempted_at DESC
		LIMIT ?
	`, repoID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fix attempts: %w", err)
	}
	defer rows.Close()
	return scanFixAttempts(rows)
}

// FixAttemptsForIssue returns all attempts recorded against one security
// issue, oldest first, so a fix prompt can recount what was already tried.
func (s *Store) FixAttemptsForIssue(securityIssueID int64) ([]FixAttempt, error) {
	rows, err := s.db.Query(`
		SELECT id, repo_id, issue_type, security_issue_id, description, outcome, success, attempted_at
		FROM fix_attempts
		WHERE security_issue_id = ?
		ORDER BY attempted_at ASC
	`, securityIssueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fix attempts: %w", err)
	}
	defer rows.Close()
	return scanFixAttempts(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRepository(row rowScanner) (*Repository, error) {
	var (
		repo      Repository
		firstSeen string
		lastSeen  string
	)
	if err := row.Scan(&repo.ID, &repo.Path, &repo.Name, &firstSeen, &lastSeen, &repo.TotalScans); err != nil {
		return nil, err
	}

	var err error
	if repo.FirstSeenAt, err = parseTime(firstSeen); err != nil {
		return nil, err
	}
	if repo.LastSeenAt, err = parseTime(lastSeen); err != nil {
		return nil, err
	}
	return &repo, nil
}

func scanFixAttempts(rows *sql.Rows) ([]FixAttempt, error) {
	var attempts []FixAttempt
	for rows.Next() {
		var (
			a           FixAttempt
			repoID      sql.NullInt64
			issueType   sql.NullString
			secIssueID  sql.NullInt64
			outcome     sql.NullString
			success     sql.NullInt64
			attemptedAt string
		)
		if err := rows.Scan(&a.ID, &repoID, &issueType, &secIssueID,
			&a.Description, &outcome, &success, &attemptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fix attempt: %w", err)
		}
		if repoID.Valid {
			v := repoID.Int64
			a.RepoID = &v
		}
		if secIssueID.Valid {
			v := secIssueID.Int64
			a.SecurityIssueID = &v
		}
		if success.Valid {
			v := success.Int64 != 0
			a.Success = &v
		}
		a.IssueType = stringOrEmpty(issueType)
		a.Outcome = stringOrEmpty(outcome)

		var err error
		if a.AttemptedAt, err = parseTime(attemptedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
