package storage

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables that do not exist yet. Safe to repeat:
// every statement is CREATE ... IF NOT EXISTS and nothing is ever dropped.
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}

		creators := []func(*sql.Tx) error{
			createRepositoriesTable,
			createScanSessionsTable,
			createIssueFlagsTable,
			createBehavioralPatternsTable,
			createGitPatternsTable,
			createSecurityIssuesTable,
			createRecurringIssuesTable,
			createFixAttemptsTable,
			createRepoProfilesTable,
		}
		for _, create := range creators {
			if err := create(tx); err != nil {
				return err
			}
		}

		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Debug("Database schema ensured", map[string]interface{}{
			"version": currentSchemaVersion,
		})
		return nil
	})
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createRepositoriesTable creates the repositories table. A repository is
// keyed by its normalized absolute path and is never deleted.
func createRepositoriesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS repositories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			repo_path TEXT UNIQUE NOT NULL,
			repo_name TEXT NOT NULL,
			first_seen_at TEXT NOT NULL,
			last_seen_at TEXT NOT NULL,
			total_scans INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create repositories table: %w", err)
	}
	return nil
}

// createScanSessionsTable creates the scan_sessions table. completed_at is
// NULL while a session is open; outcome distinguishes a real completion
// from an explicit abandonment.
func createScanSessionsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS scan_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			repo_path TEXT NOT NULL,
			repo_name TEXT NOT NULL,
			started_at TEXT NOT NULL,
			completed_at TEXT,
			outcome TEXT CHECK(outcome IN ('completed', 'abandoned')),
			total_issues INTEGER NOT NULL DEFAULT 0,
			scan_duration_ms INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (repo_path) REFERENCES repositories (repo_path)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create scan_sessions table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_scan_sessions_repo_path ON scan_sessions(repo_path)",
		"CREATE INDEX IF NOT EXISTS idx_scan_sessions_started_at ON scan_sessions(started_at)",
	}
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// createIssueFlagsTable creates the issue_flags table: one row per
// (repository, issue type) with occurrence counting across sessions.
func createIssueFlagsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS issue_flags (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			repo_id INTEGER NOT NULL,
			issue_type TEXT NOT NULL,
			first_detected_at TEXT NOT NULL,
			last_detected_at TEXT NOT NULL,
			occurrence_count INTEGER NOT NULL DEFAULT 1,
			severity REAL,
			notes TEXT,
			FOREIGN KEY (repo_id) REFERENCES repositories (id),
			UNIQUE(repo_id, issue_type)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create issue_flags table: %w", err)
	}
	return nil
}

// createBehavioralPatternsTable creates the behavioral_patterns table: one
// row per (session, pattern name), occurrence-counted within the session.
func createBehavioralPatternsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS behavioral_patterns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER NOT NULL,
			pattern_name TEXT NOT NULL,
			first_flagged_at TEXT NOT NULL,
			last_flagged_at TEXT NOT NULL,
			occurrence_count INTEGER NOT NULL DEFAULT 1,
			severity TEXT,
			evidence TEXT,
			FOREIGN KEY (session_id) REFERENCES scan_sessions (id),
			UNIQUE(session_id, pattern_name)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create behavioral_patterns table: %w", err)
	}
	return nil
}

// createGitPatternsTable creates the git_patterns table holding detector
// flags and notable commits attached to a session.
func createGitPatternsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS git_patterns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER NOT NULL,
			pattern_type TEXT NOT NULL,
			commit_sha TEXT,
			commit_message TEXT,
			lines_changed INTEGER NOT NULL DEFAULT 0,
			detected_at TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES scan_sessions (id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create git_patterns table: %w", err)
	}
	return nil
}

// createSecurityIssuesTable creates the security_issues table. Rows are not
// deduplicated at write time; recurrence is tracked via recurring_issues.
func createSecurityIssuesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS security_issues (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER NOT NULL,
			severity TEXT NOT NULL,
			category TEXT NOT NULL,
			summary TEXT NOT NULL,
			issue_url TEXT,
			fixed_at TEXT,
			fix_notes TEXT,
			FOREIGN KEY (session_id) REFERENCES scan_sessions (id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create security_issues table: %w", err)
	}

	if _, err := tx.Exec(
		"CREATE INDEX IF NOT EXISTS idx_security_issues_session_id ON security_issues(session_id)",
	); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// createRecurringIssuesTable creates the recurring_issues table: the
// cross-session memory keyed by (repository, issue signature).
func createRecurringIssuesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS recurring_issues (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			repo_path TEXT NOT NULL,
			issue_signature TEXT NOT NULL,
			first_seen TEXT NOT NULL,
			last_seen TEXT NOT NULL,
			occurrence_count INTEGER NOT NULL DEFAULT 1,
			FOREIGN KEY (repo_path) REFERENCES repositories (repo_path),
			UNIQUE(repo_path, issue_signature)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create recurring_issues table: %w", err)
	}
	return nil
}

// createFixAttemptsTable creates the append-only fix_attempts table. A row
// references either a (repository, issue type) pair or a security issue.
func createFixAttemptsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS fix_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			repo_id INTEGER,
			issue_type TEXT,
			security_issue_id INTEGER,
			description TEXT NOT NULL,
			outcome TEXT,
			success INTEGER,
			attempted_at TEXT NOT NULL,
			FOREIGN KEY (repo_id) REFERENCES repositories (id),
			FOREIGN KEY (security_issue_id) REFERENCES security_issues (id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create fix_attempts table: %w", err)
	}
	return nil
}

// createRepoProfilesTable creates the repo_profiles table: one optional row
// per repository, replaced wholesale on update.
func createRepoProfilesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS repo_profiles (
			repo_id INTEGER PRIMARY KEY,
			tech_stack TEXT,
			team_size INTEGER,
			project_type TEXT,
			metadata_json TEXT,
			FOREIGN KEY (repo_id) REFERENCES repositories (id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create repo_profiles table: %w", err)
	}
	return nil
}
