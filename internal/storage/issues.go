package storage

import (
	"time"
)

// FlagIssue records an issue observation against a repository. The first
// observation inserts a row with count 1; every later one is a single atomic
// increment that advances last_detected_at and overwrites severity and notes
// with the latest values. first_detected_at never changes. Returns the
// occurrence count after the write.
func (s *Store) FlagIssue(repoID int64, issueType string, severity float64, notes string) (int, error) {
	now := formatTime(time.Now())

	var count int
	err := s.db.QueryRow(`
		INSERT INTO issue_flags (repo_id, issue_type, first_detected_at, last_detected_at, occurrence_count, severity, notes)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(repo_id, issue_type) DO UPDATE SET
			occurrence_count = occurrence_count + 1,
			last_detected_at = excluded.last_detected_at,
			severity = excluded.severity,
			notes = excluded.notes
		RETURNING occurrence_count
	`, repoID, issueType, now, now, severity, nullString(notes)).Scan(&count)
	if err != nil {
		return 0, wrapWriteErr("flag issue", issueType, err)
	}
	return count, nil
}

// FlagBehavioralPattern records a behavioral observation within a session,
// with the same upsert-increment semantics as FlagIssue but keyed by
// (session, pattern name). Returns the occurrence count after the write.
func (s *Store) FlagBehavioralPattern(sessionID int64, patternName, severity, evidence string) (int, error) {
	now := formatTime(time.Now())

	var count int
	err := s.db.QueryRow(`
		INSERT INTO behavioral_patterns (session_id, pattern_name, first_flagged_at, last_flagged_at, occurrence_count, severity, evidence)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(session_id, pattern_name) DO UPDATE SET
			occurrence_count = occurrence_count + 1,
			last_flagged_at = excluded.last_flagged_at,
			severity = excluded.severity,
			evidence = excluded.evidence
		RETURNING occurrence_count
	`, sessionID, patternName, now, now, nullString(severity), nullString(evidence)).Scan(&count)
	if err != nil {
		return 0, wrapWriteErr("flag behavioral pattern", patternName, err)
	}
	return count, nil
}

// TrackRecurringIssue records a sighting of an issue signature for a
// repository. Occurrence counting works across sessions: the same signature
// seen in a later scan increments the existing row. Returns the occurrence
// count after the write.
func (s *Store) TrackRecurringIssue(repoPath, signature string) (int, error) {
	now := formatTime(time.Now())

	var count int
	err := s.db.QueryRow(`
		INSERT INTO recurring_issues (repo_path, issue_signature, first_seen, last_seen, occurrence_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(repo_path, issue_signature) DO UPDATE SET
			occurrence_count = occurrence_count + 1,
			last_seen = excluded.last_seen
		RETURNING occurrence_count
	`, repoPath, signature, now, now).Scan(&count)
	if err != nil {
		return 0, wrapWriteErr("track recurring issue", signature, err)
	}
	return count, nil
}
