package storage

import (
	"fmt"
	"time"
)

// Session outcome tags. A completed session carries the results it found;
// an abandoned one was explicitly closed without saving. Both are terminal
// and both set completed_at exactly once.
const (
	OutcomeCompleted = "completed"
	OutcomeAbandoned = "abandoned"
)

// Repository is a tracked repository, keyed by normalized path.
type Repository struct {
	ID          int64     `json:"id"`
	Path        string    `json:"repo_path"`
	Name        string    `json:"repo_name"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	TotalScans  int       `json:"total_scans"`
}

// ScanSession is one bounded analysis run over a repository.
type ScanSession struct {
	ID          int64      `json:"id"`
	RepoPath    string     `json:"repo_path"`
	RepoName    string     `json:"repo_name"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Outcome     string     `json:"outcome,omitempty"`
	TotalIssues int        `json:"total_issues"`
	DurationMs  int64      `json:"scan_duration_ms"`
}

// Completed reports whether the session has reached a terminal state.
func (s *ScanSession) Completed() bool {
	return s.CompletedAt != nil
}

// IssueFlag is a repository-scoped issue with cross-session occurrence
// counting. Notes and severity hold the latest observation only.
type IssueFlag struct {
	ID              int64     `json:"id"`
	RepoID          int64     `json:"repo_id"`
	IssueType       string    `json:"issue_type"`
	FirstDetectedAt time.Time `json:"first_detected_at"`
	LastDetectedAt  time.Time `json:"last_detected_at"`
	OccurrenceCount int       `json:"occurrence_count"`
	Severity        float64   `json:"severity"`
	Notes           string    `json:"notes"`
}

// BehavioralPattern is a session-scoped pattern with occurrence counting.
type BehavioralPattern struct {
	ID              int64     `json:"id"`
	SessionID       int64     `json:"session_id"`
	PatternName     string    `json:"pattern_name"`
	FirstFlaggedAt  time.Time `json:"first_flagged_at"`
	LastFlaggedAt   time.Time `json:"last_flagged_at"`
	OccurrenceCount int       `json:"occurrence_count"`
	Severity        string    `json:"severity"`
	Evidence        string    `json:"evidence"`
}

// GitPattern is a detector flag or notable commit attached to a session.
type GitPattern struct {
	ID            int64     `json:"id"`
	SessionID     int64     `json:"session_id"`
	PatternType   string    `json:"pattern_type"`
	CommitSha     string    `json:"commit_sha,omitempty"`
	CommitMessage string    `json:"commit_message,omitempty"`
	LinesChanged  int       `json:"lines_changed"`
	DetectedAt    time.Time `json:"detected_at"`
}

// SecurityIssue is one scanner finding attached to a session.
type SecurityIssue struct {
	ID        int64      `json:"id"`
	SessionID int64      `json:"session_id"`
	Severity  string     `json:"severity"`
	Category  string     `json:"category"`
	Summary   string     `json:"summary"`
	IssueURL  string     `json:"issue_url,omitempty"`
	FixedAt   *time.Time `json:"fixed_at,omitempty"`
	FixNotes  string     `json:"fix_notes,omitempty"`
}

// RecurringIssue is the cross-session memory record: the same underlying
// problem recognized across independent scans by its signature.
type RecurringIssue struct {
	ID              int64     `json:"id"`
	RepoPath        string    `json:"repo_path"`
	IssueSignature  string    `json:"issue_signature"`
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
	OccurrenceCount int       `json:"occurrence_count"`
}

// FixAttempt is an append-only record of a remediation try. It references
// either a (repository, issue type) pair or a specific security issue.
type FixAttempt struct {
	ID              int64     `json:"id"`
	RepoID          *int64    `json:"repo_id,omitempty"`
	IssueType       string    `json:"issue_type,omitempty"`
	SecurityIssueID *int64    `json:"security_issue_id,omitempty"`
	Description     string    `json:"description"`
	Outcome         string    `json:"outcome,omitempty"`
	Success         *bool     `json:"success,omitempty"`
	AttemptedAt     time.Time `json:"attempted_at"`
}

// RepoProfile is optional free-form metadata, replaced wholesale on update.
type RepoProfile struct {
	RepoID       int64  `json:"repo_id"`
	TechStack    string `json:"tech_stack"`
	TeamSize     int    `json:"team_size"`
	ProjectType  string `json:"project_type"`
	MetadataJSON string `json:"metadata_json,omitempty"`
}

// RepoContext is the assembled memory view for one repository.
type RepoContext struct {
	Repo          Repository    `json:"repo_info"`
	RecentScans   []ScanSession `json:"recent_scans"`
	FlaggedIssues []IssueFlag   `json:"flagged_issues"`
	FixAttempts   []FixAttempt  `json:"fix_attempts"`
	Profile       *RepoProfile  `json:"profile,omitempty"`
}

// SessionDetails is the assembled view of one session.
type SessionDetails struct {
	Session            ScanSession         `json:"session"`
	SecurityIssues     []SecurityIssue     `json:"security_issues"`
	GitPatterns        []GitPattern        `json:"git_patterns"`
	BehavioralPatterns []BehavioralPattern `json:"behavioral_patterns"`
}

// signatureSummaryPrefix bounds how much of a finding's summary feeds the
// signature, so reworded tails don't defeat recurrence matching.
const signatureSummaryPrefix = 100

// IssueSignature derives the deterministic signature used to recognize the
// same finding across independent scans.
func IssueSignature(category, summary string) string {
	if category == "" {
		category = "uncategorized"
	}
	// Truncate on a rune boundary so the signature stays valid UTF-8.
	if runes := []rune(summary); len(runes) > signatureSummaryPrefix {
		summary = string(runes[:signatureSummaryPrefix])
	}
	return fmt.Sprintf("%s:%s", category, summary)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
