// Package scanner invokes an external vulnerability scanner binary against a
// repository and normalizes its JSON report. The runner is optional: callers
// that already hold a parsed report can ingest it directly.
package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Severity vocabulary. Unknown severities from the tool are kept verbatim
// and sort after these.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// Finding is one normalized scanner result.
type Finding struct {
	Severity string `json:"severity"`
	Category string `json:"category"`
	Summary  string `json:"summary"`
	URL      string `json:"url,omitempty"`
}

// Report is a full scanner run: the findings plus run metadata.
type Report struct {
	Tool       string    `json:"tool"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Findings   []Finding `json:"findings"`
}

// CountBySeverity returns finding counts keyed by severity.
func (r *Report) CountBySeverity() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Findings {
		counts[strings.ToLower(f.Severity)]++
	}
	return counts
}

// ScanError reasons.
const (
	ReasonMissingPrerequisite = "missing_prerequisite"
	ReasonInvalidInput        = "invalid_input"
	ReasonTimeout             = "timeout"
	ReasonToolFailure         = "tool_failure"
)

// ScanError describes why a scan could not produce a report. Reason is one
// of the Reason constants so callers can branch without string matching.
type ScanError struct {
	Reason  string
	Message string
	cause   error
}

func (e *ScanError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("scan failed (%s): %s: %v", e.Reason, e.Message, e.cause)
	}
	return fmt.Sprintf("scan failed (%s): %s", e.Reason, e.Message)
}

func (e *ScanError) Unwrap() error {
	return e.cause
}

// Runner executes the configured scanner binary.
type Runner struct {
	binary  string
	args    []string
	timeout time.Duration
}

// DefaultTimeout bounds a scanner run. Full scans of large repositories are
// slow, so the bound is generous.
const DefaultTimeout = 15 * time.Minute

// NewRunner creates a runner for the configured binary. A zero timeout
// falls back to DefaultTimeout.
func NewRunner(binary string, args []string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{binary: binary, args: args, timeout: timeout}
}

// Available reports whether the scanner binary can be found on PATH.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}

// Scan runs the scanner against repoPath and parses its JSON report from
// stdout. The repository path is appended to the configured arguments.
func (r *Runner) Scan(ctx context.Context, repoPath string) (*Report, error) {
	if r.binary == "" {
		return nil, &ScanError{
			Reason:  ReasonInvalidInput,
			Message: "no scanner binary configured",
		}
	}
	if !r.Available() {
		return nil, &ScanError{
			Reason:  ReasonMissingPrerequisite,
			Message: fmt.Sprintf("scanner binary %q not found on PATH", r.binary),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	args := append(append([]string{}, r.args...), repoPath)
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = repoPath

	output, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, &ScanError{
			Reason:  ReasonTimeout,
			Message: fmt.Sprintf("scan exceeded %s", r.timeout),
			cause:   ctx.Err(),
		}
	}
	if err != nil {
		// Many scanners exit non-zero when findings exist. Accept the run if
		// stdout still parses as a report.
		if exitErr, ok := err.(*exec.ExitError); ok && len(output) > 0 {
			report, parseErr := ParseReport(output)
			if parseErr == nil {
				report.Tool = r.binary
				report.StartedAt = started
				report.DurationMs = time.Since(started).Milliseconds()
				return report, nil
			}
			return nil, &ScanError{
				Reason:  ReasonToolFailure,
				Message: fmt.Sprintf("scanner exited with code %d", exitErr.ExitCode()),
				cause:   err,
			}
		}
		return nil, &ScanError{
			Reason:  ReasonToolFailure,
			Message: "scanner failed to run",
			cause:   err,
		}
	}

	report, err := ParseReport(output)
	if err != nil {
		return nil, err
	}
	report.Tool = r.binary
	report.StartedAt = started
	report.DurationMs = time.Since(started).Milliseconds()
	return report, nil
}

// ParseReport parses scanner output: either a JSON array of findings or an
// object with a "findings" array. Empty output is an empty report.
func ParseReport(output []byte) (*Report, error) {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" || trimmed == "null" || trimmed == "[]" {
		return &Report{}, nil
	}

	var findings []Finding
	if err := json.Unmarshal([]byte(trimmed), &findings); err == nil {
		return &Report{Findings: normalize(findings)}, nil
	}

	var wrapped struct {
		Findings []Finding `json:"findings"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
		return nil, &ScanError{
			Reason:  ReasonToolFailure,
			Message: "scanner output is not a recognized report shape",
			cause:   err,
		}
	}
	return &Report{Findings: normalize(wrapped.Findings)}, nil
}

func normalize(findings []Finding) []Finding {
	for i := range findings {
		findings[i].Severity = strings.ToLower(strings.TrimSpace(findings[i].Severity))
		if findings[i].Severity == "" {
			findings[i].Severity = SeverityInfo
		}
		if findings[i].Category == "" {
			findings[i].Category = "uncategorized"
		}
	}
	return findings
}
