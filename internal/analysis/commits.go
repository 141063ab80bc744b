// Package analysis implements the pure pattern detectors. Every detector is
// a deterministic function over an immutable window of commit records; none
// of them touch the store or perform I/O.
package analysis

import (
	"math"

	"gpa/internal/gitlog"
)

// Size and timing thresholds for commit-pattern detection.
const (
	smallCommitLines = 10  // below this a commit counts as small
	largeCommitLines = 200 // above this a commit counts as large
	nightStartHour   = 22
	nightEndHour     = 6

	manySmallShare = 0.30
	nightShare     = 0.20
)

// CommitExample is a commit reference carried in detector reports.
type CommitExample struct {
	Sha          string `json:"sha"`
	Message      string `json:"message"`
	LinesChanged int    `json:"lines_changed"`
}

// CommitPatternFlags are the booleans derived from the size/timing window.
type CommitPatternFlags struct {
	HasManySmallCommits bool `json:"has_many_small_commits"`
	HasLargeCommits     bool `json:"has_large_commits"`
	CommitsAtNight      bool `json:"commits_at_night"`
	InconsistentSizing  bool `json:"inconsistent_sizing"`
}

// CommitPatternReport is the output of the commit-size/timing detector.
type CommitPatternReport struct {
	TotalCommits      int                `json:"total_commits"`
	AvgLinesPerCommit float64            `json:"avg_lines_per_commit"`
	SmallCommitsCount int                `json:"small_commits_count"`
	SmallCommitsPct   float64            `json:"small_commits_pct"`
	LargeCommitsCount int                `json:"large_commits_count"`
	LargeCommitsPct   float64            `json:"large_commits_pct"`
	NightCommitsCount int                `json:"night_commits_count"`
	NightCommitsPct   float64            `json:"night_commits_pct"`
	Commits           []CommitExample    `json:"commits"`
	Patterns          CommitPatternFlags `json:"patterns"`
}

// Flags exposes the report's booleans keyed by pattern name, for ingestion.
func (r CommitPatternReport) Flags() map[string]bool {
	return map[string]bool{
		"has_many_small_commits": r.Patterns.HasManySmallCommits,
		"has_large_commits":      r.Patterns.HasLargeCommits,
		"commits_at_night":       r.Patterns.CommitsAtNight,
		"inconsistent_sizing":    r.Patterns.InconsistentSizing,
	}
}

// isNightHour reports whether an hour falls in [22,24) or [0,6).
func isNightHour(hour int) bool {
	return hour >= nightStartHour || hour < nightEndHour
}

// AnalyzeCommitPatterns computes size and timing statistics over a window of
// commits. An empty window yields zero counts, average 0, and no flags.
func AnalyzeCommitPatterns(commits []gitlog.Commit) CommitPatternReport {
	report := CommitPatternReport{
		TotalCommits: len(commits),
		Commits:      exampleList(commits, 10),
	}

	if len(commits) == 0 {
		return report
	}

	totalLines := 0
	for _, c := range commits {
		totalLines += c.LinesChanged
		if c.LinesChanged < smallCommitLines {
			report.SmallCommitsCount++
		}
		if c.LinesChanged > largeCommitLines {
			report.LargeCommitsCount++
		}
		if isNightHour(c.Hour()) {
			report.NightCommitsCount++
		}
	}

	total := float64(len(commits))
	report.AvgLinesPerCommit = round1(float64(totalLines) / total)
	report.SmallCommitsPct = round1(float64(report.SmallCommitsCount) / total * 100)
	report.LargeCommitsPct = round1(float64(report.LargeCommitsCount) / total * 100)
	report.NightCommitsPct = round1(float64(report.NightCommitsCount) / total * 100)

	report.Patterns = CommitPatternFlags{
		HasManySmallCommits: float64(report.SmallCommitsCount) > total*manySmallShare,
		HasLargeCommits:     report.LargeCommitsCount > 0,
		CommitsAtNight:      float64(report.NightCommitsCount) > total*nightShare,
		InconsistentSizing:  report.SmallCommitsCount > 0 && report.LargeCommitsCount > 0,
	}
	return report
}

func exampleList(commits []gitlog.Commit, max int) []CommitExample {
	n := len(commits)
	if n > max {
		n = max
	}
	examples := make([]CommitExample, 0, n)
	for _, c := range commits[:n] {
		examples = append(examples, CommitExample{
			Sha:          c.Hash,
			Message:      c.Subject,
			LinesChanged: c.LinesChanged,
		})
	}
	return examples
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
