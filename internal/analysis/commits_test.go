package analysis

import (
	"fmt"
	"testing"
	"time"

	"gpa/internal/gitlog"
)

func commitAt(hour, lines int, subject string) gitlog.Commit {
	return gitlog.Commit{
		Hash:         "abc1234",
		Subject:      subject,
		Author:       "dev",
		Time:         time.Date(2026, 3, 2, hour, 15, 0, 0, time.UTC), // a Monday
		LinesChanged: lines,
		FilesChanged: 1,
	}
}

func TestAnalyzeCommitPatternsEmptyWindow(t *testing.T) {
	report := AnalyzeCommitPatterns(nil)

	if report.TotalCommits != 0 {
		t.Errorf("expected 0 commits, got %d", report.TotalCommits)
	}
	if report.AvgLinesPerCommit != 0 {
		t.Errorf("expected avg 0, got %f", report.AvgLinesPerCommit)
	}
	for name, fired := range report.Flags() {
		if fired {
			t.Errorf("flag %s should not fire on an empty window", name)
		}
	}
}

func TestAnalyzeCommitPatternsSmallCommits(t *testing.T) {
	// 4 of 10 commits below 10 lines: 40% > 30% threshold.
	var commits []gitlog.Commit
	for i := 0; i < 4; i++ {
		commits = append(commits, commitAt(14, 5, "small change"))
	}
	for i := 0; i < 6; i++ {
		commits = append(commits, commitAt(14, 50, "normal change"))
	}

	report := AnalyzeCommitPatterns(commits)
	if report.SmallCommitsCount != 4 {
		t.Errorf("expected 4 small commits, got %d", report.SmallCommitsCount)
	}
	if report.SmallCommitsPct != 40.0 {
		t.Errorf("expected 40.0%%, got %f", report.SmallCommitsPct)
	}
	if !report.Patterns.HasManySmallCommits {
		t.Error("expected has_many_small_commits to fire at 40%")
	}
	if report.Patterns.HasLargeCommits {
		t.Error("has_large_commits should not fire without commits over 200 lines")
	}
	if report.Patterns.InconsistentSizing {
		t.Error("inconsistent_sizing needs both small and large commits")
	}
}

func TestAnalyzeCommitPatternsBoundaries(t *testing.T) {
	// Exactly 10 lines is not small; exactly 200 lines is not large.
	report := AnalyzeCommitPatterns([]gitlog.Commit{
		commitAt(14, 10, "boundary small"),
		commitAt(14, 200, "boundary large"),
	})
	if report.SmallCommitsCount != 0 {
		t.Errorf("10-line commit counted as small")
	}
	if report.LargeCommitsCount != 0 {
		t.Errorf("200-line commit counted as large")
	}

	report = AnalyzeCommitPatterns([]gitlog.Commit{
		commitAt(14, 9, "small"),
		commitAt(14, 201, "large"),
	})
	if report.SmallCommitsCount != 1 || report.LargeCommitsCount != 1 {
		t.Errorf("expected 1 small and 1 large, got %d and %d",
			report.SmallCommitsCount, report.LargeCommitsCount)
	}
	if !report.Patterns.InconsistentSizing {
		t.Error("expected inconsistent_sizing with both small and large present")
	}
}

func TestAnalyzeCommitPatternsNightHours(t *testing.T) {
	cases := []struct {
		hour  int
		night bool
	}{
		{21, false},
		{22, true},
		{23, true},
		{0, true},
		{5, true},
		{6, false},
		{12, false},
	}
	for _, tc := range cases {
		report := AnalyzeCommitPatterns([]gitlog.Commit{commitAt(tc.hour, 50, "work")})
		got := report.NightCommitsCount == 1
		if got != tc.night {
			t.Errorf("hour %d: night=%v, want %v", tc.hour, got, tc.night)
		}
	}
}

func TestAnalyzeCommitPatternsExampleCap(t *testing.T) {
	var commits []gitlog.Commit
	for i := 0; i < 25; i++ {
		commits = append(commits, commitAt(14, 50, fmt.Sprintf("change %d", i)))
	}
	report := AnalyzeCommitPatterns(commits)
	if len(report.Commits) != 10 {
		t.Errorf("expected 10 example commits, got %d", len(report.Commits))
	}
	if report.TotalCommits != 25 {
		t.Errorf("expected total 25, got %d", report.TotalCommits)
	}
}
