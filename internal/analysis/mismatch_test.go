package analysis

import (
	"testing"

	"gpa/internal/gitlog"
)

func TestCompareMessageVsDiffDownplaying(t *testing.T) {
	// Ten 300-line commits all labeled "quick fix": every one is downplaying.
	var commits []gitlog.Commit
	for i := 0; i < 10; i++ {
		commits = append(commits, commitAt(14, 300, "quick fix"))
	}

	report := CompareMessageVsDiff(commits, DefaultKeywords())
	downplaying := 0
	for _, m := range report.Mismatches {
		if m.Type == MismatchDownplaying {
			downplaying++
		}
	}
	if downplaying != 10 {
		t.Errorf("expected 10 downplaying mismatches, got %d", downplaying)
	}
	if !report.Patterns.FrequentlyDownplays {
		t.Error("frequently_downplays should fire with 10 instances")
	}
}

func TestCompareMessageVsDiffThresholds(t *testing.T) {
	// Minimizing message at exactly 100 lines is not downplaying.
	report := CompareMessageVsDiff([]gitlog.Commit{
		commitAt(14, 100, "just a tweak"),
	}, DefaultKeywords())
	if report.MismatchesFound != 0 {
		t.Errorf("100-line minimizing commit should not mismatch, got %d", report.MismatchesFound)
	}

	report = CompareMessageVsDiff([]gitlog.Commit{
		commitAt(14, 101, "just a tweak"),
	}, DefaultKeywords())
	if report.MismatchesFound != 1 {
		t.Errorf("101-line minimizing commit should mismatch, got %d", report.MismatchesFound)
	}
}

func TestCompareMessageVsDiffVagueRequiresShortMessage(t *testing.T) {
	keywords := DefaultKeywords()

	// Vague keyword, short message, significant change: flagged.
	report := CompareMessageVsDiff([]gitlog.Commit{
		commitAt(14, 80, "update stuff"),
	}, keywords)
	if report.MismatchesFound != 1 || report.Mismatches[0].Type != MismatchVague {
		t.Fatalf("expected one vague_on_significant mismatch, got %+v", report.Mismatches)
	}

	// Same keyword in a long, descriptive message: not flagged.
	report = CompareMessageVsDiff([]gitlog.Commit{
		commitAt(14, 80, "update the retry policy to honor server backoff hints"),
	}, keywords)
	if report.MismatchesFound != 0 {
		t.Errorf("descriptive message should not be vague, got %d", report.MismatchesFound)
	}
}

func TestCompareMessageVsDiffBothTypes(t *testing.T) {
	// "just stuff" is minimizing and vague; at 150 lines it trips both rules.
	report := CompareMessageVsDiff([]gitlog.Commit{
		commitAt(14, 150, "just stuff"),
	}, DefaultKeywords())

	if report.MismatchesFound != 2 {
		t.Fatalf("expected the commit under both types, got %d", report.MismatchesFound)
	}
	types := map[string]bool{}
	for _, m := range report.Mismatches {
		types[m.Type] = true
	}
	if !types[MismatchDownplaying] || !types[MismatchVague] {
		t.Errorf("expected both mismatch types, got %v", types)
	}
}

func TestCompareMessageVsDiffAggregateThreshold(t *testing.T) {
	// Exactly 3 instances is not "frequently": the flag needs more than 3.
	var commits []gitlog.Commit
	for i := 0; i < 3; i++ {
		commits = append(commits, commitAt(14, 300, "small cleanup"))
	}
	report := CompareMessageVsDiff(commits, DefaultKeywords())
	if report.Patterns.FrequentlyDownplays {
		t.Error("frequently_downplays should not fire at exactly 3 instances")
	}

	commits = append(commits, commitAt(14, 300, "small cleanup"))
	report = CompareMessageVsDiff(commits, DefaultKeywords())
	if !report.Patterns.FrequentlyDownplays {
		t.Error("frequently_downplays should fire at 4 instances")
	}
}
