package analysis

import (
	"fmt"
	"strings"

	"gpa/internal/gitlog"
)

// Message/diff mismatch thresholds.
const (
	downplayLines    = 100 // minimizing message over this many lines is downplaying
	significantLines = 50  // vague message over this many lines avoids specificity
	shortMsgWords    = 5   // fewer words than this counts as a short message
	mismatchLimit    = 3   // more instances than this sets the aggregate flag
)

// Mismatch kinds.
const (
	MismatchDownplaying = "downplaying"
	MismatchVague       = "vague_on_significant"
)

// Mismatch is one commit whose message disagrees with its diff.
type Mismatch struct {
	Type         string `json:"type"`
	Sha          string `json:"sha"`
	Message      string `json:"message"`
	LinesChanged int    `json:"lines_changed"`
	Observation  string `json:"observation"`
}

// MismatchFlags are the aggregate booleans of the mismatch detector.
type MismatchFlags struct {
	FrequentlyDownplays bool `json:"frequently_downplays"`
	AvoidsSpecificity   bool `json:"avoids_specificity"`
}

// MismatchReport is the output of the message/diff-mismatch detector.
type MismatchReport struct {
	TotalCommits    int           `json:"total_commits_analyzed"`
	MismatchesFound int           `json:"mismatches_found"`
	Mismatches      []Mismatch    `json:"mismatches"`
	Patterns        MismatchFlags `json:"patterns"`
}

// Flags exposes the report's booleans keyed by pattern name, for ingestion.
func (r MismatchReport) Flags() map[string]bool {
	return map[string]bool{
		"frequently_downplays": r.Patterns.FrequentlyDownplays,
		"avoids_specificity":   r.Patterns.AvoidsSpecificity,
	}
}

// CompareMessageVsDiff flags commits whose message language disagrees with
// the size of the change. The two rules are evaluated independently: a
// single commit can appear in the list under both types.
func CompareMessageVsDiff(commits []gitlog.Commit, keywords KeywordSets) MismatchReport {
	report := MismatchReport{TotalCommits: len(commits)}

	downplaying := 0
	vagueOnSignificant := 0

	for _, c := range commits {
		msg := strings.ToLower(c.Subject)

		if containsAny(msg, keywords.Minimizing) && c.LinesChanged > downplayLines {
			downplaying++
			report.Mismatches = append(report.Mismatches, Mismatch{
				Type:         MismatchDownplaying,
				Sha:          c.Hash,
				Message:      c.Subject,
				LinesChanged: c.LinesChanged,
				Observation: fmt.Sprintf(
					"Message uses minimizing language but changed %d lines", c.LinesChanged),
			})
		}

		isVagueAndShort := containsAny(msg, keywords.Vague) &&
			len(strings.Fields(msg)) < shortMsgWords
		if isVagueAndShort && c.LinesChanged > significantLines {
			vagueOnSignificant++
			report.Mismatches = append(report.Mismatches, Mismatch{
				Type:         MismatchVague,
				Sha:          c.Hash,
				Message:      c.Subject,
				LinesChanged: c.LinesChanged,
				Observation:  fmt.Sprintf("Vague message for %d line change", c.LinesChanged),
			})
		}
	}

	report.MismatchesFound = len(report.Mismatches)
	report.Patterns = MismatchFlags{
		FrequentlyDownplays: downplaying > mismatchLimit,
		AvoidsSpecificity:   vagueOnSignificant > mismatchLimit,
	}
	return report
}
