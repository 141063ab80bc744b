package analysis

import (
	"strings"

	"gpa/internal/gitlog"
)

// Language-pattern thresholds (share of commits in the window).
const (
	minimizeShare   = 0.20
	defensiveShare  = 0.15
	perfectionShare = 0.10
	vagueShare      = 0.30

	maxLanguageExamples = 5
)

// CategoryReport describes one keyword category's matches in the window.
type CategoryReport struct {
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
	Examples   []CommitExample `json:"examples"`
}

// LanguageFlags are the booleans derived from keyword category shares.
type LanguageFlags struct {
	FrequentlyMinimizes bool `json:"frequently_minimizes"`
	FrequentlyDefensive bool `json:"frequently_defensive"`
	SeeksPerfection     bool `json:"seeks_perfection"`
	OftenVague          bool `json:"often_vague"`
}

// LanguageReport is the output of the message-language detector.
type LanguageReport struct {
	TotalCommits  int            `json:"total_commits_analyzed"`
	Minimizing    CategoryReport `json:"minimizing_commits"`
	Defensive     CategoryReport `json:"defensive_commits"`
	Perfectionist CategoryReport `json:"perfectionist_commits"`
	Vague         CategoryReport `json:"vague_commits"`
	Patterns      LanguageFlags  `json:"patterns"`
}

// Flags exposes the report's booleans keyed by pattern name, for ingestion.
func (r LanguageReport) Flags() map[string]bool {
	return map[string]bool{
		"frequently_minimizes": r.Patterns.FrequentlyMinimizes,
		"frequently_defensive": r.Patterns.FrequentlyDefensive,
		"seeks_perfection":     r.Patterns.SeeksPerfection,
		"often_vague":          r.Patterns.OftenVague,
	}
}

// AnalyzeMessageLanguage classifies each commit's first message line against
// the four keyword sets. A commit may match zero to four categories at once.
// Zero commits yields percentages of 0, never a division error.
func AnalyzeMessageLanguage(commits []gitlog.Commit, keywords KeywordSets) LanguageReport {
	report := LanguageReport{TotalCommits: len(commits)}

	var minimizing, defensive, perfectionist, vague []CommitExample

	for _, c := range commits {
		msg := strings.ToLower(c.Subject)
		example := CommitExample{
			Sha:          c.Hash,
			Message:      c.Subject,
			LinesChanged: c.LinesChanged,
		}

		if containsAny(msg, keywords.Minimizing) {
			minimizing = append(minimizing, example)
		}
		if containsAny(msg, keywords.Defensive) {
			defensive = append(defensive, example)
		}
		if containsAny(msg, keywords.Perfectionist) {
			perfectionist = append(perfectionist, example)
		}
		if containsAny(msg, keywords.Vague) {
			vague = append(vague, example)
		}
	}

	report.Minimizing = categoryReport(minimizing, len(commits))
	report.Defensive = categoryReport(defensive, len(commits))
	report.Perfectionist = categoryReport(perfectionist, len(commits))
	report.Vague = categoryReport(vague, len(commits))

	if total := float64(len(commits)); total > 0 {
		report.Patterns = LanguageFlags{
			FrequentlyMinimizes: float64(report.Minimizing.Count) > total*minimizeShare,
			FrequentlyDefensive: float64(report.Defensive.Count) > total*defensiveShare,
			SeeksPerfection:     float64(report.Perfectionist.Count) > total*perfectionShare,
			OftenVague:          float64(report.Vague.Count) > total*vagueShare,
		}
	}
	return report
}

func categoryReport(matches []CommitExample, total int) CategoryReport {
	report := CategoryReport{Count: len(matches)}
	if total > 0 {
		report.Percentage = round1(float64(len(matches)) / float64(total) * 100)
	}
	if len(matches) > maxLanguageExamples {
		matches = matches[:maxLanguageExamples]
	}
	report.Examples = matches
	return report
}
