package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"gpa/internal/analysis"
	"gpa/internal/errors"
	"gpa/internal/gitlog"
	"gpa/internal/scanner"
	"gpa/internal/session"
)

var (
	scanMaxCommits  int
	scanRunSecurity bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <repo-path>",
	Short: "Run a full scan: detectors, optional security scan, persisted session",
	Long: `Open a scan session against a repository, run the commit-history
detectors (and the external security scanner when --security is set),
persist everything, and print a summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntVar(&scanMaxCommits, "max-commits", 0,
		"How many recent commits to analyze (default from config)")
	scanCmd.Flags().BoolVar(&scanRunSecurity, "security", false,
		"Also run the configured external security scanner")
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, db, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	coordinator := session.NewCoordinator(store, logger)
	opened, err := coordinator.Open(args[0])
	if err != nil {
		return err
	}
	if opened.PriorIncomplete != nil {
		return errors.NewPreconditionError(
			fmt.Sprintf("session %d for this repository was never closed", opened.PriorIncomplete.ID),
			fmt.Sprintf("run 'gpa close %d' first", opened.PriorIncomplete.ID))
	}
	repoPath := opened.Session.RepoPath
	fmt.Printf("Session %d opened for %s\n", opened.Session.ID, repoPath)

	maxCommits := scanMaxCommits
	if maxCommits <= 0 {
		maxCommits = cfg.Git.MaxCommits
	}

	started := time.Now()
	ctx := context.Background()
	reader := gitlog.NewReader(repoPath, gitTimeout(cfg))

	commits, err := reader.Read(ctx, gitlog.Options{MaxCount: maxCommits})
	if err != nil {
		return err
	}
	recent, err := reader.Read(ctx, gitlog.Options{
		Since: time.Now().AddDate(0, 0, -cfg.Detectors.TemporalDays),
	})
	if err != nil {
		return err
	}

	keywords := analysis.DefaultKeywords()
	if cfg.Detectors.KeywordsFile != "" {
		if loaded, err := analysis.LoadKeywords(cfg.Detectors.KeywordsFile); err == nil {
			keywords = loaded
		}
	}

	commitReport := analysis.AnalyzeCommitPatterns(commits)
	languageReport := analysis.AnalyzeMessageLanguage(commits, keywords)
	mismatchReport := analysis.CompareMessageVsDiff(commits, keywords)
	temporalReport := analysis.AnalyzeTemporalPatterns(recent, cfg.Detectors.TemporalDays)

	results := session.Results{
		CommitPatterns: &commitReport,
		Language:       &languageReport,
		Mismatch:       &mismatchReport,
		Temporal:       &temporalReport,
	}

	if scanRunSecurity {
		runner := scanner.NewRunner(cfg.Scanner.Binary, cfg.Scanner.Args,
			time.Duration(cfg.Scanner.TimeoutMinutes)*time.Minute)
		report, err := runner.Scan(ctx, repoPath)
		if err != nil {
			return err
		}
		results.Findings = report.Findings
		fmt.Printf("Security scan: %d findings\n", len(report.Findings))
	}

	results.Duration = time.Since(started)
	summary, err := coordinator.IngestResults(opened.Session.ID, results)
	if err != nil {
		return err
	}

	printScanSummary(commitReport, languageReport, mismatchReport, temporalReport, summary)
	return nil
}

func printScanSummary(commits analysis.CommitPatternReport, language analysis.LanguageReport,
	mismatch analysis.MismatchReport, temporal analysis.TemporalReport, summary *session.IngestSummary) {

	fmt.Printf("\nAnalyzed %d commits\n", commits.TotalCommits)

	var fired []string
	for _, flags := range []map[string]bool{
		commits.Flags(), language.Flags(), mismatch.Flags(), temporal.Flags(),
	} {
		for name, on := range flags {
			if on {
				fired = append(fired, name)
			}
		}
	}
	sort.Strings(fired)

	if len(fired) == 0 {
		fmt.Println("No behavioral patterns detected")
	} else {
		fmt.Println("Detected patterns:")
		for _, name := range fired {
			fmt.Printf("  - %s\n", name)
		}
	}

	fmt.Printf("\nSaved: %d git patterns, %d security issues (session %d)\n",
		summary.GitPatternsSaved, summary.IssuesSaved, summary.SessionID)
}
