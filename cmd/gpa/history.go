package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpa/internal/gitlog"
	"gpa/internal/report"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <repo-path>",
	Short: "List a repository's scan sessions, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "How many sessions to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
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

	repoPath, err := gitlog.NormalizeRepoPath(args[0])
	if err != nil {
		return err
	}

	entries, err := report.NewReporter(store).History(repoPath, historyLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No scans recorded for this repository")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("#%d  %s  %-11s  %d issues  %dms\n",
			e.SessionID, e.StartedAt, e.Status, e.TotalIssues, e.DurationMs)
	}
	return nil
}
