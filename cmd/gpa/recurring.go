package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpa/internal/gitlog"
	"gpa/internal/report"
)

var recurringFilter string

var recurringCmd = &cobra.Command{
	Use:   "recurring <repo-path>",
	Short: "List issues that keep coming back across scans",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecurring,
}

func init() {
	rootCmd.AddCommand(recurringCmd)
	recurringCmd.Flags().StringVar(&recurringFilter, "filter", "",
		"Substring filter on the issue signature")
}

func runRecurring(cmd *cobra.Command, args []string) error {
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

	issues, err := report.NewReporter(store).RecurringIssues(repoPath, recurringFilter)
	if err != nil {
		return err
	}

	if len(issues) == 0 {
		fmt.Println("No recurring issues recorded")
		return nil
	}

	for _, issue := range issues {
		fmt.Printf("%s\n  %s\n", issue.Signature, issue.Persistence)
	}
	return nil
}
