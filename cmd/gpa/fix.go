package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpa/internal/gitlog"
	"gpa/internal/report"
	"gpa/internal/storage"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Work with fix attempts and fix prompts",
}

var (
	fixIssueType string
	fixOutcome   string
	fixSuccess   bool
	fixFailed    bool
)

var fixRecordCmd = &cobra.Command{
	Use:   "record <repo-path> <description>",
	Short: "Record a fix attempt against a repository issue",
	Args:  cobra.ExactArgs(2),
	RunE:  runFixRecord,
}

var fixPromptCmd = &cobra.Command{
	Use:   "prompt <security-issue-id>",
	Short: "Generate a remediation prompt for a security issue",
	Args:  cobra.ExactArgs(1),
	RunE:  runFixPrompt,
}

func init() {
	rootCmd.AddCommand(fixCmd)
	fixCmd.AddCommand(fixRecordCmd)
	fixCmd.AddCommand(fixPromptCmd)

	fixRecordCmd.Flags().StringVar(&fixIssueType, "issue-type", "", "Issue type the attempt targets")
	fixRecordCmd.Flags().StringVar(&fixOutcome, "outcome", "", "What happened")
	fixRecordCmd.Flags().BoolVar(&fixSuccess, "success", false, "Mark the attempt as successful")
	fixRecordCmd.Flags().BoolVar(&fixFailed, "failed", false, "Mark the attempt as failed")
}

func runFixRecord(cmd *cobra.Command, args []string) error {
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

	repo, err := store.GetRepoByPath(repoPath)
	if err != nil {
		return err
	}

	attempt := storage.FixAttempt{
		RepoID:      &repo.ID,
		IssueType:   fixIssueType,
		Description: args[1],
		Outcome:     fixOutcome,
	}
	if fixSuccess {
		v := true
		attempt.Success = &v
	} else if fixFailed {
		v := false
		attempt.Success = &v
	}

	id, err := store.AddFixAttempt(attempt)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded fix attempt %d\n", id)
	return nil
}

func runFixPrompt(cmd *cobra.Command, args []string) error {
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

	var issueID int64
	if _, err := fmt.Sscanf(args[0], "%d", &issueID); err != nil {
		return fmt.Errorf("invalid security issue id %q", args[0])
	}

	prompt, err := report.NewReporter(store).FixPrompt(issueID)
	if err != nil {
		return err
	}
	fmt.Println(prompt)
	return nil
}
