package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpa/internal/gitlog"
)

var (
	flagSeverity float64
	flagNotes    string
)

var flagCmd = &cobra.Command{
	Use:   "flag <repo-path> <issue-type>",
	Short: "Flag an issue on a repository",
	Long: `Flag an issue on a repository. Flagging the same issue type again
increments its occurrence count and replaces the stored severity and notes
with the latest values.`,
	Args: cobra.ExactArgs(2),
	RunE: runFlag,
}

func init() {
	rootCmd.AddCommand(flagCmd)
	flagCmd.Flags().Float64Var(&flagSeverity, "severity", 0, "Severity score from 0 to 10")
	flagCmd.Flags().StringVar(&flagNotes, "notes", "", "Observation notes")
}

func runFlag(cmd *cobra.Command, args []string) error {
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
	if err := gitlog.ValidateRepoPath(repoPath); err != nil {
		return err
	}

	repo, err := store.GetOrCreateRepo(repoPath)
	if err != nil {
		return err
	}

	count, err := store.FlagIssue(repo.ID, args[1], flagSeverity, flagNotes)
	if err != nil {
		return err
	}

	if count == 1 {
		fmt.Printf("Flagged %q on %s\n", args[1], repo.Name)
	} else {
		fmt.Printf("%q has now been flagged %d times on %s\n", args[1], count, repo.Name)
	}
	return nil
}
