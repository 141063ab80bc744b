package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gpa/internal/gitlog"
)

var contextCmd = &cobra.Command{
	Use:   "context <repo-path>",
	Short: "Show the accumulated memory for a repository",
	Long: `Show what previous sessions learned about a repository: recent scans,
flagged issues ordered by how often they recur, and recent fix attempts.`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
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

	ctx, err := store.GetRepoContext(repoPath)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", ctx.Repo.Name, ctx.Repo.Path)
	fmt.Printf("Tracked since %s, %d scans\n",
		ctx.Repo.FirstSeenAt.Format("2006-01-02"), ctx.Repo.TotalScans)

	if ctx.Profile != nil {
		fmt.Printf("Profile: %s", ctx.Profile.TechStack)
		if ctx.Profile.ProjectType != "" {
			fmt.Printf(" (%s)", ctx.Profile.ProjectType)
		}
		if ctx.Profile.TeamSize > 0 {
			fmt.Printf(", team of %d", ctx.Profile.TeamSize)
		}
		fmt.Println()
	}

	if len(ctx.FlaggedIssues) > 0 {
		fmt.Println("\nFlagged issues:")
		for _, issue := range ctx.FlaggedIssues {
			fmt.Printf("  %s: %d occurrences, last %s\n",
				issue.IssueType, issue.OccurrenceCount,
				issue.LastDetectedAt.Format(time.RFC3339))
		}
	}

	if len(ctx.RecentScans) > 0 {
		fmt.Println("\nRecent scans:")
		for _, scan := range ctx.RecentScans {
			status := "in progress"
			if scan.CompletedAt != nil {
				status = scan.Outcome
			}
			fmt.Printf("  #%d  %s  %s  %d issues\n",
				scan.ID, scan.StartedAt.Format("2006-01-02 15:04"), status, scan.TotalIssues)
		}
	}

	if len(ctx.FixAttempts) > 0 {
		fmt.Println("\nRecent fix attempts:")
		for _, attempt := range ctx.FixAttempts {
			status := "?"
			if attempt.Success != nil {
				if *attempt.Success {
					status = "ok"
				} else {
					status = "failed"
				}
			}
			fmt.Printf("  [%s] %s\n", status, attempt.Description)
		}
	}
	return nil
}
