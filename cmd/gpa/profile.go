package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"gpa/internal/gitlog"
	"gpa/internal/storage"
)

// profileManifest is the shape of a .gpa-profile.toml file committed to a
// repository.
type profileManifest struct {
	TechStack   string                 `toml:"tech_stack"`
	TeamSize    int                    `toml:"team_size"`
	ProjectType string                 `toml:"project_type"`
	Metadata    map[string]interface{} `toml:"metadata"`
}

const profileFileName = ".gpa-profile.toml"

var profileCmd = &cobra.Command{
	Use:   "profile <repo-path>",
	Short: "Import the repository's profile from its .gpa-profile.toml",
	Long: `Read the repository's committed profile manifest (.gpa-profile.toml)
and store it. The stored profile is replaced wholesale on every import.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
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

	manifestPath := filepath.Join(repoPath, profileFileName)
	if _, err := os.Stat(manifestPath); err != nil {
		return fmt.Errorf("no %s found in %s", profileFileName, repoPath)
	}

	var manifest profileManifest
	if _, err := toml.DecodeFile(manifestPath, &manifest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", profileFileName, err)
	}

	repo, err := store.GetOrCreateRepo(repoPath)
	if err != nil {
		return err
	}

	profile := storage.RepoProfile{
		RepoID:      repo.ID,
		TechStack:   manifest.TechStack,
		TeamSize:    manifest.TeamSize,
		ProjectType: manifest.ProjectType,
	}
	if len(manifest.Metadata) > 0 {
		raw, err := json.Marshal(manifest.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode profile metadata: %w", err)
		}
		profile.MetadataJSON = string(raw)
	}

	if err := store.UpsertProfile(profile); err != nil {
		return err
	}

	fmt.Printf("Profile imported for %s", repo.Name)
	if manifest.TechStack != "" {
		fmt.Printf(" (%s)", manifest.TechStack)
	}
	fmt.Println()
	return nil
}
