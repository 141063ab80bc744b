package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gpa/internal/config"
	"gpa/internal/logging"
	"gpa/internal/storage"
	"gpa/internal/version"
)

var (
	dataDirFlag  string
	logLevelFlag string
	logJSONFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "gpa",
	Short: "GPA - Git Pattern Analyzer",
	Long: `GPA (Git Pattern Analyzer) inspects a repository's commit history for
behavioral signals (commit sizing, message language, timing patterns) and
keeps a cross-session memory of flagged issues, scan results, and fix
attempts in a local SQLite database.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("GPA version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "",
		"Data directory (default: ~/.gpa)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSONFlag, "log-json", false,
		"Emit logs as JSON")
}

// newLogger builds a logger from the persistent flags.
func newLogger() *logging.Logger {
	format := logging.HumanFormat
	if logJSONFlag {
		format = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.LogLevel(logLevelFlag),
	})
}

// loadConfig resolves the data directory and loads the config file from it.
func loadConfig() (*config.Config, error) {
	dataDir := dataDirFlag
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	cfg, err := config.LoadConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the database under the configured data directory. The
// caller must Close the returned DB.
func openStore(cfg *config.Config, logger *logging.Logger) (*storage.Store, *storage.DB, error) {
	db, err := storage.Open(cfg.DataDir, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return storage.NewStore(db), db, nil
}

// gitTimeout returns the configured git subprocess timeout.
func gitTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Git.TimeoutSeconds) * time.Second
}
