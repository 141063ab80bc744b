package main

import (
	"github.com/spf13/cobra"

	"gpa/internal/mcp"
	"gpa/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdin/stdout",
	Long: `Start the MCP server. The server speaks JSON-RPC 2.0 over stdio, so
logs go to stderr. Wire this command into an MCP client configuration.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
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

	server := mcp.NewServer(version.Version, cfg, store, logger)
	return server.Start()
}
