package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gpa/internal/session"
)

var closeCmd = &cobra.Command{
	Use:   "close <session-id>",
	Short: "Abandon an open scan session without saving results",
	Args:  cobra.ExactArgs(1),
	RunE:  runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
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

	sessionID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q", args[0])
	}

	closed, err := session.NewCoordinator(store, logger).Close(sessionID)
	if err != nil {
		return err
	}
	if !closed {
		fmt.Printf("Session %d was already completed or abandoned\n", sessionID)
		return nil
	}
	fmt.Printf("Session %d abandoned\n", sessionID)
	return nil
}
