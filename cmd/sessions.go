/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/hudl-events/apiserver/config"
	"github.com/hudl-events/apiserver/internal/db"
	"github.com/hudl-events/apiserver/internal/store"
	"github.com/spf13/cobra"
)

// sessionsCmd represents the sessions command.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage login sessions",
}

var sessionsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired sessions and wallet nonces",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		nonces, err := store.NewNonceRepository(dbConn).PurgeExpired(cmd.Context())
		if err != nil {
			return fmt.Errorf("purge nonces failed: %w", err)
		}
		sessions, err := store.NewSessionRepository(dbConn).PurgeExpired(cmd.Context())
		if err != nil {
			return fmt.Errorf("purge sessions failed: %w", err)
		}

		fmt.Printf("purged %d sessions, %d nonces\n", sessions, nonces)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsPurgeCmd)
}
