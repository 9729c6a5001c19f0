/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/hudl-events/apiserver/config"
	"github.com/hudl-events/apiserver/internal/auth"
	"github.com/hudl-events/apiserver/internal/db"
	"github.com/hudl-events/apiserver/internal/store"
	"github.com/spf13/cobra"
)

var promoteEmail string

// usersCmd represents the users command.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersPromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Grant admin access to an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		users := store.NewUserRepository(dbConn)
		user, err := users.GetByEmail(cmd.Context(), auth.NormalizeEmail(promoteEmail))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no user with email %q", promoteEmail)
			}
			return err
		}
		if err := users.PromoteToAdmin(cmd.Context(), user.ID); err != nil {
			return fmt.Errorf("promote failed: %w", err)
		}

		fmt.Printf("promoted %s to admin\n", promoteEmail)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersPromoteCmd)

	usersPromoteCmd.Flags().StringVar(&promoteEmail, "email", "", "email of the user to promote")
	_ = usersPromoteCmd.MarkFlagRequired("email")
}
