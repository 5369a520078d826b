/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/jjudge-oj/glossary/config"
	"github.com/jjudge-oj/glossary/internal/db"
	"github.com/jjudge-oj/glossary/internal/services"
	"github.com/jjudge-oj/glossary/internal/store"
	"github.com/jjudge-oj/glossary/types"
	"github.com/spf13/cobra"
)

var usersRole string

// usersCmd groups account administration.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersPromoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Change the role of an account (admin by default)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		conn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		userService := services.NewUserService(store.NewUserRepository(conn))
		user, err := userService.SetRole(cmd.Context(), args[0], usersRole)
		if err != nil {
			return fmt.Errorf("set role: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <email>",
	Short: "Delete an account; its terms stay without an author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		conn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		userService := services.NewUserService(store.NewUserRepository(conn))
		user, err := userService.DeleteByEmail(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", user.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersPromoteCmd, usersDeleteCmd)

	usersPromoteCmd.Flags().StringVar(&usersRole, "role", types.RoleAdmin, "role to assign (user or admin)")
}
