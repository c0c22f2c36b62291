package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upb/voice-admin/models"
	"github.com/upb/voice-admin/utils"
	"go.uber.org/zap"
)

var userRoles = []string{string(models.RoleAdmin), string(models.RoleUser)}

func newUsersCmd(c *cli) *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Manage local user records",
		Long:  `Local records override the role claim of Cognito tokens. The active flag is recorded but not enforced.`,
	}

	users.AddCommand(newSetRoleCmd(c), newDeactivateCmd(c))
	return users
}

func newSetRoleCmd(c *cli) *cobra.Command {
	var sub, email, role string

	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Create or update a user with the given role",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sub == "" {
				return fmt.Errorf("--sub flag is required")
			}
			if err := utils.ValidateEmail(email); err != nil {
				return err
			}
			if err := utils.ValidateOneOf(role, "role", userRoles); err != nil {
				return err
			}

			factory, err := c.repositories()
			if err != nil {
				return err
			}
			defer factory.Close()

			user := models.NewUser(email, sub, models.UserRole(role))
			if err := factory.NewRepositories().Users.Upsert(cmd.Context(), user); err != nil {
				return err
			}

			c.logger.Info("user role set", zap.String("sub", sub), zap.String("role", role))
			fmt.Fprintf(cmd.OutOrStdout(), "user %s (%s) now has role %s\n", sub, user.ID, role)
			return nil
		},
	}

	cmd.Flags().StringVar(&sub, "sub", "", "Cognito subject of the user")
	cmd.Flags().StringVar(&email, "email", "", "Email address of the user")
	cmd.Flags().StringVar(&role, "role", string(models.RoleUser), "Role to assign (admin or user)")
	return cmd
}

func newDeactivateCmd(c *cli) *cobra.Command {
	var sub string

	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Mark a user record inactive (does not revoke access)",
		Long: `Marks the local user record inactive. Authorization checks only the role, so
a deactivated user keeps the access of their role until it is changed with
set-role or their Cognito account is disabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sub == "" {
				return fmt.Errorf("--sub flag is required")
			}

			factory, err := c.repositories()
			if err != nil {
				return err
			}
			defer factory.Close()

			if err := factory.NewRepositories().Users.SetActive(cmd.Context(), sub, false); err != nil {
				return err
			}

			c.logger.Info("user deactivated", zap.String("sub", sub))
			fmt.Fprintf(cmd.OutOrStdout(), "user %s deactivated\n", sub)
			return nil
		},
	}

	cmd.Flags().StringVar(&sub, "sub", "", "Cognito subject of the user")
	return cmd
}
