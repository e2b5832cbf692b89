package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sqlpilot/sqlpilot/internal/models"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage stored connection profiles",
	}
	cmd.AddCommand(newProfileAddCmd(), newProfileListCmd(), newProfileRemoveCmd())
	return cmd
}

func newProfileAddCmd() *cobra.Command {
	var generatePassword bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a profile interactively and verify it connects",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, cleanup, err := newManager()
			if err != nil {
				return err
			}
			defer cleanup()

			var defaults *models.ConnectionProfile
			if generatePassword {
				generated, err := models.GeneratePassword()
				if err != nil {
					return fmt.Errorf("failed to generate password: %w", err)
				}
				defaults = &models.ConnectionProfile{}
				defaults.Password = generated
				fmt.Fprintf(cmd.OutOrStdout(), "Generated password: %s\n", generated)
			}

			profile, err := manager.CreateAndSaveProfile(context.Background(), defaults)
			if err != nil {
				color.Red("Profile not saved: %v", err)
				return err
			}
			if profile == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Profile creation cancelled.")
				return nil
			}

			color.Green("Profile %q saved.", profile.DisplayName())
			return nil
		},
	}

	cmd.Flags().BoolVar(&generatePassword, "generate-password", false, "offer a generated strong password as the default")
	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newProfileStore()
			if err != nil {
				return err
			}

			profiles := store.GetProfiles()
			if len(profiles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No profiles stored.")
				return nil
			}

			for _, p := range profiles {
				target := p.Host
				if p.ConnectionString != "" {
					target = "(connection string)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s@%s/%s\n",
					p.DisplayName(), p.User, target, p.DBName)
			}
			return nil
		},
	}
}

func newProfileRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a stored profile and its saved password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newProfileStore()
			if err != nil {
				return err
			}

			var target *models.ConnectionProfile
			for _, p := range store.GetProfiles() {
				if p.ProfileName == args[0] || p.DisplayName() == args[0] {
					profile := p
					target = &profile
					break
				}
			}
			if target == nil {
				return fmt.Errorf("no profile named %q", args[0])
			}

			removed, err := store.RemoveProfile(target)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("profile %q was not removed", args[0])
			}

			color.Green("Profile %q removed.", args[0])
			return nil
		},
	}
}
