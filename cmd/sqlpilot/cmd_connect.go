package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <profile>",
		Short: "Verify a stored profile connects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, cleanup, err := newManager()
			if err != nil {
				return err
			}
			defer cleanup()

			profile, ok := manager.FindProfile(args[0])
			if !ok {
				return fmt.Errorf("no profile named %q", args[0])
			}

			connected, err := manager.Connect(context.Background(), profile)
			if err != nil {
				color.Red("Connection failed: %v", err)
				return err
			}
			if !connected {
				fmt.Fprintln(cmd.OutOrStdout(), "Connection cancelled.")
				return nil
			}

			color.Green("Connected to %s.", profile.DisplayName())
			return nil
		},
	}
}
