package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlpilot/sqlpilot/internal/connection"
	"github.com/sqlpilot/sqlpilot/internal/grid"
	"github.com/sqlpilot/sqlpilot/internal/prompts"
)

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <profile> <sql>",
		Short: "Run a query against a stored profile and print the results",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newProfileStore()
			if err != nil {
				return err
			}

			transport, cleanup, err := newConnector()
			if err != nil {
				return err
			}
			defer cleanup()

			manager := connection.NewManager(store, transport, prompts.NewConsole())

			profile, ok := manager.FindProfile(args[0])
			if !ok {
				return fmt.Errorf("no profile named %q", args[0])
			}

			ctx := context.Background()
			connected, err := manager.Connect(ctx, profile)
			if err != nil {
				return err
			}
			if !connected {
				fmt.Fprintln(cmd.OutOrStdout(), "Connection cancelled.")
				return nil
			}

			result, err := transport.RunQuery(ctx, profile, args[1])
			if err != nil {
				return err
			}

			g := grid.New(result.Columns, result.Rows)
			fmt.Fprintln(cmd.OutOrStdout(), g.Render())
			fmt.Fprintf(cmd.OutOrStdout(), "(%d rows)\n", len(result.Rows))
			return nil
		},
	}
}
