package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlpilot/sqlpilot/internal/service"
)

func newServiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Interact with the SQL tools service",
	}
	cmd.AddCommand(newServiceVersionCmd())
	return cmd
}

func newServiceVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the tools service version",
		RunE: func(cmd *cobra.Command, args []string) error {
			binaryName, err := service.ServiceBinaryName()
			if err != nil {
				return err
			}

			if serviceBin != "" {
				launcher := &service.Launcher{BinaryPath: serviceBin, SocketPath: socketPath}
				session, err := launcher.Start(context.Background())
				if err != nil {
					return err
				}
				defer session.Close()

				result, err := session.Client.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", binaryName, result.Version)
				return nil
			}

			client, err := service.NewClient(socketPath)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", binaryName, result.Version)
			return nil
		},
	}
}
