package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sqlpilot/sqlpilot/internal/config"
	"github.com/sqlpilot/sqlpilot/internal/connection"
	"github.com/sqlpilot/sqlpilot/internal/logger"
	"github.com/sqlpilot/sqlpilot/internal/prompts"
	"github.com/sqlpilot/sqlpilot/internal/secrets"
)

var (
	// Version info (set by ldflags)
	version = "dev"

	// Flags
	debug      bool
	socketPath string
	serviceBin string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sqlpilot",
		Short: "PostgreSQL connection profiles and queries from the terminal",
		Long: `sqlpilot manages named PostgreSQL connection profiles, launches the SQL
tools service, and runs queries against saved connections.

Profiles:
  sqlpilot profile add [--generate-password]   Create a profile interactively
  sqlpilot profile list                        List stored profiles
  sqlpilot profile remove <name>               Remove a profile

Connections:
  sqlpilot connect <profile>                   Verify a profile connects
  sqlpilot query <profile> <sql>               Run a query and print the grid
  sqlpilot service version                     Show the tools service version`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logger.LevelInfo
			if debug {
				level = logger.LevelDebug
			}
			logger.InitLogger(level, "")
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "tools service socket path (connect directly when empty)")
	rootCmd.PersistentFlags().StringVar(&serviceBin, "service-bin", "", "tools service binary (resolved on PATH when empty)")

	rootCmd.AddCommand(
		newProfileCmd(),
		newConnectCmd(),
		newQueryCmd(),
		newServiceCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newProfileStore builds the composed profile store over the default
// settings and secrets locations.
func newProfileStore() (*connection.Store, error) {
	settings, err := config.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	secretStore, err := secrets.NewFileStore(filepath.Join(home, ".config", "sqlpilot"))
	if err != nil {
		return nil, fmt.Errorf("failed to open secret store: %w", err)
	}

	return connection.NewStore(settings, secretStore), nil
}

// newManager wires a manager with the console prompter and the connector
// selected by the --socket flag.
func newManager() (*connection.Manager, func(), error) {
	store, err := newProfileStore()
	if err != nil {
		return nil, nil, err
	}

	connector, cleanup, err := newConnector()
	if err != nil {
		return nil, nil, err
	}

	return connection.NewManager(store, connector, prompts.NewConsole()), cleanup, nil
}
