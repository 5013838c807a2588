// Command gatekeeper runs the admin access gate in front of an upstream web application.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/ranger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "gatekeeper",
		Short: "Admin access gate for a web application",
		Long: `gatekeeper signs users in and only lets the configured admin through
to the upstream application.

Configuration is read from the environment and, if present, a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return nil
			}

			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("could not load %s: %w", envFile, err)
			}

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	return rootCmd
}

// environment reads ENVIRONMENT, defaulting to DEVELOPMENT.
func environment() (gatekeeper.Environment, error) {
	val := os.Getenv(ranger.EnvironmentEnvVar)
	if val == "" {
		return gatekeeper.Development, nil
	}

	env := gatekeeper.Environment(strings.ToUpper(val))
	if err := env.Valid(); err != nil {
		return "", fmt.Errorf("%w: %s=%q", err, ranger.EnvironmentEnvVar, val)
	}

	return env, nil
}
