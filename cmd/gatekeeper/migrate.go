package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xy-planning-network/gatekeeper/postgres"
	"github.com/xy-planning-network/gatekeeper/ranger"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply every database migration not yet run against the database
the DATABASE env vars point at.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := environment()
			if err != nil {
				return err
			}

			db, err := postgres.Connect(ranger.NewPostgresConfig(env), postgres.Migrations, env)
			if err != nil {
				return err
			}

			if sqlDB, err := db.DB().DB(); err == nil {
				defer sqlDB.Close()
			}

			fmt.Fprintln(cmd.OutOrStdout(), "database migrations are up to date")
			return nil
		},
	}
}
