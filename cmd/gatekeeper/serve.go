package main

import (
	"github.com/spf13/cobra"
	"github.com/xy-planning-network/gatekeeper/ranger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gate's web server",
		Long: `Run the gate's web server until interrupted.

The server answers /validate-admin, /validate-admin/session, /login, /logout
and /metrics, and gates every other request in front of UPSTREAM_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := ranger.New(ranger.WithContext(cmd.Context()))
			if err != nil {
				return err
			}

			return rng.Guide()
		},
	}
}
