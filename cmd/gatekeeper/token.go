package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/auth"
	"github.com/xy-planning-network/gatekeeper/postgres"
	"github.com/xy-planning-network/gatekeeper/ranger"
)

func tokenCmd() *cobra.Command {
	var (
		email string
		id    string
		name  string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an account",
		Long: `Mint a bearer token the local identity provider accepts in an
"Authorization: Bearer" header or a "jwt" query parameter.

Without --id, the account is looked up by --email in the database.
Tokens are signed with JWT_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv(ranger.JWTKeyEnvVar) == "" {
				return fmt.Errorf("%w: %s is not set", gatekeeper.ErrBadConfig, ranger.JWTKeyEnvVar)
			}

			tokens, err := ranger.NewTokenService(auth.WithTTL(ttl))
			if err != nil {
				return err
			}

			if id == "" {
				a, err := lookupAccount(cmd, email)
				if err != nil {
					return err
				}

				id = a.ID
				email = a.Email
				if name == "" {
					name = a.Name
				}
			}

			token, err := tokens.Mint(id, gatekeeper.NormalizeEmail(email), name)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email of the account (required)")
	cmd.Flags().StringVar(&id, "id", "", "ID of the account; skips the database lookup")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name carried by the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "how long the token is valid")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// lookupAccount finds the stored account for email.
func lookupAccount(cmd *cobra.Command, email string) (gatekeeper.Account, error) {
	env, err := environment()
	if err != nil {
		return gatekeeper.Account{}, err
	}

	db, err := postgres.Connect(ranger.NewPostgresConfig(env), postgres.Migrations, env)
	if err != nil {
		return gatekeeper.Account{}, err
	}

	if sqlDB, err := db.DB().DB(); err == nil {
		defer sqlDB.Close()
	}

	a, err := postgres.NewAccountStore(db).AccountByEmail(cmd.Context(), email)
	switch {
	case errors.Is(err, gatekeeper.ErrNotExist):
		return gatekeeper.Account{}, fmt.Errorf("no account for %s: %w", email, err)
	case err != nil:
		return gatekeeper.Account{}, err
	}

	return a, nil
}
