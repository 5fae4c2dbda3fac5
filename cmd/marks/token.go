package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marks-app/marks/internal/auth"
	"github.com/marks-app/marks/internal/config"
	"github.com/marks-app/marks/internal/db"
	"github.com/marks-app/marks/internal/store"
)

// newTokenCmd mints API tokens directly against the database. Intended for
// bootstrapping `marks watch` without a web UI round trip.
func newTokenCmd() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Create an API token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			ctx := context.Background()
			users := store.NewUserStore(database)
			user, err := users.GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("no user with email %s (sign in via the web UI first): %w", email, err)
			}

			plaintext, hash, err := auth.GenerateToken()
			if err != nil {
				return err
			}

			tokens := auth.NewSQLTokenStore(database)
			if _, err := tokens.Create(ctx, user.ID, name, hash, nil); err != nil {
				return err
			}

			// Shown once; only the hash is stored.
			fmt.Println(plaintext)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the token's owner")
	cmd.Flags().StringVar(&name, "name", "cli", "token name")
	return cmd
}
