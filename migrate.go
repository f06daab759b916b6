package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"matserver/config"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Normalize stored users and exit",
		Long: `Normalize stored users and exit.

Every user gets the tenants, client_credentials, feedback,
on_prem_credentials and assessments lists; the store is written once if
anything had to be added. The server runs the same step on start.

Example:
  matserver migrate --db-file ./db.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Repository().Close()

			changed, err := store.Migrate(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			users, err := store.Count(ctx)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d users\n", users)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "No migration needed - %d users up to date\n", users)
			}
			return nil
		},
	}
}
