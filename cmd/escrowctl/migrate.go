package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the escrow tables",
		Long:  "Runs the escrow schema migration on the configured postgres or mysql store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, database, _, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := repo.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "escrow schema migrated")
			return nil
		},
	}
}
