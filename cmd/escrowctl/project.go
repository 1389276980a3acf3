package main

import (
	"errors"
	"fmt"
	"strings"

	"covenant/contexts/finance-core/escrow-service/domain/entities"

	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Maintain the project directory read model",
	}
	cmd.AddCommand(newProjectUpsertCmd())
	return cmd
}

func newProjectUpsertCmd() *cobra.Command {
	var project entities.Project
	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Register or refresh a project in the directory read model",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateProject(project); err != nil {
				return err
			}
			repo, database, _, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := repo.UpsertProject(cmd.Context(), project); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "project %s registered\n", strings.TrimSpace(project.ProjectID))
			return nil
		},
	}
	cmd.Flags().StringVar(&project.ProjectID, "id", "", "project id")
	cmd.Flags().StringVar(&project.ClientID, "client", "", "client user id")
	cmd.Flags().StringVar(&project.WorkerID, "worker", "", "contracted worker user id")
	cmd.Flags().StringVar(&project.BudgetCurrency, "currency", "", "budget currency (ISO code)")
	return cmd
}

func validateProject(project entities.Project) error {
	var missing []string
	if strings.TrimSpace(project.ProjectID) == "" {
		missing = append(missing, "--id")
	}
	if strings.TrimSpace(project.ClientID) == "" {
		missing = append(missing, "--client")
	}
	if strings.TrimSpace(project.WorkerID) == "" {
		missing = append(missing, "--worker")
	}
	if len(missing) > 0 {
		return errors.New("missing required flags: " + strings.Join(missing, ", "))
	}
	if strings.TrimSpace(project.ClientID) == strings.TrimSpace(project.WorkerID) {
		return errors.New("client and worker must be different users")
	}
	return nil
}
