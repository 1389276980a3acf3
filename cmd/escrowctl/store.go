package main

import (
	"log/slog"
	"os"

	postgresadapter "covenant/contexts/finance-core/escrow-service/adapters/postgres"
	"covenant/internal/app/bootstrap"
	"covenant/internal/platform/config"
	"covenant/internal/platform/db"

	"github.com/spf13/cobra"
)

// loadConfig honours --config before falling back to the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := os.Setenv("CONFIG_FILE", path); err != nil {
			return config.Config{}, err
		}
	}
	return config.Load()
}

func openRepository(cmd *cobra.Command) (*postgresadapter.Repository, *db.Database, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "escrowctl")
	repo, database, err := bootstrap.OpenRepository(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return repo, database, logger, nil
}
