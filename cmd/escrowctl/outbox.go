package main

import (
	"context"
	"fmt"

	postgresadapter "covenant/contexts/finance-core/escrow-service/adapters/postgres"
	"covenant/contexts/finance-core/escrow-service/application/workers"
	contractsv1 "covenant/contracts/gen/events/v1"
	"covenant/internal/platform/messaging"

	"github.com/spf13/cobra"
)

func newOutboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and drain the escrow outbox",
	}
	cmd.AddCommand(newOutboxPendingCmd())
	cmd.AddCommand(newOutboxRelayCmd())
	return cmd
}

func newOutboxPendingCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List unpublished outbox rows in relay order",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, database, _, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			rows, err := repo.ListPendingOutbox(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, row := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
					row.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), row.OutboxID, row.EventType, row.PartitionKey)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d pending\n", len(rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum rows to list")
	return cmd
}

func newOutboxRelayCmd() *cobra.Command {
	var batchSize int
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Publish one batch of pending escrow events",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, database, logger, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			bus := messaging.NewBus(nil, logger)
			err = bus.Subscribe(ctx, workers.EscrowEventsTopic, "escrowctl", func(_ context.Context, event contractsv1.Envelope) error {
				fmt.Fprintf(cmd.OutOrStdout(), "published %s %s\n", event.EventID, event.EventType)
				return nil
			})
			if err != nil {
				return err
			}

			relay := workers.OutboxRelay{
				Outbox:    repo,
				Publisher: bus,
				Clock:     postgresadapter.SystemClock{},
				Topic:     workers.EscrowEventsTopic,
				BatchSize: batchSize,
				Logger:    logger,
			}
			published, err := relay.RunOnce(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "%d events relayed\n", published)
			return err
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "maximum rows to publish")
	return cmd
}
