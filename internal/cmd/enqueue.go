package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"woosync/internal/config"
	"woosync/internal/models"
	"woosync/internal/worker"
)

func newEnqueueCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Publishes upsert events for the worker instead of syncing directly",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := loadProducts(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if len(cfg.Brokers()) == 0 {
				return fmt.Errorf("KAFKA_BROKERS is required")
			}

			events := make([]models.SyncEvent, 0, len(products))
			for _, p := range products {
				events = append(events, models.SyncEvent{Type: models.EventProductUpsert, Product: p})
			}

			publisher := worker.NewPublisher(worker.NewWriter(cfg))
			defer publisher.Close()

			if err := publisher.Publish(cmd.Context(), events...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %d products on %s\n", len(events), cfg.KafkaTopic)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Product records, .json or .yaml (- for stdin)")
	cmd.MarkFlagRequired("file")

	return cmd
}
