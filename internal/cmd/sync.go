package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"woosync/internal/models"
)

func newSyncCommand() *cobra.Command {
	var (
		file        string
		concurrency int
		delay       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upserts every product in a JSON or YAML file by SKU",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := loadProducts(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			opts := s.connector.Options()
			if cmd.Flags().Changed("concurrency") {
				if concurrency < 1 {
					return fmt.Errorf("--concurrency must be positive, got %d", concurrency)
				}
				opts.Concurrency = concurrency
			}
			if cmd.Flags().Changed("delay") {
				if delay < 0 {
					return fmt.Errorf("--delay must not be negative, got %s", delay)
				}
				opts.Delay = delay
			}

			report := s.connector.SyncProducts(cmd.Context(), models.SyncSourceCLI, products, opts)
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}

			if report.Summary.Failed > 0 {
				return fmt.Errorf("%d of %d products failed to sync", report.Summary.Failed, report.Summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Product records, .json or .yaml (- for stdin)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Products synced at once (default SYNC_CONCURRENCY)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Pause between slices (default SYNC_DELAY_MS)")
	cmd.MarkFlagRequired("file")

	return cmd
}
