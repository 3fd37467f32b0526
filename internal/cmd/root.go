package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"woosync/internal/config"
	"woosync/internal/connectors/woocommerce"
	"woosync/internal/database"
	"woosync/internal/logger"
)

func NewRootCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "woosync",
		Short:         "Synchronizes product records into a WooCommerce store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return nil
			}
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load env file %s: %w", envFile, err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file loaded before the environment is read")

	cmd.AddCommand(newSyncCommand())
	cmd.AddCommand(newFindCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newDeleteCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newEnqueueCommand())

	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute(ctx context.Context) {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// session is what a store command needs: validated config, a logger and a
// connector. close releases the run history database when one is open.
type session struct {
	config    *config.Config
	logger    *logger.Logger
	connector *woocommerce.WooCommerceConnector
	close     func()
}

func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := logger.New(cfg.LogLevel).Named("cli")
	s := &session{config: cfg, logger: l, close: func() { _ = l.Sync() }}

	var runs woocommerce.RunRecorder
	if cfg.DatabaseURL != "" {
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		runs = database.NewRunRepository(db.DB)
		s.close = func() {
			_ = db.Close()
			_ = l.Sync()
		}
	}

	s.connector = woocommerce.NewFromConfig(cfg, l, runs)
	return s, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
