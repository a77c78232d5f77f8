// Package cmd implements the helpdeskctl administration commands.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk/internal/config"
	"github.com/opsdesk/helpdesk/internal/observability"
	"github.com/opsdesk/helpdesk/internal/persistence"
)

var (
	// Version is set at build time
	Version = "0.1.0"

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "helpdeskctl",
	Short: "Administration CLI for the helpdesk service",
	Long: `helpdeskctl runs operator tasks against the helpdesk database:
applying migrations, hashing passwords and bootstrapping roles.

Connection settings come from the same environment variables and .env
file as the API server.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err = observability.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openPostgres connects using the loaded configuration. The caller closes it.
func openPostgres(ctx context.Context) (*persistence.Postgres, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pg, nil
}
