package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opsdesk/helpdesk/internal/persistence"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the SQL migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pg, err := openPostgres(ctx)
		if err != nil {
			return err
		}
		defer pg.Close()

		dir := migrationsDir
		if dir == "" {
			dir = cfg.Postgres.MigrationsDir
		}
		return persistence.RunMigrations(ctx, pg.PoolHandle(), dir, logger)
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "Migrations directory (default: POSTGRES_MIGRATIONS_DIR)")
	rootCmd.AddCommand(migrateCmd)
}
