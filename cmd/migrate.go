package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ecommerce/auth-service/internal/infrastructure/config"
	pgstore "github.com/ecommerce/auth-service/internal/infrastructure/db/postgres"
)

var errNotPostgres = errors.New("migrations only apply to STORE_DRIVER=postgres")

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := postgresDSN(cmd)
		if err != nil {
			return err
		}
		return pgstore.MigrateUp(dsn)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := postgresDSN(cmd)
		if err != nil {
			return err
		}
		steps, _ := cmd.Flags().GetInt("steps")
		return pgstore.MigrateDown(dsn, steps)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateDownCmd.Flags().Int("steps", 1, "number of migrations to roll back")
}

func postgresDSN(cmd *cobra.Command) (string, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return "", err
	}
	if cfg.Store.Driver != config.DriverPostgres {
		return "", errNotPostgres
	}
	return cfg.Postgres.DSN, nil
}
