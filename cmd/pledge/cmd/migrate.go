package cmd

import (
	"database/sql"
	"fmt"

	"github.com/pledgeline/pledgeline/internal/db"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	migrateCmd.AddCommand(
		migrateAction("up", "Apply all pending migrations", db.RunMigrations),
		migrateAction("down", "Roll back the most recent migration", db.MigrateDown),
		migrateAction("status", "Show applied and pending migrations", db.MigrationStatus),
	)

	return migrateCmd
}

func migrateAction(use, short string, run func(*sql.DB, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer db.Close(database)

			err = run(database.DB, cfg.DBDriver)
			if err != nil {
				return fmt.Errorf("migrate %s: %w", use, err)
			}
			return nil
		},
	}
}
