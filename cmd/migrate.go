package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/campus-fixit/db"
	"github.com/frahmantamala/campus-fixit/pkg/logger"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded db migrations for the configured driver",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()

	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	if migrateRollback {
		version, err := db.MigrateDown(ctx, conn.SQLX.DB, cfg.Database.Driver)
		if err != nil {
			return err
		}
		lg.Info("rolled back migration", "version", version)
		return nil
	}

	applied, err := db.MigrateUp(ctx, conn.SQLX.DB, cfg.Database.Driver)
	if err != nil {
		return err
	}
	lg.Info("migrations applied", "count", applied, "driver", cfg.Database.Driver)
	return nil
}
