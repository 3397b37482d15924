package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillbuilder/skillbuilder/pkg/db"
	"github.com/skillbuilder/skillbuilder/pkg/db/migrations"
	"github.com/skillbuilder/skillbuilder/pkg/library"
	"github.com/skillbuilder/skillbuilder/pkg/presenter"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
	Long:  `Commands for managing the SQLite skill library (migrations, status, etc.)`,
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database migration status",
	Long:  `Shows the current database migration status, including applied and pending migrations.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd.Context(), func(path string, sqlDB *sqlx.DB) error {
			runner := db.NewMigrationRunner(sqlDB)
			applied, err := runner.GetAppliedVersions(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "failed to get migration status")
			}
			appliedMap := make(map[int64]bool, len(applied))
			for _, v := range applied {
				appliedMap[v] = true
			}

			all := migrations.All()
			presenter.Section("Database Migration Status")
			presenter.Info(fmt.Sprintf("Database: %s", path))

			rows := make([][]string, 0, len(all))
			appliedCount := 0
			for _, m := range all {
				status := "pending"
				if appliedMap[m.Version] {
					status = "applied"
					appliedCount++
				}
				rows = append(rows, []string{fmt.Sprint(m.Version), status, m.Description})
			}
			presenter.Table([]string{"VERSION", "STATUS", "DESCRIPTION"}, rows)
			presenter.Info(fmt.Sprintf("Applied: %d/%d migrations", appliedCount, len(all)))
			return nil
		})
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd.Context(), func(_ string, sqlDB *sqlx.DB) error {
			applied, err := db.NewMigrationRunner(sqlDB).Run(cmd.Context(), migrations.All())
			for _, m := range applied {
				presenter.Success(fmt.Sprintf("Applied migration %d: %s", m.Version, m.Description))
			}
			if err != nil {
				return errors.Wrap(err, "failed to run migrations")
			}
			if len(applied) == 0 {
				presenter.Info("Database is up to date")
			}
			return nil
		})
	},
}

var dbRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Rollback the last database migration",
	Long:  `Rolls back the most recently applied database migration. Useful for testing or downgrading skillbuilder.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd.Context(), func(_ string, sqlDB *sqlx.DB) error {
			runner := db.NewMigrationRunner(sqlDB)
			applied, err := runner.GetAppliedVersions(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "failed to get migration status")
			}
			if len(applied) == 0 {
				presenter.Warning("No migrations to rollback")
				return nil
			}

			lastVersion := applied[len(applied)-1]
			if err := runner.Rollback(cmd.Context(), migrations.All()); err != nil {
				return errors.Wrap(err, "failed to rollback migration")
			}
			presenter.Success(fmt.Sprintf("Rolled back migration %d", lastVersion))
			return nil
		})
	},
}

// withDatabase opens the sqlite library database without migrating it
func withDatabase(ctx context.Context, f func(path string, sqlDB *sqlx.DB) error) error {
	cfg, err := appConfig.Library.WithDefaults()
	if err != nil {
		return err
	}
	if cfg.Store != library.StoreTypeSQLite {
		return errors.Errorf("database commands require the sqlite store, configured store is %q", cfg.Store)
	}

	sqlDB, err := db.Open(ctx, cfg.Path)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return f(cfg.Path, sqlDB)
}

func init() {
	dbCmd.AddCommand(withTracing(dbStatusCmd))
	dbCmd.AddCommand(withTracing(dbMigrateCmd))
	dbCmd.AddCommand(withTracing(dbRollbackCmd))
}
