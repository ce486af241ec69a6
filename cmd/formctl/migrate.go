package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"formcraft/internal/config"
	"formcraft/internal/database"
	"formcraft/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the SQL schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(ctx context.Context, m database.Migrator) error {
			return m.Up(ctx)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert migrations (all of them unless --steps is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		return withMigrator(cmd.Context(), func(ctx context.Context, m database.Migrator) error {
			return m.Down(ctx, steps)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(ctx context.Context, m database.Migrator) error {
			version, dirty, err := m.Version(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%t\n", version, dirty)
			return nil
		})
	},
}

func init() {
	migrateDownCmd.Flags().Int("steps", 0, "Number of migrations to revert; 0 reverts all")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func withMigrator(ctx context.Context, fn func(context.Context, database.Migrator) error) error {
	if cfg.Storage.Driver != config.StorageSQL {
		return fmt.Errorf("migrations only apply to storage.driver=%s (configured: %s)", config.StorageSQL, cfg.Storage.Driver)
	}

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := database.NewMigrator(db)
	if err != nil {
		return err
	}
	if err := fn(ctx, m); err != nil {
		return err
	}

	version, dirty, err := m.Version(ctx)
	if err != nil {
		return err
	}
	logger.Get().Info("schema version", zap.String("driver", cfg.DB.Driver), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
