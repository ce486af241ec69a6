package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"formcraft/internal/config"
	"formcraft/internal/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "formctl",
	Short:         "Operate a formcraft deployment",
	Long:          "formctl runs database migrations, seeds demo forms and checks form drafts offline.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			loaded.Logger.Level = level
		}
		if err := logger.Initialize(loaded.Logger); err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Override logger.level (debug, info, warn, error)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(validateCmd)
}
