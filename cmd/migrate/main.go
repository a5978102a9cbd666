// Command migrate runs schema operations for the API database.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"vecinu/internal/config"
	"vecinu/internal/database"
	"vecinu/internal/middleware"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply, inspect and roll back database schema changes",
		SilenceUsage: true,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending SQL migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, _ *config.Config, db *gorm.DB, _ []string) error {
				if err := database.RunMigrations(cmd.Context(), db); err != nil {
					return fmt.Errorf("sql migrations failed: %w", err)
				}
				middleware.Logger.Info("sql migrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "auto",
			Short: "Run GORM auto-migration for every persistent model",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, cfg *config.Config, db *gorm.DB, _ []string) error {
				cfg.DBSchemaMode = database.SchemaModeAuto
				if err := database.ApplySchema(cmd.Context(), db, cfg); err != nil {
					return fmt.Errorf("auto schema apply failed: %w", err)
				}
				middleware.Logger.Info("automigrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the schema policy and pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, cfg *config.Config, db *gorm.DB, _ []string) error {
				status, err := database.GetSchemaStatus(cmd.Context(), db, cfg)
				if err != nil {
					return fmt.Errorf("schema status failed: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
					status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
					len(status.AppliedVersions), len(status.PendingMigrations))
				for _, m := range status.PendingMigrations {
					fmt.Fprintf(out, "pending: %06d_%s\n", m.Version, m.Name)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down <version>",
			Short: "Roll back one applied migration",
			Args:  cobra.ExactArgs(1),
			RunE: withDB(func(cmd *cobra.Command, _ *config.Config, db *gorm.DB, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				if err := database.RollbackMigration(cmd.Context(), db, version); err != nil {
					return fmt.Errorf("rollback failed: %w", err)
				}
				middleware.Logger.Info("rolled back migration", slog.Int("version", version))
				return nil
			}),
		},
	)
	return root
}

type dbCommand func(cmd *cobra.Command, cfg *config.Config, db *gorm.DB, args []string) error

// withDB loads configuration and opens the database without applying the
// schema policy, so each subcommand decides what runs.
func withDB(fn dbCommand) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		middleware.ConfigureLogger(cfg.LogLevel, cfg.LogFormat)

		db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() { _ = database.Close(db) }()

		return fn(cmd, cfg, db, args)
	}
}
