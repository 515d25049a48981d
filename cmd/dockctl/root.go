package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dockboard/infrastructure/config"
	"dockboard/infrastructure/sqlite"
)

type rootOptions struct {
	configPath string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "dockctl",
		Short: "Maintenance commands for the dockboard database",
		Long: `dockctl applies migrations, seeds the bootstrap admin or the demo board,
and clears loads. Settings come from the same config file and environment
as the dockboard server.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (defaults to $DOCKBOARD_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite path, overrides the config")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newSeedAdminCmd(opts))
	cmd.AddCommand(newSeedDemoCmd(opts))
	cmd.AddCommand(newClearLoadsCmd(opts))
	return cmd
}

// open loads the config and returns a migrated database.
func (o *rootOptions) open(ctx context.Context) (*config.Config, *sqlite.DB, error) {
	cfg, err := config.Load(o.configPath, os.Getenv)
	if err != nil {
		return nil, nil, err
	}
	if o.dbPath != "" {
		cfg.SQLitePath = o.dbPath
	}
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	migrationsDir, err := resolveMigrationsDir(cfg.MigrationsDir)
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlite.ApplyMigrations(ctx, db, migrationsDir); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	return cfg, db, nil
}
