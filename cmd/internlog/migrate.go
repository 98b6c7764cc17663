package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/internlog/internal/persistence/sqlite/migration"
)

type migrationReporter interface {
	MigrationStatus(ctx context.Context) (migration.Status, error)
}

func (a *App) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Apply the embedded SQLite migrations, or create the MongoDB indexes when
the mongo driver is configured.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return fmt.Errorf("opening %s storage: %w", a.cfg.Storage.Driver, err)
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrating storage: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s storage is up to date\n", a.cfg.Storage.Driver)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return fmt.Errorf("opening %s storage: %w", a.cfg.Storage.Driver, err)
			}
			defer store.Close()

			reporter, ok := store.(migrationReporter)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s storage has no versioned migrations\n", a.cfg.Storage.Driver)
				return nil
			}

			status, err := reporter.MigrationStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("reading migration status: %w", err)
			}

			out := cmd.OutOrStdout()
			current := status.CurrentVersion
			if current == "" {
				current = "none"
			}
			fmt.Fprintf(out, "%s %s\n", formatHeader("current version:"), current)
			for _, applied := range status.AppliedMigrations {
				fmt.Fprintf(out, "  %s %s %s\n", formatOK("applied"), applied.Version, formatMuted(applied.AppliedAt.Format("2006-01-02 15:04")))
			}
			for _, pending := range status.PendingMigrations {
				fmt.Fprintf(out, "  %s %s %s\n", formatWarn("pending"), pending.Version, pending.Description)
			}
			fmt.Fprintf(out, "%d pending\n", status.PendingCount)
			return nil
		},
	})

	return cmd
}
