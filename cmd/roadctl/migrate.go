package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/samirrijal/roadpulse/internal/adapters/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long:  "Applies every embedded SQL migration not yet recorded in schema_migrations, in lexicographic order.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := postgres.Migrate(ctx, db.Pool)
		if err != nil {
			return eris.Wrap(err, "migrate up")
		}

		out := cmd.OutOrStdout()
		for _, name := range applied {
			fmt.Fprintf(out, "OK  %s\n", name)
		}
		slog.Info("migrations applied", "count", len(applied))
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	rootCmd.AddCommand(migrateCmd)
}
