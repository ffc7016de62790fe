package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/samirrijal/roadpulse/internal/adapters/postgres"
	"github.com/samirrijal/roadpulse/internal/pkg/config"
	"github.com/samirrijal/roadpulse/internal/pkg/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "roadctl",
	Short: "RoadPulse administration",
	Long:  "Applies database migrations, seeds cities and imports OpenStreetMap highways into the road store.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load("roadpulse-roadctl")
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		logging.Setup(cfg.Log.Level, cfg.Log.Format)
		return nil
	},
	SilenceUsage: true,
}

// openDB connects to the database named by the loaded config.
func openDB(ctx context.Context) (*postgres.DB, error) {
	if cfg.Storage.Backend != "postgres" {
		return nil, eris.Errorf("roadctl requires storage.backend=postgres, got %q", cfg.Storage.Backend)
	}
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		return nil, eris.Wrap(err, "roadctl: open database")
	}
	return db, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
