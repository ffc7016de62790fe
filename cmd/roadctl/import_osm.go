package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/samirrijal/roadpulse/internal/adapters/osm"
	"github.com/samirrijal/roadpulse/internal/adapters/postgres"
)

var importOSMFlags struct {
	file        string
	city        string
	batchSize   int
	parallelism int
	highways    string
}

var importOSMCmd = &cobra.Command{
	Use:   "import-osm",
	Short: "Import highways from an OSM PBF extract",
	Long:  "Reads highway ways from --file and stores each one as a road of --city.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		cityRepo := postgres.NewCityRepo(db)
		if _, err := cityRepo.GetByID(ctx, importOSMFlags.city); err != nil {
			return eris.Wrapf(err, "import osm: city %s", importOSMFlags.city)
		}

		start := time.Now()
		ways, err := osm.NewImporter(importOSMFlags.file, parseHighways(importOSMFlags.highways)).Ways(ctx)
		if err != nil {
			return eris.Wrap(err, "import osm: read ways")
		}
		slog.Info("ways decoded", "count", len(ways), "elapsed", time.Since(start))

		n, err := osm.Load(ctx, postgres.NewRoadRepo(db), importOSMFlags.city, ways, osm.LoadOptions{
			BatchSize:   importOSMFlags.batchSize,
			Parallelism: importOSMFlags.parallelism,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "processed %d ways for city %s in %s\n",
			n, importOSMFlags.city, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

// parseHighways splits a comma-separated list of highway classes. An empty
// list selects osm.DefaultHighways.
func parseHighways(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func init() {
	f := importOSMCmd.Flags()
	f.StringVar(&importOSMFlags.file, "file", "", "path to the .osm.pbf extract")
	f.StringVar(&importOSMFlags.city, "city", "", "ID of the city receiving the roads")
	f.IntVar(&importOSMFlags.batchSize, "batch-size", 500, "roads per insert batch")
	f.IntVar(&importOSMFlags.parallelism, "parallelism", 4, "concurrent insert batches")
	f.StringVar(&importOSMFlags.highways, "highways", "", "comma-separated highway classes (default: "+strings.Join(osm.DefaultHighways, ",")+")")
	_ = importOSMCmd.MarkFlagRequired("file")
	_ = importOSMCmd.MarkFlagRequired("city")
	rootCmd.AddCommand(importOSMCmd)
}
