package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/samirrijal/roadpulse/internal/adapters/postgres"
	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/core/usecases"
)

var seedCityFlags struct {
	lat float64
	lon float64
}

var seedCityCmd = &cobra.Command{
	Use:   "seed-city",
	Short: "Create a city around a center point",
	Long:  "Creates an empty city centered on --lat/--lon and prints its ID.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		cities := usecases.NewCityService(postgres.NewCityRepo(db), postgres.NewRoadRepo(db), nil)
		city, err := cities.CreateCity(ctx, domain.GeoPoint{Lat: seedCityFlags.lat, Lon: seedCityFlags.lon})
		if err != nil {
			return eris.Wrap(err, "seed city")
		}

		fmt.Fprintln(cmd.OutOrStdout(), city.ID)
		return nil
	},
}

func init() {
	seedCityCmd.Flags().Float64Var(&seedCityFlags.lat, "lat", 0, "center latitude")
	seedCityCmd.Flags().Float64Var(&seedCityFlags.lon, "lon", 0, "center longitude")
	_ = seedCityCmd.MarkFlagRequired("lat")
	_ = seedCityCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(seedCityCmd)
}
