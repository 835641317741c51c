package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/directory-locator/internal/search"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show the machine's current location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("locate"); err != nil {
			return err
		}

		_, rev := initGeocoders(cfg.Geocode)
		sess := search.NewSession(nil, nil, initLocator(cfg.Device), rev)
		fix, err := sess.OnDeviceLocationRequested(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%.5f, %.5f  %s\n", fix.Point.Lat, fix.Point.Lon, fix.Label)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}
