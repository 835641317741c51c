package main

import (
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/directory-locator/internal/device"
	"github.com/sells-group/directory-locator/internal/locate"
	"github.com/sells-group/directory-locator/internal/present"
	"github.com/sells-group/directory-locator/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [address or zip]",
	Short: "List directory entries near a location",
	Long:  "Resolves the typed location (or the machine's location with --use-location), then lists entries within --radius miles.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("search"); err != nil {
			return err
		}

		q, err := queryDefaults(cfg.Search)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("radius") {
			r, _ := cmd.Flags().GetString("radius")
			if q.RadiusMiles, err = search.ParseRadius(r); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("sort") {
			s, _ := cmd.Flags().GetString("sort")
			if q.Sort, err = search.ParseSortMode(s); err != nil {
				return err
			}
		}
		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := present.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		sess, cleanup, err := initSession(ctx)
		defer cleanup()
		if err != nil {
			return err
		}

		q.RawText = strings.Join(args, " ")
		if useLocation, _ := cmd.Flags().GetBool("use-location"); useLocation {
			fix, err := sess.OnDeviceLocationRequested(ctx)
			if err != nil {
				var de *device.Error
				if errors.As(err, &de) {
					return eris.Wrapf(err, "search: %s", de.Kind)
				}
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Using your location: %s\n", fix.Label)
			q.Intent = locate.UseDeviceLocation
		}

		resp := sess.OnSearchRequested(ctx, q)
		return render(ctx, cmd.OutOrStdout(), format, resp, present.NewMapView(cfg.Map.StylePath))
	},
}

func init() {
	searchCmd.Flags().String("radius", "", "search radius in miles (empty or \"any\" for unbounded)")
	searchCmd.Flags().String("sort", "", "sort order: distance, name or none")
	searchCmd.Flags().Bool("use-location", false, "search around the machine's location")
	searchCmd.Flags().String("format", "cards", "output format: cards, json or geojson")
	rootCmd.AddCommand(searchCmd)
}
