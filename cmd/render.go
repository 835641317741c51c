package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sells-group/directory-locator/internal/locate"
	"github.com/sells-group/directory-locator/internal/present"
	"github.com/sells-group/directory-locator/internal/search"
)

func render(ctx context.Context, w io.Writer, format present.Format, resp search.Response, mv *present.MapView) error {
	switch format {
	case present.FormatJSON:
		return present.JSON(w, resp)
	case present.FormatGeoJSON:
		f, err := mv.Frame(ctx, resp.Results, resp.Resolved)
		if err != nil {
			return err
		}
		return present.GeoJSON(w, f)
	default:
		if resp.Reason != nil {
			_, err := fmt.Fprintln(w, describeReason(resp.Reason))
			return err
		}
		if len(resp.Results) == 0 {
			_, err := fmt.Fprintln(w, "No results in range.")
			return err
		}
		if _, err := fmt.Fprintf(w, "%d results near %s\n\n", len(resp.Results), describeOrigin(resp.Resolved)); err != nil {
			return err
		}
		return present.Cards(w, resp.Results)
	}
}

func describeOrigin(r *locate.ResolvedLocation) string {
	if r == nil {
		return "?"
	}
	switch r.Source {
	case locate.SourceDevice:
		return "your location"
	default:
		return fmt.Sprintf("%q", r.CachedQueryText)
	}
}

func describeReason(err error) string {
	switch {
	case errors.Is(err, locate.ErrNoLocationProvided):
		return "Enter an address or ZIP code, or use your location."
	case errors.Is(err, locate.ErrZipNotFound):
		return "No directory entries in that ZIP code."
	case errors.Is(err, locate.ErrGeocodeNotFound):
		return "Location not found."
	default:
		return "The directory is unavailable right now."
	}
}
