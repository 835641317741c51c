package present

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-locator/internal/search"
)

// Cards writes one text card per result, in result order.
func Cards(w io.Writer, results []search.ScoredEntity) error {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  (%s)\n", r.Name, FormatDistance(r.DistanceMiles))
		if line := addressLine(r); line != "" {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		if r.Website != "" {
			fmt.Fprintf(&b, "  %s\n", r.Website)
		}
		fmt.Fprintf(&b, "  %s\n", MapsURL(r.Entity))
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "present: write cards")
	}
	return nil
}

func addressLine(r search.ScoredEntity) string {
	var parts []string
	if r.Address != "" {
		parts = append(parts, r.Address)
	}
	cityZip := strings.TrimSpace(r.City + " " + r.Zip)
	if cityZip != "" {
		parts = append(parts, cityZip)
	}
	return strings.Join(parts, ", ")
}
