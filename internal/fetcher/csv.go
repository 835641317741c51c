package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures header-keyed CSV decoding.
type CSVOptions struct {
	Delimiter rune // default ','
	Comment   rune // comment character (0 = none)
}

// ReadCSVRecords reads a CSV stream whose first row is a header and returns one
// map per data row keyed by header name. Short rows leave trailing keys unset.
func ReadCSVRecords(ctx context.Context, r io.Reader, opts CSVOptions) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.Comment = opts.Comment
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}

	var out []map[string]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "csv: context cancelled")
		}
		row, err := reader.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read row %d", len(out)+1)
		}
		out = append(out, zipRow(header, row))
	}
}

func zipRow(header, row []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, h := range header {
		if i >= len(row) {
			break
		}
		key := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if key == "" {
			continue
		}
		m[key] = strings.TrimSpace(row[i])
	}
	return m
}
